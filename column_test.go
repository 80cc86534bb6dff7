package slims

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumn_Unmarshal(t *testing.T) {
	var col Column
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "cntn_quantity",
		"value": 12.5,
		"datatype": "QUANTITY",
		"unit": "ml",
		"displayValue": "12.5 ml",
		"editable": true
	}`), &col))

	assert.Equal(t, "cntn_quantity", col.Name)
	assert.Equal(t, json.Number("12.5"), col.Value)
	assert.Equal(t, "QUANTITY", col.Datatype)
	assert.Equal(t, "ml", col.Unit)
	assert.Equal(t, "12.5 ml", col.DisplayValue)

	editable, ok := col.Field("editable")
	assert.True(t, ok)
	assert.Equal(t, true, editable)
}

func TestColumn_MarshalKeepsServerKeys(t *testing.T) {
	raw := `{"name":"cntn_id","value":"x","datatype":"STRING","position":3}`
	var col Column
	require.NoError(t, json.Unmarshal([]byte(raw), &col))

	data, err := json.Marshal(col)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(data))
}

func TestColumn_TypedAccessors(t *testing.T) {
	n, err := (&Column{Value: 42.0}).Int()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = (&Column{Value: 4.2}).Int()
	assert.Error(t, err)

	f, err := (&Column{Value: "1.5"}).Float()
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	b, err := (&Column{Value: true}).Bool()
	require.NoError(t, err)
	assert.True(t, b)

	_, err = (&Column{Value: "yes"}).Bool()
	assert.Error(t, err)

	ts, err := (&Column{Value: 1700000000000.0}).Time()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ts.UnixMilli())

	_, err = (&Column{Value: nil}).Time()
	assert.Error(t, err)
}

func TestColumn_String(t *testing.T) {
	assert.Equal(t, "", (&Column{}).String())
	assert.Equal(t, "abc", (&Column{Value: "abc"}).String())
	assert.Equal(t, "12", (&Column{Value: 12.0}).String())
	assert.Equal(t, "true", (&Column{Value: true}).String())
}

func TestColumn_NumberAccessors(t *testing.T) {
	col := &Column{Name: "cntn_big", Value: json.Number("9007199254740993")}

	n, err := col.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), n)
	assert.Equal(t, "9007199254740993", col.String())

	f, err := (&Column{Value: json.Number("12.5")}).Float()
	require.NoError(t, err)
	assert.Equal(t, 12.5, f)

	_, err = (&Column{Value: json.Number("12.5")}).Int()
	assert.Error(t, err)
}
