package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sicko7947/slims"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		cond string
		want map[string]any
	}{
		{"cntn_id=DNA1", map[string]any{"fieldName": "cntn_id", "operator": "equals", "value": "DNA1"}},
		{"cntn_id!DNA1", map[string]any{"fieldName": "cntn_id", "operator": "iNotEqual", "value": "DNA1"}},
		{"cntn_id~NA", map[string]any{"fieldName": "cntn_id", "operator": "iContains", "value": "NA"}},
		{"cntn_id^DNA", map[string]any{"fieldName": "cntn_id", "operator": "iStartsWith", "value": "DNA"}},
		{"cntn_id$1", map[string]any{"fieldName": "cntn_id", "operator": "iEndsWith", "value": "1"}},
		{"cntn_id=a~b", map[string]any{"fieldName": "cntn_id", "operator": "equals", "value": "a~b"}},
	}

	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			expr, err := parseCondition(tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.ToMap())
		})
	}

	_, err := parseCondition("cntn_id")
	assert.Error(t, err)
	_, err = parseCondition("=value")
	assert.Error(t, err)
}

func TestParseWhere(t *testing.T) {
	crit, err := parseWhere(nil, false)
	require.NoError(t, err)
	assert.Nil(t, crit)

	crit, err = parseWhere([]string{"a=1"}, false)
	require.NoError(t, err)
	assert.Equal(t, "equals", crit.ToMap()["operator"])

	crit, err = parseWhere([]string{"a=1", "b=2"}, false)
	require.NoError(t, err)
	assert.Equal(t, "and", crit.ToMap()["operator"])
	assert.Len(t, crit.ToMap()["criteria"], 2)

	crit, err = parseWhere([]string{"a=1", "b=2"}, true)
	require.NoError(t, err)
	assert.Equal(t, "or", crit.ToMap()["operator"])
}

func TestFetchCommand(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		assert.Equal(t, "/rest/Content/advanced", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"entities":[
			{"pk":1,"tableName":"Content","columns":[{"name":"cntn_id","value":"DNA1","datatype":"STRING"}]},
			{"pk":2,"tableName":"Content","columns":[{"name":"cntn_id","value":"DNA2","datatype":"STRING"}]}
		]}`))
	}))
	defer srv.Close()

	t.Setenv("SLIMS_URL", srv.URL)
	t.Setenv("SLIMS_USERNAME", "admin")
	t.Setenv("SLIMS_PASSWORD", "admin")
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"fetch", "Content", "--where", "cntn_id^DNA", "--sort", "-cntn_id", "--fields", "cntn_id"})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, "cntn_id\nDNA1\nDNA2\n", out.String())
	assert.Equal(t, map[string]any{"fieldName": "cntn_id", "operator": "iStartsWith", "value": "DNA"}, body["criteria"])
	assert.Equal(t, []any{"-cntn_id"}, body["sortBy"])
	assert.NotContains(t, body, "startRow")
}

func TestFileName(t *testing.T) {
	named := slims.NewRecord(nil, slims.Entity{PK: 7, TableName: slims.AttachmentTable, Columns: []slims.Column{
		{Name: "attm_name", Value: "report.pdf"},
	}})
	a, ok := named.AsAttachment()
	require.True(t, ok)
	assert.Equal(t, "report.pdf", fileName(a))

	unnamed := slims.NewRecord(nil, slims.Entity{PK: 8, TableName: slims.AttachmentTable})
	a, ok = unnamed.AsAttachment()
	require.True(t, ok)
	assert.Equal(t, "attachment-8", fileName(a))
}
