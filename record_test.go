package slims

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntity(t *testing.T, raw string) Entity {
	t.Helper()
	var entity Entity
	require.NoError(t, json.Unmarshal([]byte(raw), &entity))
	return entity
}

func TestRecord_ColumnValuesMatchSource(t *testing.T) {
	record := NewRecord(nil, decodeEntity(t, contentEntity))

	var source struct {
		Columns []map[string]any `json:"columns"`
	}
	require.NoError(t, decodeJSON([]byte(contentEntity), &source))

	for _, raw := range source.Columns {
		name := raw["name"].(string)
		col, err := record.Column(name)
		require.NoError(t, err, name)
		assert.Equal(t, raw["value"], col.Value, name)
		assert.Equal(t, raw["datatype"], col.Datatype, name)
	}
}

func TestRecord_LargeIntegerKeepsPrecision(t *testing.T) {
	entity := decodeEntity(t, `{
		"pk": 7,
		"tableName": "Content",
		"columns": [{"name": "cntn_big", "value": 9007199254740993, "datatype": "INTEGER"}]
	}`)

	col, err := NewRecord(nil, entity).Column("cntn_big")
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), col.Value)

	n, err := col.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), n)
}

func TestRecord_ColumnsAreCopies(t *testing.T) {
	record := NewRecord(nil, decodeEntity(t, contentEntity))

	col, err := record.Column("cntn_id")
	require.NoError(t, err)
	col.Value = "changed"
	record.Get("cntn_id").Value = "changed"
	record.Columns()[0].Value = "changed"
	record.Entity().Columns[0].Value = "changed"

	assert.Equal(t, "DNA0001", record.Get("cntn_id").String())
}

func TestRecord_Identity(t *testing.T) {
	record := NewRecord(nil, decodeEntity(t, contentEntity))

	assert.Equal(t, "Content", record.TableName())
	assert.Equal(t, int64(1), record.PK())
	assert.Equal(t, KindRecord, record.Kind())

	_, ok := record.AsAttachment()
	assert.False(t, ok)
}

func TestRecord_ColumnsKeepServerOrder(t *testing.T) {
	record := NewRecord(nil, decodeEntity(t, contentEntity))

	var names []string
	for _, col := range record.Columns() {
		names = append(names, col.Name)
	}
	assert.Equal(t, []string{"cntn_id", "cntn_quantity", "cntn_createdOn", "cntn_fk_location", "cntn_cf_valid"}, names)
}

func TestRecord_UnknownColumn(t *testing.T) {
	record := NewRecord(nil, decodeEntity(t, contentEntity))

	_, err := record.Column("cntn_missing")
	require.Error(t, err)
	assert.True(t, IsLookupError(err))
	assert.Nil(t, record.Get("cntn_missing"))
	assert.Equal(t, "DNA0001", record.Get("cntn_id").String())
}

func TestRecord_AuxiliaryColumnKeys(t *testing.T) {
	record := NewRecord(nil, decodeEntity(t, contentEntity))

	col := record.Get("cntn_quantity")
	assert.Equal(t, "ml", col.Unit)

	title, ok := record.Get("cntn_id").Field("title")
	assert.True(t, ok)
	assert.Equal(t, "Id", title)

	assert.True(t, record.Get("cntn_fk_location").IsNull())
}

func TestRecord_FollowOutgoing(t *testing.T) {
	ft := newFakeTransport().
		on(http.MethodGet, "https://slims.example/rest/ContentType/3", http.StatusOK,
			entities(`{"pk":3,"tableName":"ContentType","columns":[{"name":"cntp_name","value":"DNA"}]}`))
	client := newTestClient(t, ft)
	record := NewRecord(client, decodeEntity(t, contentEntity))

	contentType, err := record.Follow(context.Background(), "cntn_fk_contentType")
	require.NoError(t, err)
	require.NotNil(t, contentType)
	assert.Equal(t, "ContentType", contentType.TableName())
	assert.Equal(t, "DNA", contentType.Get("cntp_name").String())
}

func TestRecord_FollowOutgoingEmpty(t *testing.T) {
	ft := newFakeTransport().
		on(http.MethodGet, "https://slims.example/rest/ContentType/3", http.StatusOK, entities())
	record := NewRecord(newTestClient(t, ft), decodeEntity(t, contentEntity))

	contentType, err := record.Follow(context.Background(), "cntn_fk_contentType")
	require.NoError(t, err)
	assert.Nil(t, contentType)
}

func TestRecord_FollowIncomingReturnsEmptyList(t *testing.T) {
	ft := newFakeTransport().
		on(http.MethodGet, "https://slims.example/rest/Result?rslt_fk_content=1", http.StatusOK, entities())
	record := NewRecord(newTestClient(t, ft), decodeEntity(t, contentEntity))

	results, err := record.FollowIncoming(context.Background(), "-rslt_fk_content")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRecord_FollowUnknownLink(t *testing.T) {
	ft := newFakeTransport()
	record := NewRecord(newTestClient(t, ft), decodeEntity(t, contentEntity))

	_, err := record.Follow(context.Background(), "unknown_link")
	require.Error(t, err)
	assert.True(t, IsLookupError(err))
	assert.Empty(t, ft.calls())
}

func TestRecord_FollowIsDirectionSensitive(t *testing.T) {
	ft := newFakeTransport()
	record := NewRecord(newTestClient(t, ft), decodeEntity(t, contentEntity))

	_, err := record.Follow(context.Background(), "-rslt_fk_content")
	assert.True(t, IsLookupError(err))

	_, err = record.FollowIncoming(context.Background(), "cntn_fk_contentType")
	assert.True(t, IsLookupError(err))

	_, err = record.Follow(context.Background(), "CNTN_FK_CONTENTTYPE")
	assert.True(t, IsLookupError(err))
}

func TestRecord_Attachments(t *testing.T) {
	ft := newFakeTransport().
		on(http.MethodGet, "attachment/Content/1", http.StatusOK,
			entities(`{"pk":7,"tableName":"Attachment","columns":[{"name":"attm_path","value":"a/file.txt"}]}`))
	record := NewRecord(newTestClient(t, ft), decodeEntity(t, contentEntity))

	attachments, err := record.Attachments(context.Background())
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, KindAttachment, attachments[0].Kind())
}

func TestRecord_UpdateReturnsNewRecord(t *testing.T) {
	updated := `{"pk":1,"tableName":"Content","columns":[{"name":"cntn_id","value":"new id"}]}`
	ft := newFakeTransport().on(http.MethodPost, "Content/1", http.StatusOK, entities(updated))
	original := NewRecord(newTestClient(t, ft), decodeEntity(t, contentEntity))

	next, err := original.Update(context.Background(), map[string]any{"cntn_id": "new id"})
	require.NoError(t, err)

	assert.NotSame(t, original, next)
	assert.Equal(t, "new id", next.Get("cntn_id").String())
	assert.Equal(t, "DNA0001", original.Get("cntn_id").String())

	calls := ft.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"cntn_id": "new id"}, calls[0].Body)
}

func TestRecord_UpdateFailure(t *testing.T) {
	ft := newFakeTransport().on(http.MethodPost, "Content/1", http.StatusBadRequest, `{"errorMessage":"bad"}`)
	original := NewRecord(newTestClient(t, ft), decodeEntity(t, contentEntity))

	next, err := original.Update(context.Background(), map[string]any{"cntn_id": "x"})
	require.Error(t, err)
	assert.Nil(t, next)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "bad")
	assert.Equal(t, "DNA0001", original.Get("cntn_id").String())
}

func TestRecord_Remove(t *testing.T) {
	ft := newFakeTransport().on(http.MethodDelete, "Content/1", http.StatusOK, "")
	record := NewRecord(newTestClient(t, ft), decodeEntity(t, contentEntity))

	require.NoError(t, record.Remove(context.Background()))

	ft.on(http.MethodDelete, "Content/1", http.StatusForbidden, "no")
	err := record.Remove(context.Background())
	assert.True(t, IsAPIError(err))
}

func TestRecord_AddAttachment(t *testing.T) {
	header := http.Header{}
	header.Set("Location", "https://slims.example/rest/repo/42")
	ft := newFakeTransport().onWithHeader(http.MethodPost, "repo", http.StatusCreated, header)
	record := NewRecord(newTestClient(t, ft), decodeEntity(t, contentEntity))

	pk, err := record.AddAttachment(context.Background(), "test.txt", []byte("Hi from go"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), pk)

	calls := ft.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{
		"attm_name":        "test.txt",
		"atln_recordPk":    float64(1),
		"atln_recordTable": "Content",
		"contents":         "SGkgZnJvbSBnbw==",
	}, calls[0].Body)
}

func TestRecord_AddAttachmentFailures(t *testing.T) {
	record := NewRecord(newTestClient(t, newFakeTransport().on(http.MethodPost, "repo", http.StatusInternalServerError, "boom")),
		decodeEntity(t, contentEntity))
	_, err := record.AddAttachment(context.Background(), "a", []byte("a"))
	assert.True(t, IsAPIError(err))

	record = NewRecord(newTestClient(t, newFakeTransport().on(http.MethodPost, "repo", http.StatusOK, "")),
		decodeEntity(t, contentEntity))
	_, err = record.AddAttachment(context.Background(), "a", []byte("a"))
	assert.True(t, IsAPIError(err))
}

func TestPKFromLocation(t *testing.T) {
	tests := []struct {
		location string
		want     int64
		wantErr  bool
	}{
		{"https://slims.example/rest/repo/42", 42, false},
		{"repo/7", 7, false},
		{"13", 13, false},
		{"", 0, true},
		{"https://slims.example/rest/repo/", 0, true},
		{"https://slims.example/rest/repo/abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			got, err := pkFromLocation(tt.location)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
