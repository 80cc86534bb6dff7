package slims

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// recordedRequest is one call seen by fakeTransport
type recordedRequest struct {
	Method     string
	Path       string
	Body       map[string]any
	ActingUser string
}

// fakeTransport answers requests from a route table keyed by "METHOD path"
type fakeTransport struct {
	mu        sync.Mutex
	responses map[string]*Response
	requests  []recordedRequest
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{responses: make(map[string]*Response)}
}

func (f *fakeTransport) on(method, path string, status int, body string) *fakeTransport {
	f.responses[method+" "+path] = &Response{StatusCode: status, Header: http.Header{}, Body: []byte(body)}
	return f
}

func (f *fakeTransport) onWithHeader(method, path string, status int, header http.Header) *fakeTransport {
	f.responses[method+" "+path] = &Response{StatusCode: status, Header: header}
	return f
}

func (f *fakeTransport) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	req := recordedRequest{Method: method, Path: path}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &req.Body); err != nil {
			return nil, err
		}
	}
	req.ActingUser, _ = ActingUser(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	if resp, ok := f.responses[method+" "+path]; ok {
		return resp, nil
	}
	return &Response{StatusCode: http.StatusNotFound, Body: []byte(`{"errorMessage":"not found"}`)}, nil
}

func (f *fakeTransport) calls() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newTestClient(t *testing.T, transport Transport, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{WithLogger(zerolog.Nop())}, opts...)
	client, err := New("testSlims", transport, opts...)
	require.NoError(t, err)
	return client
}

const contentEntity = `{
	"pk": 1,
	"tableName": "Content",
	"columns": [
		{"name": "cntn_id", "value": "DNA0001", "datatype": "STRING", "title": "Id"},
		{"name": "cntn_quantity", "value": 12.5, "datatype": "QUANTITY", "unit": "ml"},
		{"name": "cntn_createdOn", "value": 1700000000000, "datatype": "DATE", "subType": "datetime"},
		{"name": "cntn_fk_location", "value": null, "datatype": "FOREIGN_KEY", "displayValue": ""},
		{"name": "cntn_cf_valid", "value": true, "datatype": "BOOLEAN"}
	],
	"links": [
		{"rel": "cntn_fk_contentType", "href": "https://slims.example/rest/ContentType/3"},
		{"rel": "-rslt_fk_content", "href": "https://slims.example/rest/Result?rslt_fk_content=1"}
	]
}`

func entities(items ...string) string {
	out := `{"entities":[`
	for i, item := range items {
		if i > 0 {
			out += ","
		}
		out += item
	}
	return out + `]}`
}
