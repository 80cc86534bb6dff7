package engine

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sicko7947/slims"
	"github.com/sicko7947/slims/transport"
)

// serverCall is one request received by the fake server
type serverCall struct {
	Method     string
	Path       string
	Body       map[string]any
	Header     http.Header
	ActingUser string
}

// fakeServer stands in for the REST API. Paths are recorded relative to
// the REST root; every answer is 200 {} unless overridden.
type fakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	recorded []serverCall
	statuses map[string]int
}

func newFakeServer(t *testing.T) *fakeServer {
	fs := &fakeServer{statuses: make(map[string]int)}
	fs.Server = httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/oauth/token" {
		_, _ = w.Write([]byte(`{"access_token":"token-1","token_type":"bearer","expires_in":3600}`))
		return
	}

	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(data, &body)

	path := strings.TrimPrefix(r.URL.Path, "/rest/")

	fs.mu.Lock()
	fs.recorded = append(fs.recorded, serverCall{
		Method:     r.Method,
		Path:       path,
		Body:       body,
		Header:     r.Header.Clone(),
		ActingUser: r.Header.Get(slims.ActingUserHeader),
	})
	status, ok := fs.statuses[path]
	fs.mu.Unlock()

	if !ok {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if status != http.StatusOK {
		_, _ = w.Write([]byte(`{"errorMessage":"refused by test"}`))
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

// respond makes path answer with status
func (fs *fakeServer) respond(path string, status int) *fakeServer {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.statuses[path] = status
	return fs
}

// calls returns the recorded requests to path
func (fs *fakeServer) calls(path string) []serverCall {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var out []serverCall
	for _, c := range fs.recorded {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// countCalls returns the number of recorded requests to path
func (fs *fakeServer) countCalls(path string) int {
	return len(fs.calls(path))
}

// createTestEngine builds an engine on a basic-auth client for fs.
// The heartbeat does not fire unless a test shortens it.
func createTestEngine(t *testing.T, fs *fakeServer, opts ...EngineOption) *Engine {
	tr, err := transport.NewBasicAuth(fs.URL, "admin", "admin")
	require.NoError(t, err)

	client, err := slims.New("testSlims", tr)
	require.NoError(t, err)

	return newEngine(t, client, opts...)
}

func newEngine(t *testing.T, client *slims.Client, opts ...EngineOption) *Engine {
	base := []EngineOption{
		WithLogger(zerolog.Nop()),
		WithConfig(EngineConfig{
			HeartbeatDelay:    time.Hour,
			HeartbeatInterval: time.Hour,
		}),
	}
	eng, err := NewEngine(client, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(eng.StopHeartbeat)
	return eng
}

// authState returns the state sent in the authorization URL of tr
func authState(t *testing.T, tr *transport.OAuth) string {
	t.Helper()
	u, err := url.Parse(tr.AuthCodeURL())
	require.NoError(t, err)
	return u.Query().Get("state")
}

// payload builds a callback body for run guid
func payload(guid string, fields map[string]any) []byte {
	body := map[string]any{
		"flowInformation": map[string]any{
			"flowRunGuid": guid,
			"flowId":      "helloWorld",
		},
		"SLIMS_CURRENT_USER": "alice",
	}
	for k, v := range fields {
		body[k] = v
	}
	data, _ := json.Marshal(body)
	return data
}
