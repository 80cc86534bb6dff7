package transport

import (
	"context"
	"net/http"

	"github.com/sicko7947/slims"
)

// BasicAuth authenticates every request with a username and password
type BasicAuth struct {
	base
	username string
	password string
}

// NewBasicAuth creates a transport for the server at url
func NewBasicAuth(url, username, password string, opts ...Option) (*BasicAuth, error) {
	if username == "" || password == "" {
		return nil, slims.NewConfigError("username and password are required when not using OAuth")
	}
	b, err := newBase(url, newOptions(opts))
	if err != nil {
		return nil, err
	}
	return &BasicAuth{base: b, username: username, password: password}, nil
}

// Do implements slims.Transport
func (t *BasicAuth) Do(ctx context.Context, method, path string, body any) (*slims.Response, error) {
	return t.do(ctx, method, path, body, func(req *http.Request) error {
		req.SetBasicAuth(t.username, t.password)
		return nil
	})
}

var _ slims.Transport = (*BasicAuth)(nil)
