package slims

import (
	"context"
	"encoding/json"
	"net/http"
)

// ActingUserHeader carries the end user a request is made on behalf of
const ActingUserHeader = "X-SLIMS-REQUESTED-FOR"

// Transport performs one authenticated request against the REST root.
//
// path is relative to the REST root unless it is an absolute URL (link
// targets are returned absolute by the server). body is JSON encoded when
// non-nil, also for GET. A non-2xx status is not an error at this level.
// Implementations must send ActingUserHeader when ctx carries an acting user.
type Transport interface {
	Do(ctx context.Context, method, path string, body any) (*Response, error)
}

// Authorizer is implemented by transports that need an interactive
// authorization code exchange before they can be used
type Authorizer interface {
	// AuthCodeURL returns the URL an operator visits to grant access
	AuthCodeURL() string

	// ValidState reports whether state is the one sent in AuthCodeURL
	ValidState(state string) bool

	// Exchange trades an authorization code for a token
	Exchange(ctx context.Context, code string) error

	// Authorized reports whether a token is held
	Authorized() bool
}

// Response is a fully read server response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the server answered 200
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Success reports whether the status is 2xx
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ErrorMessage returns the server's errorMessage field, falling back to the raw body
func (r *Response) ErrorMessage() string {
	var payload struct {
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(r.Body, &payload); err == nil && payload.ErrorMessage != "" {
		return payload.ErrorMessage
	}
	return string(r.Body)
}
