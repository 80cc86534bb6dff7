// Package transport implements slims.Transport over net/http with basic
// or OAuth2 authentication.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/sicko7947/slims"
)

// DefaultTimeout bounds a single request when no HTTP client is supplied
const DefaultTimeout = 60 * time.Second

// Option configures a transport
type Option func(*options)

type options struct {
	httpClient   *http.Client
	logger       zerolog.Logger
	headers      http.Header
	token        *oauth2.Token
	tokenUpdater func(*oauth2.Token)
}

// WithHTTPClient sets the HTTP client used for every request
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a logger for request tracing
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHeader adds a header to every request
func WithHeader(key, value string) Option {
	return func(o *options) {
		o.headers.Add(key, value)
	}
}

// WithToken seeds an OAuth transport with a previously obtained token
func WithToken(token *oauth2.Token) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithTokenUpdater is called with every new OAuth token, after the code
// exchange and after each refresh
func WithTokenUpdater(fn func(*oauth2.Token)) Option {
	return func(o *options) {
		o.tokenUpdater = fn
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
		headers:    http.Header{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// base holds what both authentication schemes share
type base struct {
	rawURL  string
	restURL string
	client  *http.Client
	logger  zerolog.Logger
	headers http.Header
}

func newBase(url string, o *options) (base, error) {
	if url == "" {
		return base{}, slims.NewConfigError("url is required")
	}
	raw := strings.TrimSuffix(url, "/") + "/"
	return base{
		rawURL:  raw,
		restURL: raw + "rest/",
		client:  o.httpClient,
		logger:  o.logger,
		headers: o.headers,
	}, nil
}

// RestURL returns the REST root all relative paths resolve against
func (b *base) RestURL() string {
	return b.restURL
}

// resolve turns a path into an absolute URL. Link targets come back
// absolute; an http target on an https root is upgraded.
func (b *base) resolve(path string) string {
	if strings.HasPrefix(b.restURL, "https://") &&
		strings.HasPrefix(path, "http://") &&
		strings.HasPrefix(path[len("http"):], b.restURL[len("https"):]) {
		path = "https" + path[len("http"):]
	}
	if strings.HasPrefix(path, b.restURL) {
		return path
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return b.restURL + strings.TrimPrefix(path, "/")
}

// do performs one request. authorize adds credentials to the request.
func (b *base) do(ctx context.Context, method, path string, body any, authorize func(*http.Request) error) (*slims.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := b.resolve(path)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range b.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if user, ok := slims.ActingUser(ctx); ok {
		req.Header.Set(slims.ActingUserHeader, user)
	}
	if err := authorize(req); err != nil {
		return nil, err
	}

	requestID := uuid.New().String()
	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Error().
			Str("request_id", requestID).
			Str("method", method).
			Str("url", url).
			Err(err).
			Msg("Request failed")
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s %s: %w", method, url, err)
	}

	b.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Request completed")

	return &slims.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// RedirectURL builds the callback address the server redirects to after
// authorization: http://{host}:{port}/{instance}/token
func RedirectURL(host string, port int, instance string) string {
	return fmt.Sprintf("http://%s:%d/%s/token", host, port, instance)
}
