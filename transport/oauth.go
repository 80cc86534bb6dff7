package transport

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/sicko7947/slims"
)

// ErrNotAuthorized is returned by OAuth requests made before a code exchange
var ErrNotAuthorized = errors.New("oauth transport is not authorized yet")

// OAuth authenticates requests with an OAuth2 bearer token obtained through
// the authorization code flow. Tokens are refreshed automatically.
type OAuth struct {
	base
	config *oauth2.Config
	state  string

	mu       sync.RWMutex
	source   oauth2.TokenSource
	onUpdate func(*oauth2.Token)
}

// NewOAuth creates a transport for the server at url. redirectURL is where
// the server sends the authorization code, see RedirectURL.
func NewOAuth(url, clientID, clientSecret, redirectURL string, opts ...Option) (*OAuth, error) {
	if clientID == "" {
		return nil, slims.NewConfigError("client_id is required when using OAuth")
	}
	if clientSecret == "" {
		return nil, slims.NewConfigError("client_secret is required when using OAuth")
	}

	o := newOptions(opts)
	b, err := newBase(url, o)
	if err != nil {
		return nil, err
	}

	t := &OAuth{
		base: b,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"api"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   b.rawURL + "oauth/authorize",
				TokenURL:  b.rawURL + "oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		state:    uuid.New().String(),
		onUpdate: o.tokenUpdater,
	}
	if o.token != nil {
		t.setToken(o.token)
	}
	return t, nil
}

// AuthCodeURL implements slims.Authorizer
func (t *OAuth) AuthCodeURL() string {
	return t.config.AuthCodeURL(t.state)
}

// ValidState implements slims.Authorizer
func (t *OAuth) ValidState(state string) bool {
	return subtle.ConstantTimeCompare([]byte(state), []byte(t.state)) == 1
}

// Exchange implements slims.Authorizer
func (t *OAuth) Exchange(ctx context.Context, code string) error {
	if code == "" {
		return slims.NewConfigError("authorization code is empty")
	}
	token, err := t.config.Exchange(t.clientContext(ctx), code)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}
	t.setToken(token)
	t.notify(token)
	return nil
}

// Authorized implements slims.Authorizer
func (t *OAuth) Authorized() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.source != nil
}

// Do implements slims.Transport
func (t *OAuth) Do(ctx context.Context, method, path string, body any) (*slims.Response, error) {
	t.mu.RLock()
	source := t.source
	t.mu.RUnlock()
	if source == nil {
		return nil, ErrNotAuthorized
	}

	return t.do(ctx, method, path, body, func(req *http.Request) error {
		token, err := source.Token()
		if err != nil {
			return fmt.Errorf("failed to obtain token: %w", err)
		}
		token.SetAuthHeader(req)
		return nil
	})
}

func (t *OAuth) setToken(token *oauth2.Token) {
	// Refreshes outlive the request that triggers them
	src := t.config.TokenSource(t.clientContext(context.Background()), token)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.source = &notifyingSource{src: src, last: token.AccessToken, notify: t.notify}
}

func (t *OAuth) notify(token *oauth2.Token) {
	if t.onUpdate != nil {
		t.onUpdate(token)
	}
}

// clientContext makes the oauth2 package use the transport's HTTP client
func (t *OAuth) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, t.client)
}

// notifyingSource reports refreshed tokens
type notifyingSource struct {
	mu     sync.Mutex
	src    oauth2.TokenSource
	last   string
	notify func(*oauth2.Token)
}

func (s *notifyingSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed := token.AccessToken != s.last
	s.last = token.AccessToken
	s.mu.Unlock()

	if changed {
		s.notify(token)
	}
	return token, nil
}

var (
	_ slims.Transport  = (*OAuth)(nil)
	_ slims.Authorizer = (*OAuth)(nil)
)
