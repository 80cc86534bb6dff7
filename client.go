// Package slims is a client for the SLIMS laboratory information
// management system REST API.
//
// Records are fetched through a Client with criteria built by the criteria
// package. Flows are declared as a list of Steps and served by the engine
// package, which the server calls back to run each step.
package slims

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sicko7947/slims/criteria"
)

// Client talks to one SLIMS instance through a Transport
type Client struct {
	name         string
	transport    Transport
	repoLocation string
	logger       zerolog.Logger
}

// New creates a client. name identifies the instance towards the server
// when flows are registered.
func New(name string, transport Transport, opts ...ClientOption) (*Client, error) {
	if name == "" {
		return nil, NewConfigError("client name is required")
	}
	if transport == nil {
		return nil, NewConfigError("transport is required")
	}

	c := &Client{
		name:      name,
		transport: transport,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the instance name
func (c *Client) Name() string {
	return c.name
}

// Logger returns the client's logger
func (c *Client) Logger() zerolog.Logger {
	return c.logger
}

// RepoLocation returns the configured file repository root, if any
func (c *Client) RepoLocation() string {
	return c.repoLocation
}

// Authorizer returns the transport's authorization capability, if it has one
func (c *Client) Authorizer() (Authorizer, bool) {
	a, ok := c.transport.(Authorizer)
	return a, ok
}

// Get performs a GET on a path relative to the REST root
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.transport.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST with a JSON body
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.transport.Do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT with a JSON body
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.transport.Do(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.transport.Do(ctx, http.MethodDelete, path, nil)
}

// GetEntities fetches a list of entities. The body, when given, is sent
// with the GET request. The result is never nil.
func (c *Client) GetEntities(ctx context.Context, path string, body any) ([]*Record, error) {
	resp, err := c.transport.Do(ctx, http.MethodGet, path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	if !resp.OK() {
		return nil, newAPIError("fetch entities", resp)
	}

	list, err := decodeEntities(resp.Body)
	if err != nil {
		return nil, err
	}
	records := make([]*Record, 0, len(list.Entities))
	for _, entity := range list.Entities {
		records = append(records, newRecord(c, entity))
	}
	return records, nil
}

// Fetch returns the records of table matching crit. A nil criterion matches all records.
func (c *Client) Fetch(ctx context.Context, table string, crit criteria.Criterion, opts ...FetchOption) ([]*Record, error) {
	q := &fetchQuery{SortBy: []string{}}
	for _, opt := range opts {
		opt(q)
	}
	if crit != nil {
		q.Criteria = crit.ToMap()
	}

	c.logger.Debug().
		Str("table", table).
		Strs("sort_by", q.SortBy).
		Msg("Fetching records")

	return c.GetEntities(ctx, table+"/advanced", q)
}

// FetchByPK returns the record with the given primary key, or nil when the
// server returns no entity
func (c *Client) FetchByPK(ctx context.Context, table string, pk int64) (*Record, error) {
	records, err := c.GetEntities(ctx, table+"/"+strconv.FormatInt(pk, 10), nil)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// Add creates a record in table and returns it as stored by the server
func (c *Client) Add(ctx context.Context, table string, values map[string]any) (*Record, error) {
	resp, err := c.Put(ctx, table, values)
	if err != nil {
		return nil, fmt.Errorf("failed to add to %s: %w", table, err)
	}
	if !resp.OK() {
		return nil, newAPIError("add", resp)
	}
	return c.singleEntity("add", resp)
}

// singleEntity decodes the first entity of a mutation response
func (c *Client) singleEntity(operation string, resp *Response) (*Record, error) {
	list, err := decodeEntities(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(list.Entities) == 0 {
		return nil, &APIError{Operation: operation, StatusCode: resp.StatusCode, Body: "response contains no entity"}
	}
	return newRecord(c, list.Entities[0]), nil
}

func decodeEntities(body []byte) (*entityList, error) {
	var list entityList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode entities: %w", err)
	}
	return &list, nil
}

// fetchQuery is the body of an advanced search
type fetchQuery struct {
	Criteria map[string]any `json:"criteria,omitempty"`
	SortBy   []string       `json:"sortBy"`
	StartRow *int           `json:"startRow,omitempty"`
	EndRow   *int           `json:"endRow,omitempty"`
}
