package slims

import (
	"context"
	"encoding/base64"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Record is one row of a server table. Records are snapshots: operations
// that change server state return a new Record and leave the receiver as is.
type Record struct {
	client  *Client
	entity  Entity
	columns map[string]*Column
}

func newRecord(client *Client, entity Entity) *Record {
	entity.Columns = slices.Clone(entity.Columns)
	entity.Links = slices.Clone(entity.Links)
	r := &Record{
		client:  client,
		entity:  entity,
		columns: make(map[string]*Column, len(entity.Columns)),
	}
	for i := range r.entity.Columns {
		col := &r.entity.Columns[i]
		r.columns[col.Name] = col
	}
	return r
}

// NewRecord builds a record from a decoded server entity
func NewRecord(client *Client, entity Entity) *Record {
	return newRecord(client, entity)
}

// TableName returns the name of the record's table
func (r *Record) TableName() string {
	return r.entity.TableName
}

// PK returns the record's primary key
func (r *Record) PK() int64 {
	return r.entity.PK
}

// Kind returns the record's capability kind derived from its table
func (r *Record) Kind() Kind {
	return kindOf(r.entity.TableName)
}

// Entity returns a copy of the server representation of the record
func (r *Record) Entity() Entity {
	entity := r.entity
	entity.Columns = slices.Clone(r.entity.Columns)
	entity.Links = slices.Clone(r.entity.Links)
	return entity
}

// Column returns a copy of the named column or a LookupError
func (r *Record) Column(name string) (*Column, error) {
	col, ok := r.columns[name]
	if !ok {
		return nil, &LookupError{Kind: "column", Name: name, Table: r.entity.TableName}
	}
	c := *col
	return &c, nil
}

// Get returns a copy of the named column, or nil when the record has no
// such column
func (r *Record) Get(name string) *Column {
	col, ok := r.columns[name]
	if !ok {
		return nil
	}
	c := *col
	return &c
}

// Columns returns copies of the columns in server order
func (r *Record) Columns() []*Column {
	out := make([]*Column, len(r.entity.Columns))
	for i := range r.entity.Columns {
		c := r.entity.Columns[i]
		out[i] = &c
	}
	return out
}

// Links returns the record's relations
func (r *Record) Links() []Link {
	out := make([]Link, len(r.entity.Links))
	copy(out, r.entity.Links)
	return out
}

// link finds a relation by exact name and checks its direction
func (r *Record) link(name string, incoming bool) (Link, error) {
	for _, l := range r.entity.Links {
		if l.Rel == name && l.Incoming() == incoming {
			return l, nil
		}
	}
	return Link{}, &LookupError{Kind: "link", Name: name, Table: r.entity.TableName}
}

// Follow resolves an outgoing link. It returns nil when the server has no
// record at the other end.
func (r *Record) Follow(ctx context.Context, name string) (*Record, error) {
	l, err := r.link(name, false)
	if err != nil {
		return nil, err
	}
	records, err := r.client.GetEntities(ctx, l.Href, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to follow %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// FollowIncoming resolves an incoming link, named with a leading "-".
// The result is never nil.
func (r *Record) FollowIncoming(ctx context.Context, name string) ([]*Record, error) {
	l, err := r.link(name, true)
	if err != nil {
		return nil, err
	}
	records, err := r.client.GetEntities(ctx, l.Href, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to follow %s: %w", name, err)
	}
	return records, nil
}

// Attachments fetches the attachments linked to this record
func (r *Record) Attachments(ctx context.Context) ([]*Record, error) {
	return r.client.GetEntities(ctx, "attachment/"+r.resource(), nil)
}

// Update changes the given columns and returns the server's new version of the record
func (r *Record) Update(ctx context.Context, values map[string]any) (*Record, error) {
	resp, err := r.client.Post(ctx, r.resource(), values)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", r.resource(), err)
	}
	if !resp.OK() {
		return nil, newAPIError("update", resp)
	}
	return r.client.singleEntity("update", resp)
}

// Remove deletes the record on the server. The receiver is stale afterwards.
func (r *Record) Remove(ctx context.Context) error {
	resp, err := r.client.Delete(ctx, r.resource())
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", r.resource(), err)
	}
	if !resp.OK() {
		return newAPIError("remove", resp)
	}
	return nil
}

// AddAttachment uploads data as a new attachment of this record and
// returns the attachment's primary key
func (r *Record) AddAttachment(ctx context.Context, name string, data []byte) (int64, error) {
	body := map[string]any{
		"attm_name":        name,
		"atln_recordPk":    r.entity.PK,
		"atln_recordTable": r.entity.TableName,
		"contents":         base64.StdEncoding.EncodeToString(data),
	}
	resp, err := r.client.Post(ctx, "repo", body)
	if err != nil {
		return 0, fmt.Errorf("failed to upload attachment %s: %w", name, err)
	}
	if !resp.Success() {
		return 0, newAPIError("attachment upload", resp)
	}

	pk, err := pkFromLocation(resp.Header.Get("Location"))
	if err != nil {
		return 0, &APIError{Operation: "attachment upload", StatusCode: resp.StatusCode, Body: err.Error()}
	}
	return pk, nil
}

// AsAttachment returns the attachment capabilities of the record
func (r *Record) AsAttachment() (*Attachment, bool) {
	if r.Kind() != KindAttachment {
		return nil, false
	}
	return &Attachment{Record: r}, true
}

func (r *Record) resource() string {
	return r.entity.TableName + "/" + strconv.FormatInt(r.entity.PK, 10)
}

// pkFromLocation parses the numeric suffix after the last "/" of a Location header
func pkFromLocation(location string) (int64, error) {
	if location == "" {
		return 0, fmt.Errorf("response has no Location header")
	}
	suffix := location[strings.LastIndex(location, "/")+1:]
	pk, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid Location header %q: %w", location, err)
	}
	return pk, nil
}
