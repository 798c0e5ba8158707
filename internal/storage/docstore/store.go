// Package docstore is a small schemaless document store. Documents are flat
// maps of field name to raw JSON value, grouped in named collections and keyed
// by a store-assigned ObjectID. Shape enforcement is left to callers.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidID   = errors.New("invalid document id")
	ErrNotFound    = errors.New("document not found")
	ErrUnavailable = errors.New("document store unavailable")
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Reserved field names. The store owns them; values supplied by callers are dropped.
const (
	FieldID        = "_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Fields maps a field name to its JSON-encoded value.
type Fields map[string]json.RawMessage

// Set encodes v and stores it under key.
func (f Fields) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode field %q: %w", key, err)
	}
	f[key] = raw
	return nil
}

// Get decodes the value under key into dst. It reports false when the field is
// missing or explicitly null, leaving dst untouched.
func (f Fields) Get(key string, dst any) (bool, error) {
	raw, ok := f[key]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode field %q: %w", key, err)
	}
	return true, nil
}

// Document is one stored record.
type Document struct {
	ID     ObjectID
	Fields Fields
}

// Store is implemented by every backend. Single-document writes are atomic.
type Store interface {
	// Name identifies the backing database, e.g. for diagnostics.
	Name() string
	Insert(ctx context.Context, collection string, fields Fields) (ObjectID, error)
	FindByID(ctx context.Context, collection string, id ObjectID) (*Document, error)
	// List returns at most limit documents, newest first. Ordering is not a contract.
	List(ctx context.Context, collection string, limit int) ([]Document, error)
	// UpdateFields overwrites only the supplied fields, stamps updated_at and
	// returns the document as it is after the update.
	UpdateFields(ctx context.Context, collection string, id ObjectID, fields Fields) (*Document, error)
	Collections(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Option configures a store backend.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used for created_at/updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// prepareWrite copies fields, drops reserved keys and stamps timestamps.
func prepareWrite(fields Fields, now time.Time, insert bool) (Fields, error) {
	out := make(Fields, len(fields)+2)
	for k, v := range fields {
		switch k {
		case FieldID, FieldCreatedAt, FieldUpdatedAt:
			continue
		}
		if !json.Valid(v) {
			return nil, fmt.Errorf("field %q is not valid json", k)
		}
		out[k] = v
	}

	stamp := now.UTC()
	if err := out.Set(FieldUpdatedAt, stamp); err != nil {
		return nil, err
	}
	if insert {
		if err := out.Set(FieldCreatedAt, stamp); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
