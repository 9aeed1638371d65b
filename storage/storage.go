// Package storage defines where the response cache keeps GraphQL response
// bodies between calls.
//
// Entries are grouped by Scope, normally the endpoint URL that produced
// them, so one store can serve several clients and a single endpoint can be
// purged without touching the others.
package storage

import (
	"context"
	"errors"
	"time"
)

// Scope groups the entries of one endpoint. The empty Scope is shared by
// caches that were not given an endpoint.
type Scope string

// Entry is a cached response body.
type Entry struct {
	Body     []byte
	StoredAt time.Time
	// Expires is zero for entries saved without a TTL.
	Expires time.Time
}

// Live reports whether e may still be served at now.
func (e *Entry) Live(now time.Time) bool {
	return e.Expires.IsZero() || now.Before(e.Expires)
}

// Store is a response cache backend. Implementations are safe for
// concurrent use.
//
// Load returns a nil Entry, and no error, on a miss or for an expired entry.
// Errors are reserved for backend failures, which callers treat as misses.
type Store interface {
	Load(ctx context.Context, scope Scope, key string) (*Entry, error)
	// Save replaces the entry at key. A ttl <= 0 keeps it until evicted.
	Save(ctx context.Context, scope Scope, key string, body []byte, ttl time.Duration) error
	Evict(ctx context.Context, scope Scope, key string) error
	// Purge drops every entry of scope.
	Purge(ctx context.Context, scope Scope) error
	Close() error
}

// ErrClosed is returned by every operation on a closed store.
var ErrClosed = errors.New("storage: closed")

// NewEntry copies body into a fresh entry stored at now.
func NewEntry(body []byte, now time.Time, ttl time.Duration) *Entry {
	e := &Entry{Body: append([]byte(nil), body...), StoredAt: now}
	if ttl > 0 {
		e.Expires = now.Add(ttl)
	}
	return e
}
