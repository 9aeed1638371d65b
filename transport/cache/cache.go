// Package cache provides a transport.Transport decorator that keeps
// successful query responses in a storage.Store.
//
// Responses are keyed by the SHA-256 of the request body within the
// endpoint's scope. Only queries are cached, and only when the
// response is 2xx with a decodable body carrying no errors. Mutations
// always reach the service.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/ggoodman/typesafe-graphql-go/internal/logctx"
	"github.com/ggoodman/typesafe-graphql-go/internal/route"
	"github.com/ggoodman/typesafe-graphql-go/storage"
	"github.com/ggoodman/typesafe-graphql-go/transport"
)

// DefaultTTL is how long entries live when no TTL is configured.
const DefaultTTL = time.Minute

// Option configures a Transport.
type Option func(*Transport)

// WithTTL sets the lifetime of cached responses.
func WithTTL(ttl time.Duration) Option {
	return func(t *Transport) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithScope files entries under an endpoint so several endpoints can
// share one store.
func WithScope(endpoint string) Option {
	return func(t *Transport) { t.scope = storage.Scope(endpoint) }
}

// WithLogHandler sets the slog handler used by the cache. If not provided,
// logs are discarded.
func WithLogHandler(h slog.Handler) Option {
	return func(t *Transport) { t.log = logctx.New(h) }
}

// Transport serves repeated queries from a store.
type Transport struct {
	next  transport.Transport
	store storage.Store
	ttl   time.Duration
	scope storage.Scope
	log   *slog.Logger
}

// New wraps next with a cache backed by store.
func New(next transport.Transport, store storage.Store, opts ...Option) *Transport {
	t := &Transport{next: next, store: store, ttl: DefaultTTL, log: logctx.New(nil)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Key returns the cache key of a request body.
func Key(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Send answers queries from the store when possible. Store failures are
// logged and bypassed.
func (t *Transport) Send(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	if req.Operation != "query" {
		return t.next.Send(ctx, req)
	}

	key := Key(req.Body)
	entry, err := t.store.Load(ctx, t.scope, key)
	if err != nil {
		t.log.WarnContext(ctx, "graphql.cache.load.fail", slog.String("err", err.Error()))
	}
	if entry != nil {
		t.log.DebugContext(ctx, "graphql.cache.hit", slog.String("key", key), slog.Time("stored", entry.StoredAt))
		return &transport.Response{
			StatusCode: http.StatusOK,
			Reason:     http.StatusText(http.StatusOK),
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       entry.Body,
		}, nil
	}

	resp, err := t.next.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	if !cacheable(resp) {
		return resp, nil
	}
	if err := t.store.Save(ctx, t.scope, key, resp.Body, t.ttl); err != nil {
		t.log.WarnContext(ctx, "graphql.cache.save.fail", slog.String("err", err.Error()))
	} else {
		t.log.DebugContext(ctx, "graphql.cache.store", slog.String("key", key))
	}
	return resp, nil
}

// Invalidate drops every entry in the transport's scope.
func (t *Transport) Invalidate(ctx context.Context) error {
	return t.store.Purge(ctx, t.scope)
}

func cacheable(resp *transport.Response) bool {
	if !resp.Successful() {
		return false
	}
	env, err := route.Decode(resp.Body)
	return err == nil && !env.HasErrors()
}
