// Package storagetest checks a storage.Store against the behavior the
// response cache relies on.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ggoodman/typesafe-graphql-go/storage"
)

const (
	endpointA storage.Scope = "https://a.example/graphql"
	endpointB storage.Scope = "https://b.example/graphql?tenant=[*]"
)

// Run checks s, which must start empty. Subtests use distinct keys, so they
// do not depend on each other.
func Run(t *testing.T, s storage.Store) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		body := []byte(`{"data":{"greeting":"hi"}}`)
		before := time.Now().Truncate(time.Millisecond)
		require.NoError(t, s.Save(ctx, endpointA, "round-trip", body, 0))

		e, err := s.Load(ctx, endpointA, "round-trip")
		require.NoError(t, err)
		require.NotNil(t, e)
		require.Equal(t, body, e.Body)
		require.False(t, e.StoredAt.Before(before), "StoredAt %v is before %v", e.StoredAt, before)
		require.True(t, e.Live(time.Now().Add(24*time.Hour)))
	})

	t.Run("Miss", func(t *testing.T) {
		e, err := s.Load(ctx, endpointA, "never-saved")
		require.NoError(t, err)
		require.Nil(t, e)
	})

	t.Run("Replace", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, endpointA, "replace", []byte("one"), 50*time.Millisecond))
		require.NoError(t, s.Save(ctx, endpointA, "replace", []byte("two"), 0))
		time.Sleep(100 * time.Millisecond)

		e, err := s.Load(ctx, endpointA, "replace")
		require.NoError(t, err)
		require.NotNil(t, e, "a save without TTL must not inherit the old expiry")
		require.Equal(t, "two", string(e.Body))
	})

	t.Run("Expiry", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, endpointA, "expiry", []byte("soon gone"), 100*time.Millisecond))
		e, err := s.Load(ctx, endpointA, "expiry")
		require.NoError(t, err)
		require.NotNil(t, e)

		time.Sleep(200 * time.Millisecond)
		e, err = s.Load(ctx, endpointA, "expiry")
		require.NoError(t, err)
		require.Nil(t, e)
	})

	t.Run("Scopes", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "", "scoped", []byte("shared"), 0))
		require.NoError(t, s.Save(ctx, endpointA, "scoped", []byte("a"), 0))
		require.NoError(t, s.Save(ctx, endpointB, "scoped", []byte("b"), 0))

		for scope, want := range map[storage.Scope]string{"": "shared", endpointA: "a", endpointB: "b"} {
			e, err := s.Load(ctx, scope, "scoped")
			require.NoError(t, err)
			require.NotNil(t, e, "scope %q", scope)
			require.Equal(t, want, string(e.Body), "scope %q", scope)
		}
	})

	t.Run("Evict", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, endpointA, "evict-1", []byte("1"), 0))
		require.NoError(t, s.Save(ctx, endpointA, "evict-2", []byte("2"), 0))
		require.NoError(t, s.Evict(ctx, endpointA, "evict-1"))
		require.NoError(t, s.Evict(ctx, endpointA, "never-saved"))

		e, err := s.Load(ctx, endpointA, "evict-1")
		require.NoError(t, err)
		require.Nil(t, e)
		e, err = s.Load(ctx, endpointA, "evict-2")
		require.NoError(t, err)
		require.NotNil(t, e)
	})

	t.Run("Purge", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, endpointB, "purge-1", []byte("1"), 0))
		require.NoError(t, s.Save(ctx, endpointB, "purge-2", []byte("2"), time.Hour))
		require.NoError(t, s.Save(ctx, endpointA, "purge-1", []byte("kept"), 0))

		require.NoError(t, s.Purge(ctx, endpointB))

		for _, k := range []string{"purge-1", "purge-2"} {
			e, err := s.Load(ctx, endpointB, k)
			require.NoError(t, err)
			require.Nil(t, e, "%s survived the purge", k)
		}
		e, err := s.Load(ctx, endpointA, "purge-1")
		require.NoError(t, err)
		require.NotNil(t, e)
		require.Equal(t, "kept", string(e.Body))
	})
}
