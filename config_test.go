package typesafe_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	typesafe "github.com/ggoodman/typesafe-graphql-go"
	"github.com/ggoodman/typesafe-graphql-go/graphqltest"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graphql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
endpoint: https://api.example.com/graphql
timeout: 5s
headers:
  Authorization: Bearer token
cache:
  backend: memory
  ttl: 2m
  max_items: 64
`)
	t.Setenv("GRAPHQL_TIMEOUT", "7s")
	t.Setenv("GRAPHQL_CACHE_MAX_ITEMS", "128")

	cfg, err := typesafe.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, typesafe.Config{
		Endpoint: "https://api.example.com/graphql",
		Timeout:  7 * time.Second,
		Headers:  map[string]string{"Authorization": "Bearer token"},
		Cache: typesafe.CacheConfig{
			Backend:  typesafe.CacheMemory,
			TTL:      2 * time.Minute,
			MaxItems: 128,
		},
	}, cfg)
}

func TestLoadConfig_EnvironmentOnly(t *testing.T) {
	t.Setenv("GRAPHQL_ENDPOINT", "http://localhost:8080/graphql")

	cfg, err := typesafe.LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/graphql", cfg.Endpoint)
	require.Empty(t, cfg.Cache.Backend)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := typesafe.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = typesafe.LoadConfig(writeConfig(t, "endpoint: [unterminated"))
	require.ErrorContains(t, err, "typesafe: parse config")
}

func TestNewFromConfig(t *testing.T) {
	f := graphqltest.New(t).ReturnsData("'greeting':'hi'")
	ctx := context.Background()

	c, err := typesafe.NewFromConfig(ctx, typesafe.Config{
		Endpoint: f.URL(),
		Headers:  map[string]string{"X-Tenant": "acme"},
		Cache:    typesafe.CacheConfig{Backend: typesafe.CacheMemory},
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c.Close()) })

	var api StringAPI
	require.NoError(t, typesafe.Bind(c, &api))
	for i := 0; i < 3; i++ {
		got, err := api.Greeting(ctx)
		require.NoError(t, err)
		require.Equal(t, "hi", got)
	}
	require.Len(t, f.Requests(), 1)
	require.Equal(t, "acme", f.Last().Header.Get("X-Tenant"))
	require.NotEmpty(t, f.Last().Header.Get("X-Request-ID"))
}

func TestNewFromConfig_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := typesafe.NewFromConfig(ctx, typesafe.Config{})
	require.ErrorIs(t, err, typesafe.ErrNoEndpoint)

	_, err = typesafe.NewFromConfig(ctx, typesafe.Config{Endpoint: "ftp://example.com"})
	require.Error(t, err)

	_, err = typesafe.NewFromConfig(ctx, typesafe.Config{
		Endpoint: "https://example.com/graphql",
		Cache:    typesafe.CacheConfig{Backend: "memcached"},
	})
	require.ErrorIs(t, err, typesafe.ErrUnknownCacheBackend)
}
