package typesafe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"

	"github.com/ggoodman/typesafe-graphql-go/internal/descriptor"
	"github.com/ggoodman/typesafe-graphql-go/storage"
	"github.com/ggoodman/typesafe-graphql-go/storage/memory"
	"github.com/ggoodman/typesafe-graphql-go/storage/redis"
	"github.com/ggoodman/typesafe-graphql-go/transport"
	"github.com/ggoodman/typesafe-graphql-go/transport/cache"
)

// Cache backends understood by CacheConfig.Backend.
const (
	CacheNone   = ""
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// DefaultCacheMaxItems bounds the memory cache when MaxItems is unset.
const DefaultCacheMaxItems = 1024

// Config describes a client talking to one HTTP endpoint. It can be loaded
// from YAML with LoadConfig; environment variables override file values.
type Config struct {
	// Endpoint is the GraphQL URL. ENV: GRAPHQL_ENDPOINT
	Endpoint string `yaml:"endpoint" env:"GRAPHQL_ENDPOINT"`
	// Timeout bounds each request. ENV: GRAPHQL_TIMEOUT
	Timeout time.Duration `yaml:"timeout" env:"GRAPHQL_TIMEOUT"`
	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers"`
	// MaxResponseBytes bounds response bodies. ENV: GRAPHQL_MAX_RESPONSE_BYTES
	MaxResponseBytes int64 `yaml:"max_response_bytes" env:"GRAPHQL_MAX_RESPONSE_BYTES"`

	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig selects an optional query response cache.
type CacheConfig struct {
	// Backend is "", "memory" or "redis". ENV: GRAPHQL_CACHE_BACKEND
	Backend string `yaml:"backend" env:"GRAPHQL_CACHE_BACKEND"`
	// TTL of cached responses. ENV: GRAPHQL_CACHE_TTL
	TTL time.Duration `yaml:"ttl" env:"GRAPHQL_CACHE_TTL"`
	// MaxItems bounds the memory backend. ENV: GRAPHQL_CACHE_MAX_ITEMS
	MaxItems int `yaml:"max_items" env:"GRAPHQL_CACHE_MAX_ITEMS"`
	// RedisAddr like "localhost:6379". ENV: GRAPHQL_CACHE_REDIS_ADDR
	RedisAddr string `yaml:"redis_addr" env:"GRAPHQL_CACHE_REDIS_ADDR"`
	// KeyPrefix for redis keys. ENV: GRAPHQL_CACHE_KEY_PREFIX
	KeyPrefix string `yaml:"key_prefix" env:"GRAPHQL_CACHE_KEY_PREFIX"`
}

var (
	// ErrNoEndpoint is returned when a Config names no endpoint.
	ErrNoEndpoint = errors.New("typesafe: no endpoint configured")
	// ErrUnknownCacheBackend is returned for an unrecognised cache backend.
	ErrUnknownCacheBackend = errors.New("typesafe: unknown cache backend")
)

// LoadConfig reads the YAML file at path, if path is not empty, and then
// applies environment overrides.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("typesafe: read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("typesafe: parse config: %w", err)
		}
	}
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("typesafe: decode environment: %w", err)
	}
	return cfg, nil
}

// NewFromConfig builds a client posting to cfg.Endpoint, with a response
// cache when cfg.Cache.Backend is set. The client owns the cache store;
// release it with Close.
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNoEndpoint
	}
	// The transport and cache log through the same handler as the client.
	probe := &clientConfig{registry: descriptor.NewRegistry()}
	for _, opt := range opts {
		opt(probe)
	}
	httpOpts := []transport.HTTPOption{
		transport.WithTimeout(cfg.Timeout),
		transport.WithMaxResponseBytes(cfg.MaxResponseBytes),
		transport.WithLogHandler(probe.logger),
	}
	for k, v := range cfg.Headers {
		httpOpts = append(httpOpts, transport.WithHeader(k, v))
	}
	h, err := transport.NewHTTP(cfg.Endpoint, httpOpts...)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return New(h, opts...), nil
	}
	t := cache.New(h, store, cache.WithTTL(cfg.Cache.TTL), cache.WithScope(h.Endpoint()), cache.WithLogHandler(probe.logger))
	return New(t, append(opts[:len(opts):len(opts)], withCloser(store))...), nil
}

func openStore(ctx context.Context, cfg CacheConfig) (storage.Store, error) {
	switch cfg.Backend {
	case CacheNone:
		return nil, nil
	case CacheMemory:
		n := cfg.MaxItems
		if n <= 0 {
			n = DefaultCacheMaxItems
		}
		s, err := memory.New(n)
		if err != nil {
			return nil, err
		}
		return s, nil
	case CacheRedis:
		addr := cfg.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		s, err := redis.Dial(ctx, addr, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCacheBackend, cfg.Backend)
	}
}
