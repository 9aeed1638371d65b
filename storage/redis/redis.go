// Package redis is a storage.Store shared between processes through Redis.
//
// Each entry is a hash with a body field and a stored field holding the
// Unix time in milliseconds. Expiry is delegated to Redis with PEXPIRE, so
// an expired entry is simply absent. Keys have the form
//
//	<prefix><scope tag>:<key>
//
// where the scope tag is a short digest of the endpoint. Endpoint URLs can
// hold characters that are special to SCAN patterns, and the digest keeps
// them out of the key space.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ggoodman/typesafe-graphql-go/storage"
)

// DefaultKeyPrefix is used when Config.KeyPrefix is empty.
const DefaultKeyPrefix = "graphql:cache:"

const (
	fieldBody   = "body"
	fieldStored = "stored"
	purgeBatch  = 256
)

// Config configures a Store.
type Config struct {
	// Client is required. The store owns it and closes it on Close.
	Client *redis.Client
	// KeyPrefix defaults to DefaultKeyPrefix.
	KeyPrefix string
}

// Store implements storage.Store on Redis hashes.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// New wraps an existing client.
func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis: Config.Client is required")
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{rdb: cfg.Client, prefix: prefix}, nil
}

// Dial connects to addr and checks the server answers PING before returning.
func Dial(ctx context.Context, addr, keyPrefix string) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return New(Config{Client: rdb, KeyPrefix: keyPrefix})
}

// Load reads the hash at key. Redis has already dropped expired entries.
func (s *Store) Load(ctx context.Context, scope storage.Scope, key string) (*storage.Entry, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(scope, key)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: load: %w", err)
	}
	body, ok := fields[fieldBody]
	if !ok {
		return nil, nil
	}
	e := &storage.Entry{Body: []byte(body)}
	if ms, err := strconv.ParseInt(fields[fieldStored], 10, 64); err == nil {
		e.StoredAt = time.UnixMilli(ms)
	}
	return e, nil
}

// Save writes the hash at key and its expiry in one transaction.
func (s *Store) Save(ctx context.Context, scope storage.Scope, key string, body []byte, ttl time.Duration) error {
	k := s.key(scope, key)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		// Drop the old hash so a previous TTL does not carry over.
		p.Del(ctx, k)
		p.HSet(ctx, k, fieldBody, body, fieldStored, time.Now().UnixMilli())
		if ttl > 0 {
			p.PExpire(ctx, k, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: save: %w", err)
	}
	return nil
}

// Evict unlinks the entry at key.
func (s *Store) Evict(ctx context.Context, scope storage.Scope, key string) error {
	if err := s.rdb.Unlink(ctx, s.key(scope, key)).Err(); err != nil {
		return fmt.Errorf("redis: evict: %w", err)
	}
	return nil
}

// Purge scans for the keys of scope and unlinks them in batches.
func (s *Store) Purge(ctx context.Context, scope storage.Scope) error {
	it := s.rdb.Scan(ctx, 0, globEscape(s.key(scope, ""))+"*", purgeBatch).Iterator()
	batch := make([]string, 0, purgeBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := s.rdb.Unlink(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}
	for it.Next(ctx) {
		batch = append(batch, it.Val())
		if len(batch) == purgeBatch {
			if err := flush(); err != nil {
				return fmt.Errorf("redis: purge: %w", err)
			}
		}
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("redis: purge: %w", err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("redis: purge: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	if err := s.rdb.Close(); err != nil {
		if errors.Is(err, redis.ErrClosed) {
			return nil
		}
		return err
	}
	return nil
}

func (s *Store) key(scope storage.Scope, key string) string {
	return s.prefix + scopeTag(scope) + ":" + key
}

func scopeTag(scope storage.Scope) string {
	if scope == "" {
		return "shared"
	}
	sum := sha256.Sum256([]byte(scope))
	return hex.EncodeToString(sum[:8])
}

var globSpecial = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func globEscape(s string) string { return globSpecial.Replace(s) }

var _ storage.Store = (*Store)(nil)
