// Package memory is a process-local storage.Store bounded by an LRU.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ggoodman/typesafe-graphql-go/storage"
)

// DefaultSweepInterval is how often expired entries are dropped.
const DefaultSweepInterval = 5 * time.Minute

type slot struct {
	scope storage.Scope
	key   string
}

// Store keeps at most a fixed number of entries, evicting the least recently
// loaded one when full.
type Store struct {
	mu      sync.Mutex
	entries *lru.Cache[slot, *storage.Entry]
	stop    chan struct{}
	closed  bool
	now     func() time.Time
}

// New returns a store holding at most size entries.
func New(size int) (*Store, error) {
	return NewWithSweep(size, DefaultSweepInterval)
}

// NewWithSweep is New with the interval of the background expiry sweep.
func NewWithSweep(size int, every time.Duration) (*Store, error) {
	entries, err := lru.New[slot, *storage.Entry](size)
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}
	if every <= 0 {
		every = DefaultSweepInterval
	}
	s := &Store{entries: entries, stop: make(chan struct{}), now: time.Now}
	go s.sweep(every)
	return s, nil
}

// Load returns the live entry at key, dropping it if it has expired.
func (s *Store) Load(_ context.Context, scope storage.Scope, key string) (*storage.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, storage.ErrClosed
	}
	at := slot{scope, key}
	e, ok := s.entries.Get(at)
	if !ok {
		return nil, nil
	}
	if !e.Live(s.now()) {
		s.entries.Remove(at)
		return nil, nil
	}
	return e, nil
}

// Save stores a copy of body at key, marking it most recently used.
func (s *Store) Save(_ context.Context, scope storage.Scope, key string, body []byte, ttl time.Duration) error {
	e := storage.NewEntry(body, s.now(), ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	s.entries.Add(slot{scope, key}, e)
	return nil
}

// Evict removes the entry at key if there is one.
func (s *Store) Evict(_ context.Context, scope storage.Scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	s.entries.Remove(slot{scope, key})
	return nil
}

// Purge removes every entry of scope.
func (s *Store) Purge(_ context.Context, scope storage.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}
	for _, at := range s.entries.Keys() {
		if at.scope == scope {
			s.entries.Remove(at)
		}
	}
	return nil
}

// Close stops the sweep and drops every entry. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.stop)
		s.entries.Purge()
	}
	return nil
}

// Len is the number of held entries, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Len()
}

func (s *Store) sweep(every time.Duration) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-tick.C:
			s.dropExpired()
		}
	}
}

func (s *Store) dropExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, at := range s.entries.Keys() {
		// Peek leaves the recency order alone.
		if e, ok := s.entries.Peek(at); ok && !e.Live(now) {
			s.entries.Remove(at)
		}
	}
}

var _ storage.Store = (*Store)(nil)
