// Package memory provides an in-process kv.Store for tests and ephemeral
// ledgers.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/louisbranch/socialledger/internal/platform/kv"
)

// Store keeps entries in a map guarded by a mutex.
//
// Update stages writes in an overlay and merges them only when the callback
// succeeds, so a failed call leaves no trace.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
	expiry  time.Time
	closed  bool
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

// View runs fn under a read lock.
func (s *Store) View(ctx context.Context, fn func(kv.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return kv.ErrClosed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return kv.ErrClosed
	}
	return fn(&txn{store: s})
}

// Update runs fn under the write lock and merges its staged writes on success.
func (s *Store) Update(ctx context.Context, fn func(kv.Writer) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return kv.ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return kv.ErrClosed
	}
	tx := &txn{store: s, staged: make(map[string][]byte), expiry: s.expiry}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for key, value := range tx.staged {
		s.entries[key] = value
	}
	s.expiry = tx.expiry
	return nil
}

// Close marks the store closed and drops its entries.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}

// Len returns the number of committed keys; a nil store has none.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// txn serves both Reader and Writer; staged is nil for read-only calls.
type txn struct {
	store  *Store
	staged map[string][]byte
	expiry time.Time
}

func (t *txn) Get(ctx context.Context, key kv.Key) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if t.staged != nil {
		if value, ok := t.staged[string(key)]; ok {
			return clone(value), true, nil
		}
	}
	value, ok := t.store.entries[string(key)]
	if !ok {
		return nil, false, nil
	}
	return clone(value), true, nil
}

func (t *txn) Has(ctx context.Context, key kv.Key) (bool, error) {
	_, ok, err := t.Get(ctx, key)
	return ok, err
}

func (t *txn) Expiry(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if t.staged != nil {
		return t.expiry, nil
	}
	return t.store.expiry, nil
}

func (t *txn) Set(ctx context.Context, key kv.Key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.staged[string(key)] = clone(value)
	return nil
}

func (t *txn) Extend(ctx context.Context, until time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	until = until.UTC()
	if until.After(t.expiry) {
		t.expiry = until
	}
	return nil
}

func clone(value []byte) []byte {
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
