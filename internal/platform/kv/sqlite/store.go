// Package sqlite provides a SQLite-backed kv.Store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/socialledger/internal/platform/kv"
	"github.com/louisbranch/socialledger/internal/platform/kv/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrBusy reports that the database stayed locked past the busy timeout.
var ErrBusy = errors.New("sqlite store is busy")

// Store persists kv entries in one SQLite file.
//
// Calls are serialized by a mutex over a single connection; each call runs
// in its own transaction.
type Store struct {
	mu     sync.Mutex
	sqlDB  *sql.DB
	closed bool
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite kv store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := applyMigrations(context.Background(), sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.sqlDB == nil {
		return nil
	}
	s.closed = true
	return s.sqlDB.Close()
}

// View runs fn inside a transaction that is always rolled back.
func (s *Store) View(ctx context.Context, fn func(kv.Reader) error) error {
	return s.run(ctx, func(tx *sql.Tx) (bool, error) {
		return false, fn(&txn{tx: tx})
	})
}

// Update runs fn inside a transaction committed only when fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(kv.Writer) error) error {
	return s.run(ctx, func(tx *sql.Tx) (bool, error) {
		if err := fn(&txn{tx: tx}); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (s *Store) run(ctx context.Context, fn func(*sql.Tx) (bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return kv.ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return kv.ErrClosed
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return mapError("begin transaction", err)
	}
	commit, err := fn(tx)
	if err != nil || !commit {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

type txn struct {
	tx *sql.Tx
}

func (t *txn) Get(ctx context.Context, key kv.Key) ([]byte, bool, error) {
	var value []byte
	err := t.tx.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, []byte(key)).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, mapError("get "+key.String(), err)
	}
	return value, true, nil
}

func (t *txn) Has(ctx context.Context, key kv.Key) (bool, error) {
	var found int
	err := t.tx.QueryRowContext(ctx, `SELECT 1 FROM kv_entries WHERE key = ?`, []byte(key)).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, mapError("has "+key.String(), err)
	}
	return true, nil
}

func (t *txn) Expiry(ctx context.Context) (time.Time, error) {
	var expiresAt int64
	err := t.tx.QueryRowContext(ctx, `SELECT expires_at FROM kv_instance WHERE id = 1`).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, mapError("get expiry", err)
	}
	return fromMillis(expiresAt), nil
}

func (t *txn) Set(ctx context.Context, key kv.Key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := t.tx.ExecContext(
		ctx,
		`INSERT INTO kv_entries (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		[]byte(key),
		value,
	)
	if err != nil {
		return mapError("set "+key.String(), err)
	}
	return nil
}

func (t *txn) Extend(ctx context.Context, until time.Time) error {
	_, err := t.tx.ExecContext(
		ctx,
		`INSERT INTO kv_instance (id, expires_at) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET expires_at = MAX(expires_at, excluded.expires_at)`,
		toMillis(until),
	)
	if err != nil {
		return mapError("extend expiry", err)
	}
	return nil
}

func mapError(op string, err error) error {
	if isBusy(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrBusy, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isBusy(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return true
		}
	}
	return false
}
