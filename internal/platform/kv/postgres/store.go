// Package postgres provides a PostgreSQL-backed kv.Store on a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/louisbranch/socialledger/internal/platform/kv"
	"github.com/louisbranch/socialledger/internal/platform/timeouts"
)

// writerLockID keys the advisory lock that serializes Update calls.
const writerLockID int64 = 0x736f6369616c

var schemaSQL = []string{
	`CREATE TABLE IF NOT EXISTS kv_entries (
	    key BYTEA PRIMARY KEY,
	    value BYTEA NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS kv_instance (
	    id SMALLINT PRIMARY KEY CHECK (id = 1),
	    expires_at BIGINT NOT NULL
	)`,
}

// Store persists kv entries in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	closed atomic.Bool
}

// Option customizes Open.
type Option func(*options)

type options struct {
	schema   string
	maxConns int32
}

// WithSchema places the kv tables in schema, creating it when missing.
func WithSchema(schema string) Option {
	return func(o *options) {
		o.schema = strings.TrimSpace(schema)
	}
}

// WithMaxConns caps the pool size.
func WithMaxConns(n int32) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConns = n
		}
	}
}

// Open connects to dsn and ensures the kv tables exist.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	o := options{maxConns: 4}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = o.maxConns
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	if o.schema != "" {
		schema := pgx.Identifier{o.schema}.Sanitize()
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+schema)
			return err
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.StoreConnect)
	err = pool.Ping(pingCtx)
	cancel()
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if o.schema != "" {
		if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{o.schema}.Sanitize()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	for _, stmt := range schemaSQL {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure kv tables: %w", err)
		}
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	if s.closed.CompareAndSwap(false, true) {
		s.pool.Close()
	}
	return nil
}

// View runs fn in a read-only repeatable-read transaction.
func (s *Store) View(ctx context.Context, fn func(kv.Reader) error) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()
	return fn(&txn{tx: tx})
}

// Update runs fn while holding the writer advisory lock and commits on success.
func (s *Store) Update(ctx context.Context, fn func(kv.Writer) error) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", writerLockID); err != nil {
		return fmt.Errorf("acquire writer lock: %w", err)
	}
	if err := fn(&txn{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.pool == nil || s.closed.Load() {
		return kv.ErrClosed
	}
	return nil
}

type txn struct {
	tx pgx.Tx
}

func (t *txn) Get(ctx context.Context, key kv.Key) ([]byte, bool, error) {
	var value []byte
	err := t.tx.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, []byte(key)).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (t *txn) Has(ctx context.Context, key kv.Key) (bool, error) {
	var found bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM kv_entries WHERE key = $1)`, []byte(key)).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("has %s: %w", key, err)
	}
	return found, nil
}

func (t *txn) Expiry(ctx context.Context) (time.Time, error) {
	var expiresAt int64
	err := t.tx.QueryRow(ctx, `SELECT expires_at FROM kv_instance WHERE id = 1`).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("get expiry: %w", err)
	}
	return time.UnixMilli(expiresAt).UTC(), nil
}

func (t *txn) Set(ctx context.Context, key kv.Key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := t.tx.Exec(
		ctx,
		`INSERT INTO kv_entries (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		[]byte(key),
		value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (t *txn) Extend(ctx context.Context, until time.Time) error {
	_, err := t.tx.Exec(
		ctx,
		`INSERT INTO kv_instance (id, expires_at) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET expires_at = GREATEST(kv_instance.expires_at, EXCLUDED.expires_at)`,
		until.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("extend expiry: %w", err)
	}
	return nil
}
