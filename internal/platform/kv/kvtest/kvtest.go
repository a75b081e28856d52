// Package kvtest holds the behavior every kv.Store backend must share.
package kvtest

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/socialledger/internal/platform/kv"
)

// Open returns a fresh, empty store. Run closes it when the subtest ends.
type Open func(t *testing.T) kv.Store

// Run exercises a backend against the shared kv contract.
func Run(t *testing.T, open Open) {
	t.Helper()

	t.Run("missing key", func(t *testing.T) {
		store := openStore(t, open)
		key := kv.NewKey(1).Str("absent").Key()
		view(t, store, func(r kv.Reader) error {
			value, ok, err := r.Get(context.Background(), key)
			if err != nil {
				return err
			}
			if ok || value != nil {
				t.Fatalf("expected missing key, got ok=%v value=%x", ok, value)
			}
			has, err := r.Has(context.Background(), key)
			if err != nil {
				return err
			}
			if has {
				t.Fatal("expected Has false")
			}
			return nil
		})
	})

	t.Run("set then get", func(t *testing.T) {
		store := openStore(t, open)
		key := kv.NewKey(2).Str("alice").Uint32(1).Key()
		update(t, store, func(w kv.Writer) error {
			return w.Set(context.Background(), key, []byte("one"))
		})
		assertValue(t, store, key, []byte("one"))
	})

	t.Run("overwrite", func(t *testing.T) {
		store := openStore(t, open)
		key := kv.NewKey(2).Str("alice").Key()
		update(t, store, func(w kv.Writer) error {
			return w.Set(context.Background(), key, []byte("one"))
		})
		update(t, store, func(w kv.Writer) error {
			return w.Set(context.Background(), key, []byte("two"))
		})
		assertValue(t, store, key, []byte("two"))
	})

	t.Run("binary keys", func(t *testing.T) {
		store := openStore(t, open)
		first := kv.Key{0x00, 0x01}
		second := kv.Key{0x00, 0x01, 0x00}
		update(t, store, func(w kv.Writer) error {
			if err := w.Set(context.Background(), first, []byte("a")); err != nil {
				return err
			}
			return w.Set(context.Background(), second, []byte("b"))
		})
		assertValue(t, store, first, []byte("a"))
		assertValue(t, store, second, []byte("b"))
	})

	t.Run("read your writes", func(t *testing.T) {
		store := openStore(t, open)
		key := kv.NewKey(3).Key()
		update(t, store, func(w kv.Writer) error {
			if err := w.Set(context.Background(), key, []byte("staged")); err != nil {
				return err
			}
			value, ok, err := w.Get(context.Background(), key)
			if err != nil {
				return err
			}
			if !ok || !bytes.Equal(value, []byte("staged")) {
				t.Fatalf("expected staged value inside update, got ok=%v value=%q", ok, value)
			}
			return nil
		})
	})

	t.Run("failed update rolls back", func(t *testing.T) {
		store := openStore(t, open)
		kept := kv.NewKey(4).Str("kept").Key()
		dropped := kv.NewKey(4).Str("dropped").Key()
		update(t, store, func(w kv.Writer) error {
			return w.Set(context.Background(), kept, []byte("v1"))
		})

		boom := errors.New("boom")
		err := store.Update(context.Background(), func(w kv.Writer) error {
			if err := w.Set(context.Background(), kept, []byte("v2")); err != nil {
				return err
			}
			if err := w.Set(context.Background(), dropped, []byte("x")); err != nil {
				return err
			}
			if err := w.Extend(context.Background(), time.Now().Add(time.Hour)); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected callback error, got %v", err)
		}

		assertValue(t, store, kept, []byte("v1"))
		view(t, store, func(r kv.Reader) error {
			has, err := r.Has(context.Background(), dropped)
			if err != nil {
				return err
			}
			if has {
				t.Fatal("expected rolled back key to be absent")
			}
			expiry, err := r.Expiry(context.Background())
			if err != nil {
				return err
			}
			if !expiry.IsZero() {
				t.Fatalf("expected zero expiry after rollback, got %v", expiry)
			}
			return nil
		})
	})

	t.Run("values are copied", func(t *testing.T) {
		store := openStore(t, open)
		key := kv.NewKey(5).Key()
		value := []byte("orig")
		update(t, store, func(w kv.Writer) error {
			return w.Set(context.Background(), key, value)
		})
		value[0] = 'X'
		assertValue(t, store, key, []byte("orig"))
	})

	t.Run("extend only moves forward", func(t *testing.T) {
		store := openStore(t, open)
		later := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
		earlier := later.Add(-24 * time.Hour)

		update(t, store, func(w kv.Writer) error {
			return w.Extend(context.Background(), later)
		})
		update(t, store, func(w kv.Writer) error {
			return w.Extend(context.Background(), earlier)
		})
		view(t, store, func(r kv.Reader) error {
			expiry, err := r.Expiry(context.Background())
			if err != nil {
				return err
			}
			if !expiry.Equal(later) {
				t.Fatalf("expiry = %v, want %v", expiry, later)
			}
			return nil
		})
	})

	t.Run("canceled context", func(t *testing.T) {
		store := openStore(t, open)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false
		err := store.Update(ctx, func(kv.Writer) error {
			called = true
			return nil
		})
		if err == nil {
			t.Fatal("expected error for canceled context")
		}
		if called {
			t.Fatal("expected callback to be skipped")
		}
	})

	t.Run("closed store", func(t *testing.T) {
		store := open(t)
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		err := store.View(context.Background(), func(kv.Reader) error { return nil })
		if !errors.Is(err, kv.ErrClosed) {
			t.Fatalf("expected ErrClosed from View, got %v", err)
		}
		err = store.Update(context.Background(), func(kv.Writer) error { return nil })
		if !errors.Is(err, kv.ErrClosed) {
			t.Fatalf("expected ErrClosed from Update, got %v", err)
		}
	})
}

func openStore(t *testing.T, open Open) kv.Store {
	t.Helper()
	store := open(t)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func view(t *testing.T, store kv.Store, fn func(kv.Reader) error) {
	t.Helper()
	if err := store.View(context.Background(), fn); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func update(t *testing.T, store kv.Store, fn func(kv.Writer) error) {
	t.Helper()
	if err := store.Update(context.Background(), fn); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func assertValue(t *testing.T, store kv.Store, key kv.Key, want []byte) {
	t.Helper()
	view(t, store, func(r kv.Reader) error {
		got, ok, err := r.Get(context.Background(), key)
		if err != nil {
			return err
		}
		if !ok {
			t.Fatalf("expected key %s to exist", key)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("value for %s = %q, want %q", key, got, want)
		}
		return nil
	})
}
