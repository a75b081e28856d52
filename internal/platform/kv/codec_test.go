package kv_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/louisbranch/socialledger/internal/platform/kv"
	"github.com/louisbranch/socialledger/internal/platform/kv/memory"
)

type record struct {
	ID   uint32 `cbor:"id"`
	Text string `cbor:"text"`
}

func TestMarshalIsDeterministic(t *testing.T) {
	first, err := kv.Marshal(map[string]uint32{"b": 2, "a": 1, "c": 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := kv.Marshal(map[string]uint32{"c": 3, "a": 1, "b": 2})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("expected identical encodings for equal maps")
		}
	}
}

func TestUnmarshalRejectsUnknownFields(t *testing.T) {
	data, err := kv.Marshal(map[string]any{"id": 1, "text": "hi", "extra": true})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out record
	if err := kv.Unmarshal(data, &out); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestGetValueMissingKey(t *testing.T) {
	store := memory.New()
	key := kv.NewKey(1).Str("missing").Key()

	err := store.View(context.Background(), func(r kv.Reader) error {
		got, ok, err := kv.GetValue[record](context.Background(), r, key)
		if err != nil {
			return err
		}
		if ok {
			t.Fatalf("expected missing key, got %+v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestPutValueGetValueRoundTrip(t *testing.T) {
	store := memory.New()
	key := kv.NewKey(1).Uint32(7).Key()
	want := record{ID: 7, Text: "hello"}

	if err := store.Update(context.Background(), func(w kv.Writer) error {
		return kv.PutValue(context.Background(), w, key, want)
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var got record
	if err := store.View(context.Background(), func(r kv.Reader) error {
		value, ok, err := kv.GetValue[record](context.Background(), r, key)
		if err != nil {
			return err
		}
		if !ok {
			t.Fatal("expected stored value")
		}
		got = value
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestGetValueReportsCorruptValue(t *testing.T) {
	store := memory.New()
	key := kv.NewKey(1).Key()

	if err := store.Update(context.Background(), func(w kv.Writer) error {
		return w.Set(context.Background(), key, []byte{0xff, 0x00})
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	err := store.View(context.Background(), func(r kv.Reader) error {
		_, _, err := kv.GetValue[record](context.Background(), r, key)
		return err
	})
	if err == nil {
		t.Fatal("expected decode error")
	}
}
