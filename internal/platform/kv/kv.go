// Package kv defines the point-access key/value backend the social ledger is
// written against.
//
// A backend offers only single-key reads and writes; it has no native list or
// collection type. Every mutating call runs inside Store.Update and commits
// all of its writes or none of them.
package kv

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"time"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("kv store is closed")

// Key is an opaque composite key.
type Key []byte

// String renders the key as hex for logs and error messages.
func (k Key) String() string {
	return hex.EncodeToString(k)
}

// KeyBuilder assembles a composite key from a kind tag and typed segments.
// String segments are length prefixed so adjacent segments never run together,
// and integer segments are big-endian so one owner's slots sort by index.
type KeyBuilder struct {
	buf []byte
}

// NewKey starts a key of the given kind.
func NewKey(kind uint8) KeyBuilder {
	return KeyBuilder{buf: []byte{kind}}
}

// Str appends a length-prefixed string segment.
func (b KeyBuilder) Str(value string) KeyBuilder {
	buf := make([]byte, len(b.buf), len(b.buf)+binary.MaxVarintLen64+len(value))
	copy(buf, b.buf)
	buf = binary.AppendUvarint(buf, uint64(len(value)))
	buf = append(buf, value...)
	return KeyBuilder{buf: buf}
}

// Uint32 appends a fixed-width big-endian integer segment.
func (b KeyBuilder) Uint32(value uint32) KeyBuilder {
	buf := make([]byte, len(b.buf), len(b.buf)+4)
	copy(buf, b.buf)
	buf = binary.BigEndian.AppendUint32(buf, value)
	return KeyBuilder{buf: buf}
}

// Key returns the assembled key.
func (b KeyBuilder) Key() Key {
	out := make(Key, len(b.buf))
	copy(out, b.buf)
	return out
}

// Reader reads keys within one backend call.
type Reader interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	// Has reports whether the key exists.
	Has(ctx context.Context, key Key) (bool, error)
	// Expiry returns the retention horizon; zero when never extended.
	Expiry(ctx context.Context) (time.Time, error)
}

// Writer reads and writes keys within one all-or-nothing backend call.
type Writer interface {
	Reader
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key Key, value []byte) error
	// Extend moves the retention horizon to until unless it is already later.
	Extend(ctx context.Context, until time.Time) error
}

// Store runs serialized backend calls.
type Store interface {
	// View runs fn against a consistent snapshot.
	View(ctx context.Context, fn func(Reader) error) error
	// Update runs fn and commits its writes only if fn returns nil.
	Update(ctx context.Context, fn func(Writer) error) error
	// Close releases backend resources.
	Close() error
}
