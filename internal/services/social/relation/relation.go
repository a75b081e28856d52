// Package relation maps per-owner append-only sequences, membership flags and
// counters onto a point-access kv backend.
//
// A sequence is stored as one count key plus one item key per slot. Slots are
// 1-based and contiguous: ItemKey(owner, i) exists for every i in [1, Count]
// and for no other i. All reads and writes happen inside the caller's backend
// call, so an Append that fails leaves neither the item nor the count behind.
package relation

import (
	"context"
	"fmt"
	"math"
	"strconv"

	apperrors "github.com/louisbranch/socialledger/internal/platform/errors"
	"github.com/louisbranch/socialledger/internal/platform/kv"
)

var (
	// ErrOutOfRange matches errors for indexes outside [1, Count].
	ErrOutOfRange = apperrors.New(apperrors.CodeOutOfRange, "index out of range")
	// ErrInconsistent matches errors for broken store invariants.
	ErrInconsistent = apperrors.New(apperrors.CodeStoreInconsistent, "store is inconsistent")
	// ErrCounterOverflow matches errors for counters that cannot grow further.
	ErrCounterOverflow = apperrors.New(apperrors.CodeCounterOverflow, "counter overflow")
)

// Sequence is an append-only, densely indexed list of T per owner O.
type Sequence[O, T any] struct {
	CountKey func(O) kv.Key
	ItemKey  func(O, uint32) kv.Key
}

// Count returns the last assigned index, or 0 when nothing was appended.
func (s Sequence[O, T]) Count(ctx context.Context, r kv.Reader, owner O) (uint32, error) {
	count, _, err := kv.GetValue[uint32](ctx, r, s.CountKey(owner))
	if err != nil {
		return 0, fmt.Errorf("read count: %w", err)
	}
	return count, nil
}

// Get returns the record stored at index.
func (s Sequence[O, T]) Get(ctx context.Context, r kv.Reader, owner O, index uint32) (T, error) {
	var zero T
	count, err := s.Count(ctx, r, owner)
	if err != nil {
		return zero, err
	}
	if err := CheckIndex(index, count); err != nil {
		return zero, err
	}
	return s.slot(ctx, r, owner, index)
}

// Append stores record at Count+1 and returns the new index.
func (s Sequence[O, T]) Append(ctx context.Context, w kv.Writer, owner O, record T) (uint32, error) {
	index, _, err := s.AppendFunc(ctx, w, owner, func(uint32) T { return record })
	return index, err
}

// AppendFunc is Append for records that embed their own index.
func (s Sequence[O, T]) AppendFunc(ctx context.Context, w kv.Writer, owner O, build func(index uint32) T) (uint32, T, error) {
	var zero T
	count, err := s.Count(ctx, w, owner)
	if err != nil {
		return 0, zero, err
	}
	if count == math.MaxUint32 {
		return 0, zero, apperrors.WithMetadata(
			apperrors.CodeCounterOverflow,
			"sequence is full",
			map[string]string{"count": strconv.FormatUint(uint64(count), 10)},
		)
	}
	index := count + 1
	record := build(index)
	if err := kv.PutValue(ctx, w, s.ItemKey(owner, index), record); err != nil {
		return 0, zero, fmt.Errorf("write slot %d: %w", index, err)
	}
	if err := kv.PutValue(ctx, w, s.CountKey(owner), index); err != nil {
		return 0, zero, fmt.Errorf("write count: %w", err)
	}
	return index, record, nil
}

// List reads up to limit records starting at start. start may equal Count+1,
// which yields an empty list.
func (s Sequence[O, T]) List(ctx context.Context, r kv.Reader, owner O, start, limit uint32) ([]T, error) {
	count, err := s.Count(ctx, r, owner)
	if err != nil {
		return nil, err
	}
	if start < 1 || uint64(start) > uint64(count)+1 {
		return nil, outOfRange(start, count)
	}
	end := uint64(start) + uint64(limit) - 1
	if end > uint64(count) {
		end = uint64(count)
	}
	items := make([]T, 0, end+1-uint64(start))
	for i := uint64(start); i <= end; i++ {
		item, err := s.slot(ctx, r, owner, uint32(i))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s Sequence[O, T]) slot(ctx context.Context, r kv.Reader, owner O, index uint32) (T, error) {
	key := s.ItemKey(owner, index)
	item, ok, err := kv.GetValue[T](ctx, r, key)
	if err != nil {
		return item, fmt.Errorf("read slot %d: %w", index, err)
	}
	if !ok {
		return item, apperrors.WithMetadata(
			apperrors.CodeStoreInconsistent,
			fmt.Sprintf("slot %d is missing", index),
			map[string]string{"key": key.String()},
		)
	}
	return item, nil
}

// CheckIndex rejects index values outside [1, count].
func CheckIndex(index, count uint32) error {
	if index < 1 || index > count {
		return outOfRange(index, count)
	}
	return nil
}

func outOfRange(index, count uint32) error {
	return apperrors.WithMetadata(
		apperrors.CodeOutOfRange,
		fmt.Sprintf("index %d outside [1, %d]", index, count),
		map[string]string{
			"index": strconv.FormatUint(uint64(index), 10),
			"count": strconv.FormatUint(uint64(count), 10),
		},
	)
}

// Membership is a boolean flag per (owner, member) pair, false when unset.
type Membership[O, M any] struct {
	Key func(O, M) kv.Key
}

// Has reports the flag for (owner, member).
func (m Membership[O, M]) Has(ctx context.Context, r kv.Reader, owner O, member M) (bool, error) {
	value, _, err := kv.GetValue[bool](ctx, r, m.Key(owner, member))
	if err != nil {
		return false, fmt.Errorf("read membership: %w", err)
	}
	return value, nil
}

// Set overwrites the flag for (owner, member).
func (m Membership[O, M]) Set(ctx context.Context, w kv.Writer, owner O, member M, value bool) error {
	if err := kv.PutValue(ctx, w, m.Key(owner, member), value); err != nil {
		return fmt.Errorf("write membership: %w", err)
	}
	return nil
}

// Tally is a counter per owner that may move in both directions but never
// below zero.
type Tally[O any] struct {
	Key func(O) kv.Key
}

// Get returns the counter, 0 when unset.
func (t Tally[O]) Get(ctx context.Context, r kv.Reader, owner O) (uint32, error) {
	value, _, err := kv.GetValue[uint32](ctx, r, t.Key(owner))
	if err != nil {
		return 0, fmt.Errorf("read tally: %w", err)
	}
	return value, nil
}

// Adjust adds delta to the counter and returns the new value.
func (t Tally[O]) Adjust(ctx context.Context, w kv.Writer, owner O, delta int) (uint32, error) {
	current, err := t.Get(ctx, w, owner)
	if err != nil {
		return 0, err
	}
	next := int64(current) + int64(delta)
	switch {
	case next < 0:
		return 0, apperrors.WithMetadata(
			apperrors.CodeStoreInconsistent,
			"tally would go negative",
			map[string]string{"current": strconv.FormatUint(uint64(current), 10), "delta": strconv.Itoa(delta)},
		)
	case next > math.MaxUint32:
		return 0, apperrors.WithMetadata(
			apperrors.CodeCounterOverflow,
			"tally is full",
			map[string]string{"current": strconv.FormatUint(uint64(current), 10), "delta": strconv.Itoa(delta)},
		)
	}
	if err := kv.PutValue(ctx, w, t.Key(owner), uint32(next)); err != nil {
		return 0, fmt.Errorf("write tally: %w", err)
	}
	return uint32(next), nil
}
