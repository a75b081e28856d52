package kv

import (
	"context"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("kv: cbor enc mode: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("kv: cbor dec mode: %v", err))
	}
}

// Marshal encodes v with deterministic CBOR.
func Marshal(v any) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return data, nil
}

// Unmarshal decodes CBOR data into v, rejecting unknown fields.
func Unmarshal(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	return nil
}

// GetValue reads and decodes the value stored under key.
// The boolean is false when the key does not exist.
func GetValue[T any](ctx context.Context, r Reader, key Key) (T, bool, error) {
	var out T
	data, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("key %s: %w", key, err)
	}
	return out, true, nil
}

// PutValue encodes v and stores it under key.
func PutValue(ctx context.Context, w Writer, key Key, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("key %s: %w", key, err)
	}
	return w.Set(ctx, key, data)
}
