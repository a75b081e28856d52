package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/socialledger/internal/platform/requestctx"
	"github.com/louisbranch/socialledger/internal/services/social/storage"
)

func TestCallerAuthorizer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ctx     context.Context
		addr    storage.Address
		wantErr bool
	}{
		{name: "matching caller", ctx: requestctx.WithCaller(context.Background(), "GALICE"), addr: "GALICE"},
		{name: "missing caller", ctx: context.Background(), addr: "GALICE", wantErr: true},
		{name: "other caller", ctx: requestctx.WithCaller(context.Background(), "GBOB"), addr: "GALICE", wantErr: true},
		{name: "case sensitive", ctx: requestctx.WithCaller(context.Background(), "galice"), addr: "GALICE", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := CallerAuthorizer{}.Authorize(tc.ctx, tc.addr)
			if tc.wantErr {
				if !errors.Is(err, ErrUnauthorized) {
					t.Fatalf("expected ErrUnauthorized, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("authorize: %v", err)
			}
		})
	}
}

func TestAuthorizerFunc(t *testing.T) {
	t.Parallel()
	var got storage.Address
	authorizer := AuthorizerFunc(func(_ context.Context, addr storage.Address) error {
		got = addr
		return ErrUnauthorized
	})
	if err := authorizer.Authorize(context.Background(), "GBOB"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if got != "GBOB" {
		t.Fatalf("address = %q, want GBOB", got)
	}
}

func TestAllowAll(t *testing.T) {
	t.Parallel()
	if err := AllowAll.Authorize(context.Background(), "GANY"); err != nil {
		t.Fatalf("allow all: %v", err)
	}
}
