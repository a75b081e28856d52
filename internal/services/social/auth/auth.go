// Package auth decides whether the current call was authorized by the
// controller of an account.
//
// Proof of control is established by the host before a call reaches the
// ledger; this package only compares what the host vouched for.
package auth

import (
	"context"

	apperrors "github.com/louisbranch/socialledger/internal/platform/errors"
	"github.com/louisbranch/socialledger/internal/platform/requestctx"
	"github.com/louisbranch/socialledger/internal/services/social/storage"
)

// ErrUnauthorized matches authorization failures.
var ErrUnauthorized = apperrors.New(apperrors.CodeUnauthorized, "caller is not authorized")

// Authorizer confirms the current call acts on behalf of addr.
type Authorizer interface {
	Authorize(ctx context.Context, addr storage.Address) error
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, addr storage.Address) error

// Authorize calls f.
func (f AuthorizerFunc) Authorize(ctx context.Context, addr storage.Address) error {
	return f(ctx, addr)
}

// CallerAuthorizer accepts a call when the caller stored in the context by
// requestctx.WithCaller equals the acting address.
type CallerAuthorizer struct{}

// Authorize implements Authorizer.
func (CallerAuthorizer) Authorize(ctx context.Context, addr storage.Address) error {
	caller := requestctx.CallerFromContext(ctx)
	if caller == "" {
		return apperrors.WithMetadata(apperrors.CodeUnauthorized, "no authenticated caller", map[string]string{
			"address": addr.String(),
		})
	}
	if caller != addr.String() {
		return apperrors.WithMetadata(apperrors.CodeUnauthorized, "caller does not control address", map[string]string{
			"address": addr.String(),
			"caller":  caller,
		})
	}
	return nil
}

// AllowAll authorizes every call. It suits hosts that verify control before
// dispatching and tests.
var AllowAll = AuthorizerFunc(func(context.Context, storage.Address) error { return nil })
