package requestctx

import "context"

// callerContextKey is the context key for the host-authenticated caller.
type callerContextKey struct{}

// WithCaller stores the account identifier the host authenticated for the
// current call.
func WithCaller(ctx context.Context, address string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callerContextKey{}, address)
}

// CallerFromContext returns the authenticated caller stored in context.
func CallerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(callerContextKey{}).(string)
	return value
}
