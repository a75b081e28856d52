package app

import (
	"time"

	"github.com/louisbranch/socialledger/internal/platform/telemetry"
	"github.com/louisbranch/socialledger/internal/services/social/auth"
	"github.com/louisbranch/socialledger/internal/services/social/ledger"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBumpHorizon is how far Initialize extends the ledger's retention,
// roughly 518400 five-second ledger closes.
const DefaultBumpHorizon = 720 * time.Hour

// Option customizes a Contract.
type Option func(*Contract)

// WithAuthorizer replaces the default auth.CallerAuthorizer.
func WithAuthorizer(authorizer auth.Authorizer) Option {
	return func(c *Contract) {
		if authorizer != nil {
			c.authorizer = authorizer
		}
	}
}

// WithClock sets the time source for record timestamps and retention.
func WithClock(now func() time.Time) Option {
	return func(c *Contract) {
		if now != nil {
			c.clock = newMonotonicClock(now)
		}
	}
}

// WithEmitter sends one audit event per mutating call to emitter.
func WithEmitter(emitter *telemetry.Emitter) Option {
	return func(c *Contract) {
		c.emitter = emitter
	}
}

// WithFollowPolicy selects how repeated follows are recorded.
func WithFollowPolicy(policy ledger.FollowPolicy) Option {
	return func(c *Contract) {
		c.policy = policy
	}
}

// WithBumpHorizon sets how far Initialize extends retention.
func WithBumpHorizon(horizon time.Duration) Option {
	return func(c *Contract) {
		if horizon > 0 {
			c.horizon = horizon
		}
	}
}

// WithTracerProvider creates spans from provider instead of the global one.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *Contract) {
		if provider != nil {
			c.tracer = provider.Tracer(instrumentationName)
		}
	}
}
