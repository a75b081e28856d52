package app

import (
	"context"
	"log"

	apperrors "github.com/louisbranch/socialledger/internal/platform/errors"
	"github.com/louisbranch/socialledger/internal/platform/id"
	"github.com/louisbranch/socialledger/internal/platform/kv"
	"github.com/louisbranch/socialledger/internal/platform/telemetry"
	"github.com/louisbranch/socialledger/internal/services/social/ledger"
	"github.com/louisbranch/socialledger/internal/services/social/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const spanPrefix = "socialledger."

// mutation describes one state-changing entry point call.
type mutation struct {
	op string
	// actor must authorize the call; empty skips authorization.
	actor storage.Address
	// uninitialized lets the body run before Initialize.
	uninitialized bool
	attrs         map[string]string
}

// invoke is the single gate for mutating calls. It authorizes the actor,
// requires initialization, runs body in one all-or-nothing backend call and
// emits one audit event with the outcome.
func (c *Contract) invoke(ctx context.Context, m mutation, body func(context.Context, ledger.Ledger) error) error {
	callID, idErr := id.NewID()
	if idErr != nil {
		log.Printf("call id for %s: %v", m.op, idErr)
	}

	ctx, span := c.tracer.Start(ctx, spanPrefix+m.op, trace.WithAttributes(
		attribute.String("socialledger.call_id", callID),
		attribute.String("socialledger.actor", m.actor.String()),
		attribute.Bool("socialledger.mutation", true),
	))
	defer span.End()

	err := c.runMutation(ctx, m, body)
	recordSpanError(span, err)
	c.audit(ctx, callID, m, err)
	return err
}

func (c *Contract) runMutation(ctx context.Context, m mutation, body func(context.Context, ledger.Ledger) error) error {
	if m.actor != "" {
		if err := c.authorizer.Authorize(ctx, m.actor); err != nil {
			return err
		}
	}
	opts := ledger.Options{Now: c.clock.Now, FollowPolicy: c.policy}
	return c.store.Update(ctx, func(w kv.Writer) error {
		l := ledger.New(w, opts)
		if !m.uninitialized {
			if err := l.RequireInitialized(ctx); err != nil {
				return err
			}
		}
		return body(ctx, l)
	})
}

// view runs a read-only call. Reads need no authorization.
func (c *Contract) view(ctx context.Context, op string, body func(context.Context, ledger.View) error) error {
	ctx, span := c.tracer.Start(ctx, spanPrefix+op, trace.WithAttributes(
		attribute.Bool("socialledger.mutation", false),
	))
	defer span.End()

	err := c.store.View(ctx, func(r kv.Reader) error {
		return body(ctx, ledger.NewView(r))
	})
	recordSpanError(span, err)
	return err
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("socialledger.error_code", string(apperrors.CodeOf(err))))
}

func (c *Contract) audit(ctx context.Context, callID string, m mutation, err error) {
	if c.emitter == nil {
		return
	}
	outcome := "ok"
	severity := telemetry.SeverityInfo
	if err != nil {
		code := apperrors.CodeOf(err)
		outcome = string(code)
		severity = telemetry.SeverityWarn
		if code.Category() == apperrors.CategoryInternal {
			severity = telemetry.SeverityError
		}
	}

	var traceID, spanID string
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		traceID = sc.TraceID().String()
		spanID = sc.SpanID().String()
	}

	emitErr := c.emitter.Emit(ctx, telemetry.Event{
		Name:       m.op,
		Severity:   severity,
		CallID:     callID,
		Actor:      m.actor.String(),
		Outcome:    outcome,
		TraceID:    traceID,
		SpanID:     spanID,
		Attributes: m.attrs,
	})
	if emitErr != nil {
		log.Printf("audit emit %s: %v", m.op, emitErr)
	}
}
