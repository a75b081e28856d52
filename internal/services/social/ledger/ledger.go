// Package ledger implements the social ledger on top of the indexed relation
// store: user profiles, the follow graph, posts with comments, and likes.
//
// A View reads inside one backend call and a Ledger writes inside one. The
// caller owns the call boundary, so every operation that returns an error
// must have its call discarded by the caller.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/socialledger/internal/platform/errors"
	"github.com/louisbranch/socialledger/internal/platform/kv"
	"github.com/louisbranch/socialledger/internal/services/social/relation"
	"github.com/louisbranch/socialledger/internal/services/social/storage"
)

var (
	// ErrAlreadyInitialized matches a second Initialize.
	ErrAlreadyInitialized = apperrors.New(apperrors.CodeAlreadyInitialized, "ledger is already initialized")
	// ErrNotInitialized matches writes against a ledger that was never initialized.
	ErrNotInitialized = apperrors.New(apperrors.CodeNotInitialized, "ledger is not initialized")
	// ErrSelfFollowNotAllowed matches follow calls where both sides are the same account.
	ErrSelfFollowNotAllowed = apperrors.New(apperrors.CodeSelfFollowNotAllowed, "users cannot follow themselves")
	// ErrOutOfRange matches index and post number errors.
	ErrOutOfRange = relation.ErrOutOfRange
)

// FollowPolicy selects how a repeated follow of the same pair is recorded.
type FollowPolicy int

const (
	// FollowMultiset appends every follow call, so repeats add duplicate
	// follower slots and raise the count.
	FollowMultiset FollowPolicy = iota
	// FollowIdempotent ignores a follow whose membership flag is already set.
	FollowIdempotent
)

// String returns the policy name used in configuration.
func (p FollowPolicy) String() string {
	switch p {
	case FollowMultiset:
		return "multiset"
	case FollowIdempotent:
		return "idempotent"
	default:
		return fmt.Sprintf("FollowPolicy(%d)", int(p))
	}
}

// ParseFollowPolicy parses a policy name; empty selects FollowMultiset.
func ParseFollowPolicy(value string) (FollowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "multiset":
		return FollowMultiset, nil
	case "idempotent":
		return FollowIdempotent, nil
	default:
		return 0, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("unknown follow policy %q", value))
	}
}

// Options configure a Ledger.
type Options struct {
	// Now stamps new posts and comments. Defaults to time.Now.
	Now func() time.Time
	// FollowPolicy defaults to FollowMultiset.
	FollowPolicy FollowPolicy
}

// View reads ledger state.
type View struct {
	r kv.Reader
}

// NewView wraps a reader from the current backend call.
func NewView(r kv.Reader) View {
	return View{r: r}
}

// Ledger reads and writes ledger state.
type Ledger struct {
	View
	w    kv.Writer
	opts Options
}

// New wraps a writer from the current backend call.
func New(w kv.Writer, opts Options) Ledger {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return Ledger{View: View{r: w}, w: w, opts: opts}
}

// Initialized reports whether Initialize has run.
func (v View) Initialized(ctx context.Context) (bool, error) {
	ok, _, err := kv.GetValue[bool](ctx, v.r, storage.InitializedKey())
	if err != nil {
		return false, fmt.Errorf("read initialized flag: %w", err)
	}
	return ok, nil
}

// Expiry returns the retention horizon recorded by the backend.
func (v View) Expiry(ctx context.Context) (time.Time, error) {
	return v.r.Expiry(ctx)
}

// RequireInitialized fails with ErrNotInitialized before Initialize has run.
func (v View) RequireInitialized(ctx context.Context) error {
	ok, err := v.Initialized(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotInitialized
	}
	return nil
}

// Initialize marks the ledger initialized and extends its retention to
// expiresAt. It runs once per ledger.
func (l Ledger) Initialize(ctx context.Context, expiresAt time.Time) error {
	ok, err := l.Initialized(ctx)
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyInitialized
	}
	if err := kv.PutValue(ctx, l.w, storage.InitializedKey(), true); err != nil {
		return fmt.Errorf("write initialized flag: %w", err)
	}
	if err := l.w.Extend(ctx, expiresAt); err != nil {
		return fmt.Errorf("extend retention: %w", err)
	}
	return nil
}

// UserInfo returns addr's profile, empty when never set.
func (v View) UserInfo(ctx context.Context, addr storage.Address) (storage.UserInfo, error) {
	info, _, err := kv.GetValue[storage.UserInfo](ctx, v.r, storage.UsersKey(addr))
	if err != nil {
		return storage.UserInfo{}, fmt.Errorf("read user info: %w", err)
	}
	return info, nil
}

// UpdateUserInfo overwrites addr's profile.
func (l Ledger) UpdateUserInfo(ctx context.Context, addr storage.Address, info storage.UserInfo) (storage.UserInfo, error) {
	if err := kv.PutValue(ctx, l.w, storage.UsersKey(addr), info); err != nil {
		return storage.UserInfo{}, fmt.Errorf("write user info: %w", err)
	}
	return info, nil
}

func (l Ledger) timestamp() uint64 {
	seconds := l.opts.Now().Unix()
	if seconds < 0 {
		return 0
	}
	return uint64(seconds)
}
