// Package app exposes the social ledger entry points.
//
// Every mutating entry point goes through one gate that authorizes the acting
// address and commits the call's writes all at once. Readers need no
// authorization.
package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/louisbranch/socialledger/internal/platform/kv"
	platformotel "github.com/louisbranch/socialledger/internal/platform/otel"
	"github.com/louisbranch/socialledger/internal/platform/telemetry"
	"github.com/louisbranch/socialledger/internal/services/social/address"
	"github.com/louisbranch/socialledger/internal/services/social/auth"
	"github.com/louisbranch/socialledger/internal/services/social/ledger"
	"github.com/louisbranch/socialledger/internal/services/social/profile"
	"github.com/louisbranch/socialledger/internal/services/social/storage"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = platformotel.InstrumentationName

// Contract serves the social ledger entry points over a kv.Store.
type Contract struct {
	store      kv.Store
	authorizer auth.Authorizer
	clock      *monotonicClock
	emitter    *telemetry.Emitter
	policy     ledger.FollowPolicy
	horizon    time.Duration
	tracer     trace.Tracer
}

// Status summarizes a ledger.
type Status struct {
	Initialized bool      `json:"initialized"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
	PostsCount  uint32    `json:"posts_count"`
}

// New builds a Contract over store.
func New(store kv.Store, opts ...Option) (*Contract, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store is required")
	}
	c := &Contract{
		store:      store,
		authorizer: auth.CallerAuthorizer{},
		clock:      newMonotonicClock(time.Now),
		policy:     ledger.FollowMultiset,
		horizon:    DefaultBumpHorizon,
		tracer:     platformotel.Tracer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Initialize marks the ledger initialized and extends its retention by the
// bump horizon. It fails if the ledger was already initialized.
func (c *Contract) Initialize(ctx context.Context) error {
	return c.invoke(ctx, mutation{op: "initialize", uninitialized: true}, func(ctx context.Context, l ledger.Ledger) error {
		return l.Initialize(ctx, c.clock.Now().Add(c.horizon))
	})
}

// UpdateUserInfo overwrites addr's profile.
func (c *Contract) UpdateUserInfo(ctx context.Context, addr storage.Address, name, bio, avatarURI string) (storage.UserInfo, error) {
	addr, err := address.Parse(string(addr))
	if err != nil {
		return storage.UserInfo{}, err
	}
	info, err := profile.Normalize(name, bio, avatarURI)
	if err != nil {
		return storage.UserInfo{}, err
	}
	var out storage.UserInfo
	err = c.invoke(ctx, mutation{op: "update_user_info", actor: addr}, func(ctx context.Context, l ledger.Ledger) error {
		var err error
		out, err = l.UpdateUserInfo(ctx, addr, info)
		return err
	})
	return out, err
}

// FollowUser records follower following addr and returns addr's follower
// count. The follower authorizes the call.
func (c *Contract) FollowUser(ctx context.Context, follower, addr storage.Address) (uint32, error) {
	follower, err := address.Parse(string(follower))
	if err != nil {
		return 0, err
	}
	addr, err = address.Parse(string(addr))
	if err != nil {
		return 0, err
	}
	var count uint32
	err = c.invoke(ctx, mutation{
		op:    "follow_user",
		actor: follower,
		attrs: map[string]string{"followee": addr.String()},
	}, func(ctx context.Context, l ledger.Ledger) error {
		var err error
		count, err = l.Follow(ctx, follower, addr)
		return err
	})
	return count, err
}

// AddPost publishes a post authored by addr.
func (c *Contract) AddPost(ctx context.Context, addr storage.Address, text, contentURI string) (storage.Post, error) {
	addr, err := address.Parse(string(addr))
	if err != nil {
		return storage.Post{}, err
	}
	text, contentURI, err = profile.PostText(text, contentURI)
	if err != nil {
		return storage.Post{}, err
	}
	var post storage.Post
	err = c.invoke(ctx, mutation{op: "add_post", actor: addr}, func(ctx context.Context, l ledger.Ledger) error {
		var err error
		post, err = l.AddPost(ctx, addr, text, contentURI)
		return err
	})
	return post, err
}

// SetOrRemoveLike toggles addr's like on post postNr and returns the post's
// like count.
func (c *Contract) SetOrRemoveLike(ctx context.Context, addr storage.Address, postNr uint32) (uint32, error) {
	addr, err := address.Parse(string(addr))
	if err != nil {
		return 0, err
	}
	var likes uint32
	err = c.invoke(ctx, mutation{
		op:    "set_or_remove_like",
		actor: addr,
		attrs: map[string]string{"post_nr": strconv.FormatUint(uint64(postNr), 10)},
	}, func(ctx context.Context, l ledger.Ledger) error {
		var err error
		likes, err = l.ToggleLike(ctx, postNr, addr)
		return err
	})
	return likes, err
}

// AddComment comments on post postNr as addr.
func (c *Contract) AddComment(ctx context.Context, addr storage.Address, postNr uint32, text string) (storage.Comment, error) {
	addr, err := address.Parse(string(addr))
	if err != nil {
		return storage.Comment{}, err
	}
	text, err = profile.CommentText(text)
	if err != nil {
		return storage.Comment{}, err
	}
	var comment storage.Comment
	err = c.invoke(ctx, mutation{
		op:    "add_comment",
		actor: addr,
		attrs: map[string]string{"post_nr": strconv.FormatUint(uint64(postNr), 10)},
	}, func(ctx context.Context, l ledger.Ledger) error {
		var err error
		comment, err = l.AddComment(ctx, postNr, addr, text)
		return err
	})
	return comment, err
}

// Status reports initialization, retention and post count.
func (c *Contract) Status(ctx context.Context) (Status, error) {
	var status Status
	err := c.view(ctx, "status", func(ctx context.Context, v ledger.View) error {
		var err error
		if status.Initialized, err = v.Initialized(ctx); err != nil {
			return err
		}
		if status.ExpiresAt, err = v.Expiry(ctx); err != nil {
			return err
		}
		status.PostsCount, err = v.PostsCount(ctx)
		return err
	})
	return status, err
}
