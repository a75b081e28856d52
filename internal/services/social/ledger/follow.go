package ledger

import (
	"context"

	"github.com/louisbranch/socialledger/internal/services/social/storage"
)

// Follow records follower following followee and returns followee's new
// follower count.
func (l Ledger) Follow(ctx context.Context, follower, followee storage.Address) (uint32, error) {
	if follower == followee {
		return 0, ErrSelfFollowNotAllowed
	}
	if l.opts.FollowPolicy == FollowIdempotent {
		following, err := storage.FollowedBy.Has(ctx, l.w, followee, follower)
		if err != nil {
			return 0, err
		}
		if following {
			return storage.Followers.Count(ctx, l.w, followee)
		}
	}
	count, err := storage.Followers.Append(ctx, l.w, followee, follower)
	if err != nil {
		return 0, err
	}
	if err := storage.FollowedBy.Set(ctx, l.w, followee, follower, true); err != nil {
		return 0, err
	}
	return count, nil
}

// FollowersCount returns how many follower slots addr has.
func (v View) FollowersCount(ctx context.Context, addr storage.Address) (uint32, error) {
	return storage.Followers.Count(ctx, v.r, addr)
}

// FollowerByNr returns the follower in slot nr of addr.
func (v View) FollowerByNr(ctx context.Context, addr storage.Address, nr uint32) (storage.Address, error) {
	return storage.Followers.Get(ctx, v.r, addr, nr)
}

// ListFollowers returns up to limit followers of addr starting at slot start.
func (v View) ListFollowers(ctx context.Context, addr storage.Address, start, limit uint32) ([]storage.Address, error) {
	return storage.Followers.List(ctx, v.r, addr, start, limit)
}

// FollowStatus reports whether follower follows followee.
func (v View) FollowStatus(ctx context.Context, followee, follower storage.Address) (bool, error) {
	return storage.FollowedBy.Has(ctx, v.r, followee, follower)
}
