package ledger

import (
	"context"

	"github.com/louisbranch/socialledger/internal/services/social/storage"
)

// ToggleLike flips addr's like on post postNr and returns the post's new like
// count.
func (l Ledger) ToggleLike(ctx context.Context, postNr uint32, addr storage.Address) (uint32, error) {
	if err := l.RequirePost(ctx, postNr); err != nil {
		return 0, err
	}
	liked, err := storage.LikeStatus.Has(ctx, l.w, postNr, addr)
	if err != nil {
		return 0, err
	}
	delta := 1
	if liked {
		delta = -1
	}
	if err := storage.LikeStatus.Set(ctx, l.w, postNr, addr, !liked); err != nil {
		return 0, err
	}
	return storage.PostLikes.Adjust(ctx, l.w, postNr, delta)
}

// PostLikes returns the like count of post postNr.
func (v View) PostLikes(ctx context.Context, postNr uint32) (uint32, error) {
	if err := v.RequirePost(ctx, postNr); err != nil {
		return 0, err
	}
	return storage.PostLikes.Get(ctx, v.r, postNr)
}

// LikeStatus reports whether addr likes post postNr.
func (v View) LikeStatus(ctx context.Context, postNr uint32, addr storage.Address) (bool, error) {
	if err := v.RequirePost(ctx, postNr); err != nil {
		return false, err
	}
	return storage.LikeStatus.Has(ctx, v.r, postNr, addr)
}
