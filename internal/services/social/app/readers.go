package app

import (
	"context"

	"github.com/louisbranch/socialledger/internal/services/social/address"
	"github.com/louisbranch/socialledger/internal/services/social/ledger"
	"github.com/louisbranch/socialledger/internal/services/social/storage"
)

// read runs fn in a view and returns its value.
func read[T any](ctx context.Context, c *Contract, op string, fn func(context.Context, ledger.View) (T, error)) (T, error) {
	var out T
	err := c.view(ctx, op, func(ctx context.Context, v ledger.View) error {
		var err error
		out, err = fn(ctx, v)
		return err
	})
	return out, err
}

// readFor is read for calls keyed by an address.
func readFor[T any](ctx context.Context, c *Contract, op string, addr storage.Address, fn func(context.Context, ledger.View, storage.Address) (T, error)) (T, error) {
	parsed, err := address.Parse(string(addr))
	if err != nil {
		var zero T
		return zero, err
	}
	return read(ctx, c, op, func(ctx context.Context, v ledger.View) (T, error) {
		return fn(ctx, v, parsed)
	})
}

// GetUserInfo returns addr's profile, empty when never set.
func (c *Contract) GetUserInfo(ctx context.Context, addr storage.Address) (storage.UserInfo, error) {
	return readFor(ctx, c, "get_user_info", addr, func(ctx context.Context, v ledger.View, addr storage.Address) (storage.UserInfo, error) {
		return v.UserInfo(ctx, addr)
	})
}

// GetUserFollowersCount returns how many follower slots addr has.
func (c *Contract) GetUserFollowersCount(ctx context.Context, addr storage.Address) (uint32, error) {
	return readFor(ctx, c, "get_user_followers_count", addr, func(ctx context.Context, v ledger.View, addr storage.Address) (uint32, error) {
		return v.FollowersCount(ctx, addr)
	})
}

// GetUserFollowerByNr returns follower nr of addr.
func (c *Contract) GetUserFollowerByNr(ctx context.Context, addr storage.Address, nr uint32) (storage.Address, error) {
	return readFor(ctx, c, "get_user_follower_by_nr", addr, func(ctx context.Context, v ledger.View, addr storage.Address) (storage.Address, error) {
		return v.FollowerByNr(ctx, addr, nr)
	})
}

// ListUserFollowers returns up to limit followers of addr from slot start.
func (c *Contract) ListUserFollowers(ctx context.Context, addr storage.Address, start, limit uint32) ([]storage.Address, error) {
	return readFor(ctx, c, "list_user_followers", addr, func(ctx context.Context, v ledger.View, addr storage.Address) ([]storage.Address, error) {
		return v.ListFollowers(ctx, addr, start, limit)
	})
}

// GetFollowStatus reports whether follower follows addr.
func (c *Contract) GetFollowStatus(ctx context.Context, addr, follower storage.Address) (bool, error) {
	follower, err := address.Parse(string(follower))
	if err != nil {
		return false, err
	}
	return readFor(ctx, c, "get_follow_status", addr, func(ctx context.Context, v ledger.View, addr storage.Address) (bool, error) {
		return v.FollowStatus(ctx, addr, follower)
	})
}

// GetPostsCount returns the number of posts.
func (c *Contract) GetPostsCount(ctx context.Context) (uint32, error) {
	return read(ctx, c, "get_posts_count", func(ctx context.Context, v ledger.View) (uint32, error) {
		return v.PostsCount(ctx)
	})
}

// GetPost returns post nr.
func (c *Contract) GetPost(ctx context.Context, nr uint32) (storage.Post, error) {
	return read(ctx, c, "get_post", func(ctx context.Context, v ledger.View) (storage.Post, error) {
		return v.Post(ctx, nr)
	})
}

// ListPosts returns up to limit posts from post start.
func (c *Contract) ListPosts(ctx context.Context, start, limit uint32) ([]storage.Post, error) {
	return read(ctx, c, "list_posts", func(ctx context.Context, v ledger.View) ([]storage.Post, error) {
		return v.ListPosts(ctx, start, limit)
	})
}

// GetUserPostCount returns how many posts addr authored.
func (c *Contract) GetUserPostCount(ctx context.Context, addr storage.Address) (uint32, error) {
	return readFor(ctx, c, "get_user_post_count", addr, func(ctx context.Context, v ledger.View, addr storage.Address) (uint32, error) {
		return v.UserPostCount(ctx, addr)
	})
}

// GetPostOfUserByNr returns the nr-th post authored by addr.
func (c *Contract) GetPostOfUserByNr(ctx context.Context, addr storage.Address, nr uint32) (storage.Post, error) {
	return readFor(ctx, c, "get_post_of_user_by_nr", addr, func(ctx context.Context, v ledger.View, addr storage.Address) (storage.Post, error) {
		return v.PostOfUserByNr(ctx, addr, nr)
	})
}

// ListUserPosts returns up to limit of addr's posts from start.
func (c *Contract) ListUserPosts(ctx context.Context, addr storage.Address, start, limit uint32) ([]storage.Post, error) {
	return readFor(ctx, c, "list_user_posts", addr, func(ctx context.Context, v ledger.View, addr storage.Address) ([]storage.Post, error) {
		return v.ListUserPosts(ctx, addr, start, limit)
	})
}

// GetPostLikes returns the like count of post postNr.
func (c *Contract) GetPostLikes(ctx context.Context, postNr uint32) (uint32, error) {
	return read(ctx, c, "get_post_likes", func(ctx context.Context, v ledger.View) (uint32, error) {
		return v.PostLikes(ctx, postNr)
	})
}

// GetLikeStatus reports whether addr likes post postNr.
func (c *Contract) GetLikeStatus(ctx context.Context, addr storage.Address, postNr uint32) (bool, error) {
	return readFor(ctx, c, "get_like_status", addr, func(ctx context.Context, v ledger.View, addr storage.Address) (bool, error) {
		return v.LikeStatus(ctx, postNr, addr)
	})
}

// GetPostCommentsCount returns how many comments post postNr has.
func (c *Contract) GetPostCommentsCount(ctx context.Context, postNr uint32) (uint32, error) {
	return read(ctx, c, "get_post_comments_count", func(ctx context.Context, v ledger.View) (uint32, error) {
		return v.PostCommentsCount(ctx, postNr)
	})
}

// GetPostCommentByNr returns comment nr of post postNr.
func (c *Contract) GetPostCommentByNr(ctx context.Context, postNr, nr uint32) (storage.Comment, error) {
	return read(ctx, c, "get_post_comment_by_nr", func(ctx context.Context, v ledger.View) (storage.Comment, error) {
		return v.PostCommentByNr(ctx, postNr, nr)
	})
}

// ListPostComments returns up to limit comments of post postNr from start.
func (c *Contract) ListPostComments(ctx context.Context, postNr, start, limit uint32) ([]storage.Comment, error) {
	return read(ctx, c, "list_post_comments", func(ctx context.Context, v ledger.View) ([]storage.Comment, error) {
		return v.ListComments(ctx, postNr, start, limit)
	})
}
