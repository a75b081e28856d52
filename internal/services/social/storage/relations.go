package storage

import (
	"github.com/louisbranch/socialledger/internal/platform/kv"
	"github.com/louisbranch/socialledger/internal/services/social/relation"
)

// Global is the owner of ledger-wide sequences.
type Global struct{}

var (
	// Followers lists, per followed user, every follow call's follower.
	Followers = relation.Sequence[Address, Address]{
		CountKey: UserFollowersCountKey,
		ItemKey:  UserFollowerByNrKey,
	}

	// FollowedBy flags (followed, follower) pairs.
	FollowedBy = relation.Membership[Address, Address]{
		Key: UserIsFollowedByKey,
	}

	// GlobalPosts numbers every post; the index is the post id.
	GlobalPosts = relation.Sequence[Global, Post]{
		CountKey: func(Global) kv.Key { return PostsCountKey() },
		ItemKey:  func(_ Global, nr uint32) kv.Key { return PostsKey(nr) },
	}

	// UserPosts keeps an author's own copy of each post.
	UserPosts = relation.Sequence[Address, Post]{
		CountKey: PostsOfUserCountKey,
		ItemKey:  PostOfUserByNrKey,
	}

	// PostComments lists comments per post id.
	PostComments = relation.Sequence[uint32, Comment]{
		CountKey: PostCommentsCountKey,
		ItemKey:  PostCommentByNrKey,
	}

	// LikeStatus flags (post, user) likes.
	LikeStatus = relation.Membership[uint32, Address]{
		Key: LikeStatusKey,
	}

	// PostLikes counts current likes per post id.
	PostLikes = relation.Tally[uint32]{
		Key: LikesKey,
	}
)
