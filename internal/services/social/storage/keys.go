package storage

import "github.com/louisbranch/socialledger/internal/platform/kv"

// Kind tags the first byte of every ledger key. Values are persisted and must
// never be renumbered.
type Kind uint8

const (
	KindInitialized Kind = iota + 1
	KindUsers
	KindUserFollowersCount
	KindUserFollowerByNr
	KindUserIsFollowedBy
	KindPostsCount
	KindPosts
	KindPostsOfUserCount
	KindPostOfUserByNr
	KindLikes
	KindLikeStatus
	KindPostCommentsCount
	KindPostCommentByNr
)

func key(kind Kind) kv.KeyBuilder {
	return kv.NewKey(uint8(kind))
}

// InitializedKey marks a ledger as initialized.
func InitializedKey() kv.Key {
	return key(KindInitialized).Key()
}

// UsersKey holds the UserInfo of addr.
func UsersKey(addr Address) kv.Key {
	return key(KindUsers).Str(string(addr)).Key()
}

// UserFollowersCountKey holds how many follower slots addr has.
func UserFollowersCountKey(addr Address) kv.Key {
	return key(KindUserFollowersCount).Str(string(addr)).Key()
}

// UserFollowerByNrKey holds the follower stored in slot nr of addr.
func UserFollowerByNrKey(addr Address, nr uint32) kv.Key {
	return key(KindUserFollowerByNr).Str(string(addr)).Uint32(nr).Key()
}

// UserIsFollowedByKey holds whether follower follows addr.
func UserIsFollowedByKey(addr, follower Address) kv.Key {
	return key(KindUserIsFollowedBy).Str(string(addr)).Str(string(follower)).Key()
}

// PostsCountKey holds the global post count.
func PostsCountKey() kv.Key {
	return key(KindPostsCount).Key()
}

// PostsKey holds global post nr.
func PostsKey(nr uint32) kv.Key {
	return key(KindPosts).Uint32(nr).Key()
}

// PostsOfUserCountKey holds how many posts addr authored.
func PostsOfUserCountKey(addr Address) kv.Key {
	return key(KindPostsOfUserCount).Str(string(addr)).Key()
}

// PostOfUserByNrKey holds the nr-th post authored by addr.
func PostOfUserByNrKey(addr Address, nr uint32) kv.Key {
	return key(KindPostOfUserByNr).Str(string(addr)).Uint32(nr).Key()
}

// LikesKey holds the like count of post.
func LikesKey(post uint32) kv.Key {
	return key(KindLikes).Uint32(post).Key()
}

// LikeStatusKey holds whether addr likes post.
func LikeStatusKey(post uint32, addr Address) kv.Key {
	return key(KindLikeStatus).Uint32(post).Str(string(addr)).Key()
}

// PostCommentsCountKey holds how many comments post has.
func PostCommentsCountKey(post uint32) kv.Key {
	return key(KindPostCommentsCount).Uint32(post).Key()
}

// PostCommentByNrKey holds comment nr of post.
func PostCommentByNrKey(post, nr uint32) kv.Key {
	return key(KindPostCommentByNr).Uint32(post).Uint32(nr).Key()
}
