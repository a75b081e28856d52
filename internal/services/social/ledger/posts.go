package ledger

import (
	"context"
	"fmt"

	"github.com/louisbranch/socialledger/internal/services/social/relation"
	"github.com/louisbranch/socialledger/internal/services/social/storage"
)

// AddPost appends a post to the global sequence, whose index becomes its id,
// and stores the same post in the author's own sequence.
func (l Ledger) AddPost(ctx context.Context, author storage.Address, text, contentURI string) (storage.Post, error) {
	createTime := l.timestamp()
	_, post, err := storage.GlobalPosts.AppendFunc(ctx, l.w, storage.Global{}, func(nr uint32) storage.Post {
		return storage.Post{
			ID:         nr,
			Author:     author,
			CreateTime: createTime,
			Text:       text,
			ContentURI: contentURI,
		}
	})
	if err != nil {
		return storage.Post{}, fmt.Errorf("append global post: %w", err)
	}
	if _, err := storage.UserPosts.Append(ctx, l.w, author, post); err != nil {
		return storage.Post{}, fmt.Errorf("append user post: %w", err)
	}
	return post, nil
}

// PostsCount returns the number of posts in the ledger.
func (v View) PostsCount(ctx context.Context) (uint32, error) {
	return storage.GlobalPosts.Count(ctx, v.r, storage.Global{})
}

// Post returns post nr.
func (v View) Post(ctx context.Context, nr uint32) (storage.Post, error) {
	return storage.GlobalPosts.Get(ctx, v.r, storage.Global{}, nr)
}

// ListPosts returns up to limit posts starting at post start.
func (v View) ListPosts(ctx context.Context, start, limit uint32) ([]storage.Post, error) {
	return storage.GlobalPosts.List(ctx, v.r, storage.Global{}, start, limit)
}

// UserPostCount returns how many posts addr authored.
func (v View) UserPostCount(ctx context.Context, addr storage.Address) (uint32, error) {
	return storage.UserPosts.Count(ctx, v.r, addr)
}

// PostOfUserByNr returns the nr-th post authored by addr.
func (v View) PostOfUserByNr(ctx context.Context, addr storage.Address, nr uint32) (storage.Post, error) {
	return storage.UserPosts.Get(ctx, v.r, addr, nr)
}

// ListUserPosts returns up to limit of addr's posts starting at start.
func (v View) ListUserPosts(ctx context.Context, addr storage.Address, start, limit uint32) ([]storage.Post, error) {
	return storage.UserPosts.List(ctx, v.r, addr, start, limit)
}

// RequirePost fails with ErrOutOfRange unless post nr exists.
func (v View) RequirePost(ctx context.Context, nr uint32) error {
	count, err := v.PostsCount(ctx)
	if err != nil {
		return err
	}
	return relation.CheckIndex(nr, count)
}

// AddComment appends a comment to post postNr. Any account may comment.
func (l Ledger) AddComment(ctx context.Context, postNr uint32, author storage.Address, text string) (storage.Comment, error) {
	if err := l.RequirePost(ctx, postNr); err != nil {
		return storage.Comment{}, err
	}
	createTime := l.timestamp()
	_, comment, err := storage.PostComments.AppendFunc(ctx, l.w, postNr, func(nr uint32) storage.Comment {
		return storage.Comment{
			ID:         nr,
			Author:     author,
			CreateTime: createTime,
			Text:       text,
		}
	})
	if err != nil {
		return storage.Comment{}, fmt.Errorf("append comment: %w", err)
	}
	return comment, nil
}

// PostCommentsCount returns how many comments post postNr has.
func (v View) PostCommentsCount(ctx context.Context, postNr uint32) (uint32, error) {
	if err := v.RequirePost(ctx, postNr); err != nil {
		return 0, err
	}
	return storage.PostComments.Count(ctx, v.r, postNr)
}

// PostCommentByNr returns comment nr of post postNr.
func (v View) PostCommentByNr(ctx context.Context, postNr, nr uint32) (storage.Comment, error) {
	if err := v.RequirePost(ctx, postNr); err != nil {
		return storage.Comment{}, err
	}
	return storage.PostComments.Get(ctx, v.r, postNr, nr)
}

// ListComments returns up to limit comments of post postNr starting at start.
func (v View) ListComments(ctx context.Context, postNr, start, limit uint32) ([]storage.Comment, error) {
	if err := v.RequirePost(ctx, postNr); err != nil {
		return nil, err
	}
	return storage.PostComments.List(ctx, v.r, postNr, start, limit)
}
