package socialledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	apperrors "github.com/louisbranch/socialledger/internal/platform/errors"
	"github.com/louisbranch/socialledger/internal/services/social/app"
	"github.com/louisbranch/socialledger/internal/services/social/storage"
)

const defaultListLimit = 20

type invocation struct {
	caller string
	args   []string
}

func (inv invocation) actor() storage.Address {
	return storage.Address(inv.caller)
}

func (inv invocation) addr(i int) storage.Address {
	return storage.Address(inv.args[i])
}

func (inv invocation) uint32At(i int, name string) (uint32, error) {
	value, err := strconv.ParseUint(inv.args[i], 10, 32)
	if err != nil {
		return 0, apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf("%s must be a non-negative 32-bit integer, got %q", name, inv.args[i]))
	}
	return uint32(value), nil
}

func (inv invocation) optional(i int, name string, fallback uint32) (uint32, error) {
	if i >= len(inv.args) {
		return fallback, nil
	}
	return inv.uint32At(i, name)
}

// page reads optional [start] [limit] arguments beginning at i.
func (inv invocation) page(i int) (uint32, uint32, error) {
	start, err := inv.optional(i, "start", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err := inv.optional(i+1, "limit", defaultListLimit)
	if err != nil {
		return 0, 0, err
	}
	return start, limit, nil
}

type command struct {
	usage   string
	minArgs int
	maxArgs int
	// acting commands need -as and act on behalf of it.
	acting bool
	run    func(ctx context.Context, c *app.Contract, inv invocation) (any, error)
}

func (c command) checkArgs(args []string) error {
	if len(args) < c.minArgs || len(args) > c.maxArgs {
		return apperrors.New(apperrors.CodeInvalidArgument, "usage: "+c.usage)
	}
	return nil
}

var commands = map[string]command{
	"init": {
		usage: "init",
		run: func(ctx context.Context, c *app.Contract, _ invocation) (any, error) {
			if err := c.Initialize(ctx); err != nil {
				return nil, err
			}
			return c.Status(ctx)
		},
	},
	"status": {
		usage: "status",
		run: func(ctx context.Context, c *app.Contract, _ invocation) (any, error) {
			return c.Status(ctx)
		},
	},
	"set-profile": {
		usage:   "set-profile <name> <bio> <avatar-uri>",
		minArgs: 3,
		maxArgs: 3,
		acting:  true,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			return c.UpdateUserInfo(ctx, inv.actor(), inv.args[0], inv.args[1], inv.args[2])
		},
	},
	"profile": {
		usage:   "profile <address>",
		minArgs: 1,
		maxArgs: 1,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			return c.GetUserInfo(ctx, inv.addr(0))
		},
	},
	"follow": {
		usage:   "follow <address>",
		minArgs: 1,
		maxArgs: 1,
		acting:  true,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			count, err := c.FollowUser(ctx, inv.actor(), inv.addr(0))
			if err != nil {
				return nil, err
			}
			return map[string]uint32{"followers": count}, nil
		},
	},
	"followers": {
		usage:   "followers <address> [start] [limit]",
		minArgs: 1,
		maxArgs: 3,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			start, limit, err := inv.page(1)
			if err != nil {
				return nil, err
			}
			count, err := c.GetUserFollowersCount(ctx, inv.addr(0))
			if err != nil {
				return nil, err
			}
			followers, err := c.ListUserFollowers(ctx, inv.addr(0), start, limit)
			if err != nil {
				return nil, err
			}
			return listResult[storage.Address]{Count: count, Start: start, Items: followers}, nil
		},
	},
	"follower": {
		usage:   "follower <address> <nr>",
		minArgs: 2,
		maxArgs: 2,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			nr, err := inv.uint32At(1, "nr")
			if err != nil {
				return nil, err
			}
			follower, err := c.GetUserFollowerByNr(ctx, inv.addr(0), nr)
			if err != nil {
				return nil, err
			}
			return map[string]storage.Address{"follower": follower}, nil
		},
	},
	"follow-status": {
		usage:   "follow-status <address> <follower>",
		minArgs: 2,
		maxArgs: 2,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			following, err := c.GetFollowStatus(ctx, inv.addr(0), inv.addr(1))
			if err != nil {
				return nil, err
			}
			return map[string]bool{"following": following}, nil
		},
	},
	"post": {
		usage:   "post <text> [content-uri]",
		minArgs: 1,
		maxArgs: 2,
		acting:  true,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			contentURI := ""
			if len(inv.args) > 1 {
				contentURI = inv.args[1]
			}
			return c.AddPost(ctx, inv.actor(), inv.args[0], contentURI)
		},
	},
	"posts": {
		usage:   "posts [start] [limit]",
		maxArgs: 2,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			start, limit, err := inv.page(0)
			if err != nil {
				return nil, err
			}
			count, err := c.GetPostsCount(ctx)
			if err != nil {
				return nil, err
			}
			posts, err := c.ListPosts(ctx, start, limit)
			if err != nil {
				return nil, err
			}
			return listResult[storage.Post]{Count: count, Start: start, Items: posts}, nil
		},
	},
	"post-get": {
		usage:   "post-get <nr>",
		minArgs: 1,
		maxArgs: 1,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			nr, err := inv.uint32At(0, "nr")
			if err != nil {
				return nil, err
			}
			return c.GetPost(ctx, nr)
		},
	},
	"user-posts": {
		usage:   "user-posts <address> [start] [limit]",
		minArgs: 1,
		maxArgs: 3,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			start, limit, err := inv.page(1)
			if err != nil {
				return nil, err
			}
			count, err := c.GetUserPostCount(ctx, inv.addr(0))
			if err != nil {
				return nil, err
			}
			posts, err := c.ListUserPosts(ctx, inv.addr(0), start, limit)
			if err != nil {
				return nil, err
			}
			return listResult[storage.Post]{Count: count, Start: start, Items: posts}, nil
		},
	},
	"like": {
		usage:   "like <post>",
		minArgs: 1,
		maxArgs: 1,
		acting:  true,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			postNr, err := inv.uint32At(0, "post")
			if err != nil {
				return nil, err
			}
			likes, err := c.SetOrRemoveLike(ctx, inv.actor(), postNr)
			if err != nil {
				return nil, err
			}
			return map[string]uint32{"likes": likes}, nil
		},
	},
	"likes": {
		usage:   "likes <post>",
		minArgs: 1,
		maxArgs: 1,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			postNr, err := inv.uint32At(0, "post")
			if err != nil {
				return nil, err
			}
			likes, err := c.GetPostLikes(ctx, postNr)
			if err != nil {
				return nil, err
			}
			return map[string]uint32{"likes": likes}, nil
		},
	},
	"like-status": {
		usage:   "like-status <post> <address>",
		minArgs: 2,
		maxArgs: 2,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			postNr, err := inv.uint32At(0, "post")
			if err != nil {
				return nil, err
			}
			liked, err := c.GetLikeStatus(ctx, inv.addr(1), postNr)
			if err != nil {
				return nil, err
			}
			return map[string]bool{"liked": liked}, nil
		},
	},
	"comment": {
		usage:   "comment <post> <text>",
		minArgs: 2,
		maxArgs: 2,
		acting:  true,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			postNr, err := inv.uint32At(0, "post")
			if err != nil {
				return nil, err
			}
			return c.AddComment(ctx, inv.actor(), postNr, inv.args[1])
		},
	},
	"comments": {
		usage:   "comments <post> [start] [limit]",
		minArgs: 1,
		maxArgs: 3,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			postNr, err := inv.uint32At(0, "post")
			if err != nil {
				return nil, err
			}
			start, limit, err := inv.page(1)
			if err != nil {
				return nil, err
			}
			count, err := c.GetPostCommentsCount(ctx, postNr)
			if err != nil {
				return nil, err
			}
			comments, err := c.ListPostComments(ctx, postNr, start, limit)
			if err != nil {
				return nil, err
			}
			return listResult[storage.Comment]{Count: count, Start: start, Items: comments}, nil
		},
	},
	"comment-get": {
		usage:   "comment-get <post> <nr>",
		minArgs: 2,
		maxArgs: 2,
		run: func(ctx context.Context, c *app.Contract, inv invocation) (any, error) {
			postNr, err := inv.uint32At(0, "post")
			if err != nil {
				return nil, err
			}
			nr, err := inv.uint32At(1, "nr")
			if err != nil {
				return nil, err
			}
			return c.GetPostCommentByNr(ctx, postNr, nr)
		},
	},
}

type listResult[T any] struct {
	Count uint32 `json:"count"`
	Start uint32 `json:"start"`
	Items []T    `json:"items"`
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
