package queries

import (
	"context"
	"strings"

	"fidbaq/contexts/feedback/voting-engine/domain/entities"
	domainerrors "fidbaq/contexts/feedback/voting-engine/domain/errors"
	"fidbaq/contexts/feedback/voting-engine/ports"
)

type PostVotes struct {
	PostID  string
	BoardID string
	Upvotes int
}

type VoteQueries struct {
	Votes ports.VoteRepository
}

// GetUserVote returns the caller's current vote. Anonymous callers never hold
// one, so they get an empty result instead of an error.
func (q VoteQueries) GetUserVote(ctx context.Context, postID string, userID string) (entities.Vote, bool, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return entities.Vote{}, false, domainerrors.ErrInvalidVoteInput
	}
	if strings.TrimSpace(userID) == "" {
		return entities.Vote{}, false, nil
	}
	return q.Votes.GetVoteByIdentity(ctx, postID, strings.TrimSpace(userID))
}

// PostVotes counts upvote rows directly rather than trusting the cached
// counter on the post.
func (q VoteQueries) PostVotes(ctx context.Context, postID string) (PostVotes, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return PostVotes{}, domainerrors.ErrInvalidVoteInput
	}
	post, err := q.Votes.GetPost(ctx, postID)
	if err != nil {
		return PostVotes{}, err
	}
	count, err := q.Votes.CountUpvotes(ctx, postID)
	if err != nil {
		return PostVotes{}, err
	}
	return PostVotes{PostID: post.PostID, BoardID: post.BoardID, Upvotes: count}, nil
}
