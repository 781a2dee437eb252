package ports

import (
	"context"
	"time"

	"fidbaq/contexts/feedback/voting-engine/domain/entities"
	"fidbaq/internal/shared/events"
)

// VoteTx is the set of writes allowed while a post row is locked.
type VoteTx interface {
	GetVoteByIdentity(ctx context.Context, postID string, userID string) (entities.Vote, bool, error)
	CreateVote(ctx context.Context, vote entities.Vote) error
	UpdateVoteType(ctx context.Context, voteID string, voteType entities.VoteType, updatedAt time.Time) error
	DeleteVote(ctx context.Context, voteID string) error
	CountUpvotes(ctx context.Context, postID string) (int, error)
	SetPostVoteCount(ctx context.Context, postID string, count int) error
}

type VoteRepository interface {
	// WithinPostLock runs fn in one transaction holding an exclusive lock on
	// the post row. A non-nil error from fn discards every write made through
	// the VoteTx. Returns ErrPostNotFound when the post does not exist.
	WithinPostLock(ctx context.Context, postID string, fn func(post entities.PostRef, tx VoteTx) error) error
	GetPost(ctx context.Context, postID string) (entities.PostRef, error)
	GetVoteByIdentity(ctx context.Context, postID string, userID string) (entities.Vote, bool, error)
	CountUpvotes(ctx context.Context, postID string) (int, error)
	ListPostIDs(ctx context.Context, afterID string, limit int) ([]string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
