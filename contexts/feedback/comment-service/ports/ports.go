package ports

import (
	"context"
	"time"

	"fidbaq/contexts/feedback/comment-service/domain/entities"
	"fidbaq/internal/shared/events"
)

type CreateCommentInput struct {
	Content     string
	AuthorName  string
	AuthorEmail string
}

type Repository interface {
	GetPost(ctx context.Context, postID string) (entities.PostRef, error)
	ListCommentsByPost(ctx context.Context, postID string) ([]entities.Comment, error)
	GetComment(ctx context.Context, commentID string) (entities.Comment, error)
	CreateComment(ctx context.Context, comment entities.Comment) error
	// UpdateCommentContent and DeleteComment apply only when authorID wrote
	// the comment. A miss on an existing row returns ErrForbidden and leaves
	// the row unchanged.
	UpdateCommentContent(ctx context.Context, commentID string, authorID string, content string, updatedAt time.Time) error
	DeleteComment(ctx context.Context, commentID string, authorID string) error
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
