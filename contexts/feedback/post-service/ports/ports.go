package ports

import (
	"context"
	"time"

	"fidbaq/contexts/feedback/post-service/domain/entities"
	"fidbaq/internal/shared/events"
)

type CreatePostInput struct {
	Title       string
	Description string
	AuthorName  string
	AuthorEmail string
}

type Repository interface {
	GetBoard(ctx context.Context, boardID string) (entities.BoardRef, error)
	ListPostsByBoard(ctx context.Context, boardID string) ([]entities.Post, error)
	GetPost(ctx context.Context, postID string) (entities.Post, error)
	CreatePost(ctx context.Context, post entities.Post) error
	UpdatePostStatus(ctx context.Context, postID string, status entities.Status) error
	DeletePost(ctx context.Context, postID string) error
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
