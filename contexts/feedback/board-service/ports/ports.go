package ports

import (
	"context"
	"time"

	"fidbaq/contexts/feedback/board-service/domain/entities"
	"fidbaq/internal/shared/events"
)

type CreateBoardInput struct {
	Name        string
	Description string
	Theme       string
	IsPublic    *bool
}

// UpdateBoardInput carries only the fields being changed.
type UpdateBoardInput struct {
	Name        *string
	Description *string
	Theme       *string
	IsPublic    *bool
}

type Repository interface {
	ListBoardsByOwner(ctx context.Context, ownerID string) ([]entities.Board, error)
	GetBoard(ctx context.Context, boardID string) (entities.Board, error)
	GetBoardByPublicLink(ctx context.Context, publicLink string) (entities.Board, error)
	CountBoardsByOwner(ctx context.Context, ownerID string) (int, error)
	// CreateBoard returns ErrPublicLinkConflict when the link is taken.
	CreateBoard(ctx context.Context, board entities.Board) error
	UpdateBoard(ctx context.Context, board entities.Board) error
	DeleteBoard(ctx context.Context, boardID string, ownerID string) error
}

// PlanGate decides whether an owner holding boardCount boards may create
// another one.
type PlanGate interface {
	CanCreateBoard(ctx context.Context, ownerID string, boardCount int) (bool, error)
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
