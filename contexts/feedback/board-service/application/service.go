package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"fidbaq/contexts/feedback/board-service/domain/entities"
	domainerrors "fidbaq/contexts/feedback/board-service/domain/errors"
	"fidbaq/contexts/feedback/board-service/ports"
	"fidbaq/internal/shared/events"
)

const publicLinkAttempts = 3

type Service struct {
	Repo      ports.Repository
	Plans     ports.PlanGate
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
	// Suffix overrides the random public link suffix.
	Suffix func() (string, error)
}

func (s Service) ListBoards(ctx context.Context, ownerID string) ([]entities.Board, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, domainerrors.ErrUnauthenticated
	}
	return s.Repo.ListBoardsByOwner(ctx, ownerID)
}

func (s Service) CountBoards(ctx context.Context, ownerID string) (int, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return 0, domainerrors.ErrUnauthenticated
	}
	return s.Repo.CountBoardsByOwner(ctx, ownerID)
}

// GetBoard hides private boards from everyone but their owner.
func (s Service) GetBoard(ctx context.Context, boardID string, viewerID string) (entities.Board, error) {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return entities.Board{}, domainerrors.ErrInvalidBoardInput
	}
	board, err := s.Repo.GetBoard(ctx, boardID)
	if err != nil {
		return entities.Board{}, err
	}
	if !board.VisibleTo(viewerID) {
		return entities.Board{}, domainerrors.ErrBoardNotFound
	}
	return board, nil
}

func (s Service) GetBoardByPublicLink(ctx context.Context, publicLink string) (entities.Board, error) {
	publicLink = strings.TrimSpace(publicLink)
	if publicLink == "" {
		return entities.Board{}, domainerrors.ErrInvalidBoardInput
	}
	board, err := s.Repo.GetBoardByPublicLink(ctx, publicLink)
	if err != nil {
		return entities.Board{}, err
	}
	if !board.IsPublic {
		return entities.Board{}, domainerrors.ErrBoardNotFound
	}
	return board, nil
}

func (s Service) CreateBoard(ctx context.Context, ownerID string, input ports.CreateBoardInput) (entities.Board, error) {
	logger := ResolveLogger(s.Logger)
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return entities.Board{}, domainerrors.ErrUnauthenticated
	}
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	theme := entities.ThemeLight
	if strings.TrimSpace(input.Theme) != "" {
		theme = entities.Theme(strings.ToLower(strings.TrimSpace(input.Theme)))
	}
	if !validName(name) || utf8.RuneCountInString(description) > entities.MaxDescriptionLength || !theme.Valid() {
		return entities.Board{}, domainerrors.ErrInvalidBoardInput
	}

	count, err := s.Repo.CountBoardsByOwner(ctx, ownerID)
	if err != nil {
		return entities.Board{}, err
	}
	allowed, err := s.Plans.CanCreateBoard(ctx, ownerID, count)
	if err != nil {
		return entities.Board{}, err
	}
	if !allowed {
		logger.Info("board creation blocked by plan limit",
			"event", "board_create_plan_limited",
			"module", "feedback/board-service",
			"layer", "application",
			"owner_id", ownerID,
			"board_count", count,
		)
		return entities.Board{}, domainerrors.ErrPlanLimitReached
	}

	boardID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Board{}, err
	}
	now := s.now()
	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}
	board := entities.Board{
		BoardID:     boardID,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		IsPublic:    isPublic,
		Theme:       theme,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 1; ; attempt++ {
		suffix, err := s.suffix()
		if err != nil {
			return entities.Board{}, err
		}
		board.PublicLink = entities.PublicLink(name, suffix)
		err = s.Repo.CreateBoard(ctx, board)
		if err == nil {
			break
		}
		if !errors.Is(err, domainerrors.ErrPublicLinkConflict) || attempt >= publicLinkAttempts {
			return entities.Board{}, err
		}
		logger.Warn("public link collision, regenerating",
			"event", "board_public_link_collision",
			"module", "feedback/board-service",
			"layer", "application",
			"owner_id", ownerID,
			"attempt", attempt,
		)
	}

	logger.Info("board created",
		"event", "board_created",
		"module", "feedback/board-service",
		"layer", "application",
		"board_id", board.BoardID,
		"owner_id", ownerID,
		"public_link", board.PublicLink,
	)
	s.publish(ctx, events.TopicBoardCreated, board, events.LevelSuccess, "Board created successfully")
	return board, nil
}

func (s Service) UpdateBoard(
	ctx context.Context,
	boardID string,
	ownerID string,
	input ports.UpdateBoardInput,
) (entities.Board, error) {
	board, err := s.ownedBoard(ctx, boardID, ownerID)
	if err != nil {
		return entities.Board{}, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if !validName(name) {
			return entities.Board{}, domainerrors.ErrInvalidBoardInput
		}
		board.Name = name
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if utf8.RuneCountInString(description) > entities.MaxDescriptionLength {
			return entities.Board{}, domainerrors.ErrInvalidBoardInput
		}
		board.Description = description
	}
	if input.Theme != nil {
		theme := entities.Theme(strings.ToLower(strings.TrimSpace(*input.Theme)))
		if !theme.Valid() {
			return entities.Board{}, domainerrors.ErrInvalidBoardInput
		}
		board.Theme = theme
	}
	if input.IsPublic != nil {
		board.IsPublic = *input.IsPublic
	}
	board.UpdatedAt = s.now()

	if err := s.Repo.UpdateBoard(ctx, board); err != nil {
		return entities.Board{}, err
	}
	s.publish(ctx, events.TopicBoardUpdated, board, events.LevelSuccess, "Board updated")
	return board, nil
}

func (s Service) DeleteBoard(ctx context.Context, boardID string, ownerID string) error {
	board, err := s.ownedBoard(ctx, boardID, ownerID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteBoard(ctx, board.BoardID, board.OwnerID); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("board deleted",
		"event", "board_deleted",
		"module", "feedback/board-service",
		"layer", "application",
		"board_id", board.BoardID,
		"owner_id", board.OwnerID,
	)
	s.publish(ctx, events.TopicBoardDeleted, board, events.LevelSuccess, "Board deleted successfully")
	return nil
}

func (s Service) ownedBoard(ctx context.Context, boardID string, ownerID string) (entities.Board, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return entities.Board{}, domainerrors.ErrUnauthenticated
	}
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return entities.Board{}, domainerrors.ErrInvalidBoardInput
	}
	board, err := s.Repo.GetBoard(ctx, boardID)
	if err != nil {
		return entities.Board{}, err
	}
	if board.OwnerID != ownerID {
		if !board.IsPublic {
			return entities.Board{}, domainerrors.ErrBoardNotFound
		}
		return entities.Board{}, domainerrors.ErrForbidden
	}
	return board, nil
}

func (s Service) publish(ctx context.Context, topic string, board entities.Board, level events.Level, message string) {
	if s.Publisher == nil {
		return
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		eventID = board.BoardID + ":" + topic
	}
	envelope := events.Envelope{
		EventID:       eventID,
		EventType:     topic,
		SourceService: "board-service",
		OccurredAtUTC: s.now(),
		EntityType:    "board",
		EntityID:      board.BoardID,
		BoardID:       board.BoardID,
		Level:         level,
		Message:       message,
		Payload: map[string]any{
			"name":        board.Name,
			"public_link": board.PublicLink,
			"owner_id":    board.OwnerID,
		},
	}
	if err := s.Publisher.Publish(ctx, topic, envelope); err != nil {
		ResolveLogger(s.Logger).Warn("board notification publish failed",
			"event", "board_publish_failed",
			"module", "feedback/board-service",
			"layer", "application",
			"board_id", board.BoardID,
			"topic", topic,
			"error", err.Error(),
		)
	}
}

func (s Service) suffix() (string, error) {
	if s.Suffix != nil {
		return s.Suffix()
	}
	return entities.RandomSuffix()
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func validName(name string) bool {
	length := utf8.RuneCountInString(name)
	return length >= 1 && length <= entities.MaxNameLength
}

// ResolveLogger guarantees a non-nil logger.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
