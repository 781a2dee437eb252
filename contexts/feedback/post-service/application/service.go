package application

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"fidbaq/contexts/feedback/post-service/domain/entities"
	domainerrors "fidbaq/contexts/feedback/post-service/domain/errors"
	"fidbaq/contexts/feedback/post-service/ports"
	"fidbaq/internal/shared/events"
)

type Service struct {
	Repo      ports.Repository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (s Service) ListPosts(ctx context.Context, boardID string, viewerID string) ([]entities.Post, error) {
	board, err := s.visibleBoard(ctx, boardID, viewerID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListPostsByBoard(ctx, board.BoardID)
}

// CreatePost records feedback from author. A signed-in author is stored by
// reference; an anonymous one must supply a display name.
func (s Service) CreatePost(
	ctx context.Context,
	boardID string,
	author entities.Author,
	input ports.CreatePostInput,
) (entities.Post, error) {
	logger := ResolveLogger(s.Logger)
	board, err := s.visibleBoard(ctx, boardID, author.UserID)
	if err != nil {
		return entities.Post{}, err
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if length := utf8.RuneCountInString(title); length < 1 || length > entities.MaxTitleLength {
		return entities.Post{}, domainerrors.ErrInvalidPostInput
	}
	if utf8.RuneCountInString(description) > entities.MaxDescriptionLength {
		return entities.Post{}, domainerrors.ErrInvalidPostInput
	}

	stored := entities.Author{UserID: strings.TrimSpace(author.UserID)}
	if stored.Anonymous() {
		name := strings.TrimSpace(input.AuthorName)
		email := strings.TrimSpace(input.AuthorEmail)
		if length := utf8.RuneCountInString(name); length < 1 || length > entities.MaxAuthorNameLength {
			return entities.Post{}, domainerrors.ErrInvalidPostInput
		}
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return entities.Post{}, domainerrors.ErrInvalidPostInput
			}
		}
		stored.Name = name
		stored.Email = email
	}

	postID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Post{}, err
	}
	post := entities.Post{
		PostID:      postID,
		BoardID:     board.BoardID,
		Title:       title,
		Description: description,
		Status:      entities.StatusPending,
		Author:      stored,
		CreatedAt:   s.now(),
	}
	if err := s.Repo.CreatePost(ctx, post); err != nil {
		return entities.Post{}, err
	}

	logger.Info("post created",
		"event", "post_created",
		"module", "feedback/post-service",
		"layer", "application",
		"post_id", post.PostID,
		"board_id", post.BoardID,
		"anonymous", stored.Anonymous(),
	)
	s.publish(ctx, events.TopicPostCreated, post, "Feedback submitted successfully")
	return post, nil
}

func (s Service) UpdatePostStatus(ctx context.Context, postID string, actorID string, rawStatus string) (entities.Post, error) {
	status, ok := entities.ParseStatus(rawStatus)
	if !ok {
		return entities.Post{}, domainerrors.ErrInvalidPostInput
	}
	post, err := s.ownedPost(ctx, postID, actorID)
	if err != nil {
		return entities.Post{}, err
	}
	if err := s.Repo.UpdatePostStatus(ctx, post.PostID, status); err != nil {
		return entities.Post{}, err
	}
	previous := post.Status
	post.Status = status

	ResolveLogger(s.Logger).Info("post status changed",
		"event", "post_status_changed",
		"module", "feedback/post-service",
		"layer", "application",
		"post_id", post.PostID,
		"board_id", post.BoardID,
		"from", string(previous),
		"to", string(status),
	)
	s.publish(ctx, events.TopicPostStatusChanged, post, "Status updated")
	return post, nil
}

func (s Service) DeletePost(ctx context.Context, postID string, actorID string) error {
	post, err := s.ownedPost(ctx, postID, actorID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeletePost(ctx, post.PostID); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("post deleted",
		"event", "post_deleted",
		"module", "feedback/post-service",
		"layer", "application",
		"post_id", post.PostID,
		"board_id", post.BoardID,
	)
	s.publish(ctx, events.TopicPostDeleted, post, "Post deleted")
	return nil
}

func (s Service) visibleBoard(ctx context.Context, boardID string, viewerID string) (entities.BoardRef, error) {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return entities.BoardRef{}, domainerrors.ErrInvalidPostInput
	}
	board, err := s.Repo.GetBoard(ctx, boardID)
	if err != nil {
		return entities.BoardRef{}, err
	}
	if !board.VisibleTo(viewerID) {
		return entities.BoardRef{}, domainerrors.ErrBoardNotFound
	}
	return board, nil
}

// ownedPost loads a post the actor may moderate, i.e. one on a board they own.
func (s Service) ownedPost(ctx context.Context, postID string, actorID string) (entities.Post, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return entities.Post{}, domainerrors.ErrUnauthenticated
	}
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return entities.Post{}, domainerrors.ErrInvalidPostInput
	}
	post, err := s.Repo.GetPost(ctx, postID)
	if err != nil {
		return entities.Post{}, err
	}
	board, err := s.Repo.GetBoard(ctx, post.BoardID)
	if err != nil {
		return entities.Post{}, err
	}
	if board.OwnerID != actorID {
		if !board.VisibleTo(actorID) {
			return entities.Post{}, domainerrors.ErrPostNotFound
		}
		return entities.Post{}, domainerrors.ErrForbidden
	}
	return post, nil
}

func (s Service) publish(ctx context.Context, topic string, post entities.Post, message string) {
	if s.Publisher == nil {
		return
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		eventID = post.PostID + ":" + topic
	}
	envelope := events.Envelope{
		EventID:       eventID,
		EventType:     topic,
		SourceService: "post-service",
		OccurredAtUTC: s.now(),
		EntityType:    "post",
		EntityID:      post.PostID,
		BoardID:       post.BoardID,
		Level:         events.LevelSuccess,
		Message:       message,
		Payload: map[string]any{
			"title":  post.Title,
			"status": string(post.Status),
		},
	}
	if err := s.Publisher.Publish(ctx, topic, envelope); err != nil {
		ResolveLogger(s.Logger).Warn("post notification publish failed",
			"event", "post_publish_failed",
			"module", "feedback/post-service",
			"layer", "application",
			"post_id", post.PostID,
			"topic", topic,
			"error", err.Error(),
		)
	}
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

// ResolveLogger guarantees a non-nil logger.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
