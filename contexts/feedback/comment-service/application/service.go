package application

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"fidbaq/contexts/feedback/comment-service/domain/entities"
	domainerrors "fidbaq/contexts/feedback/comment-service/domain/errors"
	"fidbaq/contexts/feedback/comment-service/ports"
	"fidbaq/internal/shared/events"
)

type Service struct {
	Repo      ports.Repository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// ListComments returns a post's thread oldest first. Posts on a private
// board read as missing to anyone but the board owner.
func (s Service) ListComments(ctx context.Context, postID string, viewerID string) ([]entities.Comment, error) {
	post, err := s.visiblePost(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListCommentsByPost(ctx, post.PostID)
}

func (s Service) CreateComment(
	ctx context.Context,
	postID string,
	author entities.Author,
	input ports.CreateCommentInput,
) (entities.Comment, error) {
	content, ok := entities.NormalizeContent(input.Content)
	if !ok {
		return entities.Comment{}, domainerrors.ErrInvalidCommentInput
	}
	post, err := s.visiblePost(ctx, postID, author.UserID)
	if err != nil {
		return entities.Comment{}, err
	}

	stored := entities.Author{
		UserID: strings.TrimSpace(author.UserID),
		Email:  strings.TrimSpace(author.Email),
		Name:   strings.TrimSpace(author.Name),
	}
	if stored.Anonymous() {
		name := strings.TrimSpace(input.AuthorName)
		email := strings.TrimSpace(input.AuthorEmail)
		if length := utf8.RuneCountInString(name); length < 1 || length > entities.MaxAuthorNameLength {
			return entities.Comment{}, domainerrors.ErrInvalidCommentInput
		}
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return entities.Comment{}, domainerrors.ErrInvalidCommentInput
			}
		}
		stored = entities.Author{Name: name, Email: email}
	}

	commentID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Comment{}, err
	}
	now := s.now()
	comment := entities.Comment{
		CommentID: commentID,
		PostID:    post.PostID,
		Content:   content,
		Author:    stored,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.CreateComment(ctx, comment); err != nil {
		return entities.Comment{}, err
	}

	ResolveLogger(s.Logger).Info("comment created",
		"event", "comment_created",
		"module", "feedback/comment-service",
		"layer", "application",
		"comment_id", comment.CommentID,
		"post_id", comment.PostID,
		"anonymous", stored.Anonymous(),
	)
	s.publish(ctx, events.TopicCommentCreated, comment, post.BoardID, "Comment posted!")
	return comment, nil
}

func (s Service) UpdateComment(ctx context.Context, commentID string, actorID string, rawContent string) (entities.Comment, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return entities.Comment{}, domainerrors.ErrUnauthenticated
	}
	content, ok := entities.NormalizeContent(rawContent)
	if !ok {
		return entities.Comment{}, domainerrors.ErrInvalidCommentInput
	}
	commentID = strings.TrimSpace(commentID)
	now := s.now()
	if err := s.Repo.UpdateCommentContent(ctx, commentID, actorID, content, now); err != nil {
		s.logRejected("comment_update_rejected", commentID, actorID, err)
		return entities.Comment{}, err
	}
	comment, err := s.Repo.GetComment(ctx, commentID)
	if err != nil {
		return entities.Comment{}, err
	}
	s.publish(ctx, events.TopicCommentUpdated, comment, s.boardOf(ctx, comment.PostID), "Comment updated!")
	return comment, nil
}

// DeleteComment removes the comment in a single statement scoped to its
// author.
func (s Service) DeleteComment(ctx context.Context, commentID string, actorID string) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return domainerrors.ErrUnauthenticated
	}
	commentID = strings.TrimSpace(commentID)
	if commentID == "" {
		return domainerrors.ErrInvalidCommentInput
	}
	comment, err := s.Repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteComment(ctx, commentID, actorID); err != nil {
		s.logRejected("comment_delete_rejected", commentID, actorID, err)
		return err
	}
	ResolveLogger(s.Logger).Info("comment deleted",
		"event", "comment_deleted",
		"module", "feedback/comment-service",
		"layer", "application",
		"comment_id", commentID,
		"post_id", comment.PostID,
	)
	s.publish(ctx, events.TopicCommentDeleted, comment, s.boardOf(ctx, comment.PostID), "Comment deleted!")
	return nil
}

func (s Service) visiblePost(ctx context.Context, postID string, viewerID string) (entities.PostRef, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return entities.PostRef{}, domainerrors.ErrInvalidCommentInput
	}
	post, err := s.Repo.GetPost(ctx, postID)
	if err != nil {
		return entities.PostRef{}, err
	}
	if !post.VisibleTo(viewerID) {
		return entities.PostRef{}, domainerrors.ErrPostNotFound
	}
	return post, nil
}

// boardOf resolves the board for notification routing only; a failure
// leaves the envelope unrouted.
func (s Service) boardOf(ctx context.Context, postID string) string {
	post, err := s.Repo.GetPost(ctx, postID)
	if err != nil {
		return ""
	}
	return post.BoardID
}

func (s Service) logRejected(event string, commentID string, actorID string, err error) {
	ResolveLogger(s.Logger).Warn("comment change rejected",
		"event", event,
		"module", "feedback/comment-service",
		"layer", "application",
		"comment_id", commentID,
		"actor_id", actorID,
		"error", err.Error(),
	)
}

func (s Service) publish(ctx context.Context, topic string, comment entities.Comment, boardID string, message string) {
	if s.Publisher == nil {
		return
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		eventID = comment.CommentID + ":" + topic
	}
	envelope := events.Envelope{
		EventID:       eventID,
		EventType:     topic,
		SourceService: "comment-service",
		OccurredAtUTC: s.now(),
		EntityType:    "comment",
		EntityID:      comment.CommentID,
		BoardID:       boardID,
		Level:         events.LevelSuccess,
		Message:       message,
		Payload: map[string]any{
			"post_id": comment.PostID,
		},
	}
	if err := s.Publisher.Publish(ctx, topic, envelope); err != nil {
		ResolveLogger(s.Logger).Warn("comment notification publish failed",
			"event", "comment_publish_failed",
			"module", "feedback/comment-service",
			"layer", "application",
			"comment_id", comment.CommentID,
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
