package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fidbaq/contexts/feedback/comment-service/domain/entities"
	domainerrors "fidbaq/contexts/feedback/comment-service/domain/errors"
	"fidbaq/contexts/feedback/comment-service/ports"
	"fidbaq/internal/platform/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetPost(ctx context.Context, postID string) (entities.PostRef, error) {
	var row postRefModel
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("posts.id, posts.board_id, boards.owner_id, boards.is_public").
		Joins("JOIN boards ON boards.id = posts.board_id").
		Where("posts.id = ?", strings.TrimSpace(postID)).
		Take(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.PostRef{}, domainerrors.ErrPostNotFound
		}
		return entities.PostRef{}, r.logError("comment_repo_get_post_failed", err, "post_id", strings.TrimSpace(postID))
	}
	return entities.PostRef{
		PostID:       row.ID,
		BoardID:      row.BoardID,
		BoardOwnerID: row.OwnerID,
		BoardPublic:  row.IsPublic,
	}, nil
}

func (r *Repository) ListCommentsByPost(ctx context.Context, postID string) ([]entities.Comment, error) {
	var rows []commentModel
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", strings.TrimSpace(postID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("comment_repo_list_by_post_failed", err, "post_id", strings.TrimSpace(postID))
	}
	items := make([]entities.Comment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetComment(ctx context.Context, commentID string) (entities.Comment, error) {
	var row commentModel
	err := r.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(commentID)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Comment{}, domainerrors.ErrCommentNotFound
		}
		return entities.Comment{}, r.logError("comment_repo_get_failed", err, "comment_id", strings.TrimSpace(commentID))
	}
	return row.toEntity(), nil
}

func (r *Repository) CreateComment(ctx context.Context, comment entities.Comment) error {
	row := commentModelFromEntity(comment)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if db.IsForeignKeyViolation(err) {
			return domainerrors.ErrPostNotFound
		}
		return r.logError("comment_repo_create_failed", err,
			"comment_id", row.ID,
			"post_id", row.PostID,
		)
	}
	return nil
}

func (r *Repository) UpdateCommentContent(
	ctx context.Context,
	commentID string,
	authorID string,
	content string,
	updatedAt time.Time,
) error {
	result := r.db.WithContext(ctx).
		Model(&commentModel{}).
		Where("id = ? AND author_id = ?", strings.TrimSpace(commentID), strings.TrimSpace(authorID)).
		Updates(map[string]any{
			"content":    content,
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("comment_repo_update_failed", result.Error, "comment_id", strings.TrimSpace(commentID))
	}
	if result.RowsAffected == 0 {
		return r.missReason(ctx, commentID)
	}
	return nil
}

func (r *Repository) DeleteComment(ctx context.Context, commentID string, authorID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", strings.TrimSpace(commentID), strings.TrimSpace(authorID)).
		Delete(&commentModel{})
	if result.Error != nil {
		return r.logError("comment_repo_delete_failed", result.Error, "comment_id", strings.TrimSpace(commentID))
	}
	if result.RowsAffected == 0 {
		return r.missReason(ctx, commentID)
	}
	return nil
}

func (r *Repository) Now() time.Time {
	return time.Now().UTC()
}

func (r *Repository) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// missReason tells a foreign comment apart from a missing one after a
// conditional write touched no rows.
func (r *Repository) missReason(ctx context.Context, commentID string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&commentModel{}).
		Where("id = ?", strings.TrimSpace(commentID)).
		Count(&count).Error; err != nil {
		return r.logError("comment_repo_miss_lookup_failed", err, "comment_id", strings.TrimSpace(commentID))
	}
	if count == 0 {
		return domainerrors.ErrCommentNotFound
	}
	return domainerrors.ErrForbidden
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "feedback/comment-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("comment repository operation failed", fields...)
	return err
}

type commentModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	PostID      string    `gorm:"column:post_id"`
	Content     string    `gorm:"column:content"`
	AuthorID    *string   `gorm:"column:author_id"`
	AuthorName  *string   `gorm:"column:author_name"`
	AuthorEmail *string   `gorm:"column:author_email"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (commentModel) TableName() string {
	return "comments"
}

func commentModelFromEntity(comment entities.Comment) commentModel {
	row := commentModel{
		ID:          strings.TrimSpace(comment.CommentID),
		PostID:      strings.TrimSpace(comment.PostID),
		Content:     comment.Content,
		AuthorID:    optionalString(comment.Author.UserID),
		AuthorName:  optionalString(comment.Author.Name),
		AuthorEmail: optionalString(comment.Author.Email),
		CreatedAt:   comment.CreatedAt.UTC(),
		UpdatedAt:   comment.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m commentModel) toEntity() entities.Comment {
	return entities.Comment{
		CommentID: m.ID,
		PostID:    m.PostID,
		Content:   m.Content,
		Author: entities.Author{
			UserID: strings.TrimSpace(deref(m.AuthorID)),
			Email:  deref(m.AuthorEmail),
			Name:   deref(m.AuthorName),
		},
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// postRefModel is a post joined with the visibility of its board.
type postRefModel struct {
	ID       string `gorm:"column:id"`
	BoardID  string `gorm:"column:board_id"`
	OwnerID  string `gorm:"column:owner_id"`
	IsPublic bool   `gorm:"column:is_public"`
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.Clock = (*Repository)(nil)
var _ ports.IDGenerator = (*Repository)(nil)
