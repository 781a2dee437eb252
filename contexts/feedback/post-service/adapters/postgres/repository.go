package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fidbaq/contexts/feedback/post-service/domain/entities"
	domainerrors "fidbaq/contexts/feedback/post-service/domain/errors"
	"fidbaq/contexts/feedback/post-service/ports"
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

func (r *Repository) GetBoard(ctx context.Context, boardID string) (entities.BoardRef, error) {
	var row boardRefModel
	err := r.db.WithContext(ctx).
		Select("id", "owner_id", "is_public").
		Where("id = ?", strings.TrimSpace(boardID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.BoardRef{}, domainerrors.ErrBoardNotFound
		}
		return entities.BoardRef{}, r.logError("post_repo_get_board_failed", err, "board_id", strings.TrimSpace(boardID))
	}
	return entities.BoardRef{BoardID: row.ID, OwnerID: row.OwnerID, IsPublic: row.IsPublic}, nil
}

func (r *Repository) ListPostsByBoard(ctx context.Context, boardID string) ([]entities.Post, error) {
	var rows []postModel
	if err := r.db.WithContext(ctx).
		Where("board_id = ?", strings.TrimSpace(boardID)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("post_repo_list_by_board_failed", err, "board_id", strings.TrimSpace(boardID))
	}
	items := make([]entities.Post, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetPost(ctx context.Context, postID string) (entities.Post, error) {
	var row postModel
	err := r.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(postID)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Post{}, domainerrors.ErrPostNotFound
		}
		return entities.Post{}, r.logError("post_repo_get_post_failed", err, "post_id", strings.TrimSpace(postID))
	}
	return row.toEntity(), nil
}

func (r *Repository) CreatePost(ctx context.Context, post entities.Post) error {
	row := postModelFromEntity(post)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if db.IsForeignKeyViolation(err) {
			return domainerrors.ErrBoardNotFound
		}
		return r.logError("post_repo_create_failed", err,
			"post_id", row.ID,
			"board_id", row.BoardID,
		)
	}
	return nil
}

func (r *Repository) UpdatePostStatus(ctx context.Context, postID string, status entities.Status) error {
	result := r.db.WithContext(ctx).
		Model(&postModel{}).
		Where("id = ?", strings.TrimSpace(postID)).
		Update("status", string(status))
	if result.Error != nil {
		return r.logError("post_repo_update_status_failed", result.Error,
			"post_id", strings.TrimSpace(postID),
			"status", string(status),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPostNotFound
	}
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, postID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(postID)).
		Delete(&postModel{})
	if result.Error != nil {
		return r.logError("post_repo_delete_failed", result.Error, "post_id", strings.TrimSpace(postID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPostNotFound
	}
	return nil
}

func (r *Repository) Now() time.Time {
	return time.Now().UTC()
}

func (r *Repository) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "feedback/post-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("post repository operation failed", fields...)
	return err
}

type postModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	BoardID     string    `gorm:"column:board_id"`
	Title       string    `gorm:"column:title"`
	Description *string   `gorm:"column:description"`
	Status      string    `gorm:"column:status"`
	AuthorID    *string   `gorm:"column:author_id"`
	AuthorName  *string   `gorm:"column:author_name"`
	AuthorEmail *string   `gorm:"column:author_email"`
	VotesCount  int       `gorm:"column:votes_count"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (postModel) TableName() string {
	return "posts"
}

func postModelFromEntity(post entities.Post) postModel {
	row := postModel{
		ID:          strings.TrimSpace(post.PostID),
		BoardID:     strings.TrimSpace(post.BoardID),
		Title:       post.Title,
		Description: optionalString(post.Description),
		Status:      string(post.Status),
		AuthorID:    optionalString(post.Author.UserID),
		AuthorName:  optionalString(post.Author.Name),
		AuthorEmail: optionalString(post.Author.Email),
		VotesCount:  post.VoteCount,
		CreatedAt:   post.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m postModel) toEntity() entities.Post {
	status, ok := entities.ParseStatus(m.Status)
	if !ok {
		status = entities.StatusPending
	}
	return entities.Post{
		PostID:      m.ID,
		BoardID:     m.BoardID,
		Title:       m.Title,
		Description: deref(m.Description),
		Status:      status,
		Author: entities.Author{
			UserID: deref(m.AuthorID),
			Name:   deref(m.AuthorName),
			Email:  deref(m.AuthorEmail),
		},
		VoteCount: m.VotesCount,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type boardRefModel struct {
	ID       string `gorm:"column:id;primaryKey"`
	OwnerID  string `gorm:"column:owner_id"`
	IsPublic bool   `gorm:"column:is_public"`
}

func (boardRefModel) TableName() string {
	return "boards"
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
