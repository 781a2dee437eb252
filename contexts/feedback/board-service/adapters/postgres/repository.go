package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fidbaq/contexts/feedback/board-service/domain/entities"
	domainerrors "fidbaq/contexts/feedback/board-service/domain/errors"
	"fidbaq/contexts/feedback/board-service/ports"
	"fidbaq/internal/platform/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const publicLinkConstraint = "boards_public_link_key"

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

func (r *Repository) ListBoardsByOwner(ctx context.Context, ownerID string) ([]entities.Board, error) {
	var rows []boardModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", strings.TrimSpace(ownerID)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("board_repo_list_by_owner_failed", err, "owner_id", strings.TrimSpace(ownerID))
	}
	items := make([]entities.Board, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetBoard(ctx context.Context, boardID string) (entities.Board, error) {
	return r.first(ctx, "board_repo_get_board_failed", "id = ?", strings.TrimSpace(boardID))
}

func (r *Repository) GetBoardByPublicLink(ctx context.Context, publicLink string) (entities.Board, error) {
	return r.first(ctx, "board_repo_get_by_public_link_failed", "public_link = ?", strings.TrimSpace(publicLink))
}

func (r *Repository) CountBoardsByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&boardModel{}).
		Where("owner_id = ?", strings.TrimSpace(ownerID)).
		Count(&count).Error; err != nil {
		return 0, r.logError("board_repo_count_by_owner_failed", err, "owner_id", strings.TrimSpace(ownerID))
	}
	return int(count), nil
}

func (r *Repository) CreateBoard(ctx context.Context, board entities.Board) error {
	row := boardModelFromEntity(board)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if db.IsUniqueViolation(err) {
			if name := db.ConstraintName(err); name == "" || name == publicLinkConstraint {
				return domainerrors.ErrPublicLinkConflict
			}
			return domainerrors.ErrInvalidBoardInput
		}
		return r.logError("board_repo_create_failed", err,
			"board_id", row.ID,
			"owner_id", row.OwnerID,
		)
	}
	return nil
}

func (r *Repository) UpdateBoard(ctx context.Context, board entities.Board) error {
	description := optionalString(board.Description)
	result := r.db.WithContext(ctx).
		Model(&boardModel{}).
		Where("id = ? AND owner_id = ?", strings.TrimSpace(board.BoardID), strings.TrimSpace(board.OwnerID)).
		Updates(map[string]any{
			"name":        board.Name,
			"description": description,
			"theme":       string(board.Theme),
			"is_public":   board.IsPublic,
		})
	if result.Error != nil {
		return r.logError("board_repo_update_failed", result.Error, "board_id", strings.TrimSpace(board.BoardID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrBoardNotFound
	}
	return nil
}

func (r *Repository) DeleteBoard(ctx context.Context, boardID string, ownerID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", strings.TrimSpace(boardID), strings.TrimSpace(ownerID)).
		Delete(&boardModel{})
	if result.Error != nil {
		return r.logError("board_repo_delete_failed", result.Error, "board_id", strings.TrimSpace(boardID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrBoardNotFound
	}
	return nil
}

func (r *Repository) Now() time.Time {
	return time.Now().UTC()
}

func (r *Repository) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (r *Repository) first(ctx context.Context, event string, query string, arg string) (entities.Board, error) {
	var row boardModel
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Board{}, domainerrors.ErrBoardNotFound
		}
		return entities.Board{}, r.logError(event, err, "lookup", arg)
	}
	return row.toEntity(), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "feedback/board-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("board repository operation failed", fields...)
	return err
}

// boardModel mirrors the provider's boards table, which has no updated_at
// column. Board.UpdatedAt is reported as the creation time when read back.
type boardModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	OwnerID     string    `gorm:"column:owner_id"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description"`
	PublicLink  string    `gorm:"column:public_link"`
	IsPublic    bool      `gorm:"column:is_public"`
	Theme       string    `gorm:"column:theme"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (boardModel) TableName() string {
	return "boards"
}

func boardModelFromEntity(board entities.Board) boardModel {
	row := boardModel{
		ID:          strings.TrimSpace(board.BoardID),
		OwnerID:     strings.TrimSpace(board.OwnerID),
		Name:        board.Name,
		Description: optionalString(board.Description),
		PublicLink:  board.PublicLink,
		IsPublic:    board.IsPublic,
		Theme:       string(board.Theme),
		CreatedAt:   board.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m boardModel) toEntity() entities.Board {
	description := ""
	if m.Description != nil {
		description = *m.Description
	}
	theme := entities.Theme(m.Theme)
	if !theme.Valid() {
		theme = entities.ThemeLight
	}
	return entities.Board{
		BoardID:     m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Description: description,
		PublicLink:  m.PublicLink,
		IsPublic:    m.IsPublic,
		Theme:       theme,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.CreatedAt.UTC(),
	}
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.Clock = (*Repository)(nil)
var _ ports.IDGenerator = (*Repository)(nil)
