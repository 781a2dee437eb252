package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"fidbaq/contexts/feedback/voting-engine/domain/entities"
	domainerrors "fidbaq/contexts/feedback/voting-engine/domain/errors"
	"fidbaq/contexts/feedback/voting-engine/ports"
	"fidbaq/internal/platform/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

func (r *Repository) WithinPostLock(
	ctx context.Context,
	postID string,
	fn func(post entities.PostRef, tx ports.VoteTx) error,
) error {
	postID = strings.TrimSpace(postID)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row postCounterModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "board_id", "votes_count").
			Where("id = ?", postID).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPostNotFound
			}
			return r.logError("voting_repo_lock_post_failed", err, "post_id", postID)
		}
		return fn(row.toEntity(), &txRepository{db: tx, repo: r})
	})
}

func (r *Repository) GetPost(ctx context.Context, postID string) (entities.PostRef, error) {
	var row postCounterModel
	err := r.db.WithContext(ctx).
		Select("id", "board_id", "votes_count").
		Where("id = ?", strings.TrimSpace(postID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.PostRef{}, domainerrors.ErrPostNotFound
		}
		return entities.PostRef{}, r.logError("voting_repo_get_post_failed", err, "post_id", strings.TrimSpace(postID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetVoteByIdentity(ctx context.Context, postID string, userID string) (entities.Vote, bool, error) {
	return getVoteByIdentity(ctx, r.db, r, postID, userID)
}

func (r *Repository) CountUpvotes(ctx context.Context, postID string) (int, error) {
	return countUpvotes(ctx, r.db, r, postID)
}

func (r *Repository) ListPostIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 200
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&postCounterModel{}).
		Where("id::text > ?", strings.TrimSpace(afterID)).
		Order("id::text ASC").
		Limit(limit).
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, r.logError("voting_repo_list_post_ids_failed", err, "after_id", strings.TrimSpace(afterID))
	}
	return ids, nil
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
		"module", "feedback/voting-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("voting repository operation failed", fields...)
	return err
}

// txRepository performs writes on the transaction opened by WithinPostLock.
type txRepository struct {
	db   *gorm.DB
	repo *Repository
}

func (t *txRepository) GetVoteByIdentity(ctx context.Context, postID string, userID string) (entities.Vote, bool, error) {
	return getVoteByIdentity(ctx, t.db, t.repo, postID, userID)
}

func (t *txRepository) CreateVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return domainerrors.ErrVoteConflict
		}
		if db.IsForeignKeyViolation(err) {
			return domainerrors.ErrPostNotFound
		}
		return t.repo.logError("voting_repo_create_vote_failed", err,
			"vote_id", row.ID,
			"post_id", row.PostID,
			"user_id", row.UserID,
		)
	}
	return nil
}

func (t *txRepository) UpdateVoteType(
	ctx context.Context,
	voteID string,
	voteType entities.VoteType,
	updatedAt time.Time,
) error {
	result := t.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("id = ?", strings.TrimSpace(voteID)).
		Updates(map[string]any{
			"vote_type":  string(voteType),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return t.repo.logError("voting_repo_update_vote_failed", result.Error, "vote_id", strings.TrimSpace(voteID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrVoteConflict
	}
	return nil
}

func (t *txRepository) DeleteVote(ctx context.Context, voteID string) error {
	result := t.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(voteID)).
		Delete(&voteModel{})
	if result.Error != nil {
		return t.repo.logError("voting_repo_delete_vote_failed", result.Error, "vote_id", strings.TrimSpace(voteID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrVoteConflict
	}
	return nil
}

func (t *txRepository) CountUpvotes(ctx context.Context, postID string) (int, error) {
	return countUpvotes(ctx, t.db, t.repo, postID)
}

func (t *txRepository) SetPostVoteCount(ctx context.Context, postID string, count int) error {
	err := t.db.WithContext(ctx).
		Model(&postCounterModel{}).
		Where("id = ?", strings.TrimSpace(postID)).
		Update("votes_count", count).
		Error
	if err != nil {
		return t.repo.logError("voting_repo_set_vote_count_failed", err,
			"post_id", strings.TrimSpace(postID),
			"vote_count", count,
		)
	}
	return nil
}

func getVoteByIdentity(ctx context.Context, conn *gorm.DB, repo *Repository, postID string, userID string) (entities.Vote, bool, error) {
	var row voteModel
	err := conn.WithContext(ctx).
		Where("post_id = ?", strings.TrimSpace(postID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, repo.logError("voting_repo_get_vote_by_identity_failed", err,
			"post_id", strings.TrimSpace(postID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

func countUpvotes(ctx context.Context, conn *gorm.DB, repo *Repository, postID string) (int, error) {
	var count int64
	err := conn.WithContext(ctx).
		Model(&voteModel{}).
		Where("post_id = ?", strings.TrimSpace(postID)).
		Where("vote_type = ?", string(entities.VoteTypeUpvote)).
		Count(&count).
		Error
	if err != nil {
		return 0, repo.logError("voting_repo_count_upvotes_failed", err, "post_id", strings.TrimSpace(postID))
	}
	return int(count), nil
}

type voteModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	PostID    string    `gorm:"column:post_id"`
	UserID    string    `gorm:"column:user_id"`
	VoteType  string    `gorm:"column:vote_type"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:        strings.TrimSpace(vote.VoteID),
		PostID:    strings.TrimSpace(vote.PostID),
		UserID:    strings.TrimSpace(vote.UserID),
		VoteType:  string(vote.VoteType),
		CreatedAt: vote.CreatedAt.UTC(),
		UpdatedAt: vote.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:    m.ID,
		PostID:    m.PostID,
		UserID:    m.UserID,
		VoteType:  entities.VoteType(m.VoteType),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// postCounterModel maps only the columns this engine owns on posts.
type postCounterModel struct {
	ID         string `gorm:"column:id;primaryKey"`
	BoardID    string `gorm:"column:board_id"`
	VotesCount int    `gorm:"column:votes_count"`
}

func (postCounterModel) TableName() string {
	return "posts"
}

func (m postCounterModel) toEntity() entities.PostRef {
	return entities.PostRef{
		PostID:    m.ID,
		BoardID:   m.BoardID,
		VoteCount: m.VotesCount,
	}
}

var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.VoteTx = (*txRepository)(nil)
var _ ports.Clock = (*Repository)(nil)
var _ ports.IDGenerator = (*Repository)(nil)
