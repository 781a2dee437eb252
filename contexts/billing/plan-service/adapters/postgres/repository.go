package postgresadapter

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"fidbaq/contexts/billing/plan-service/domain/entities"
	domainerrors "fidbaq/contexts/billing/plan-service/domain/errors"
	"fidbaq/contexts/billing/plan-service/ports"
	"fidbaq/internal/platform/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository calls the plan procedures installed by the database provider.
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

func (r *Repository) GetUserPlan(ctx context.Context, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	var plan sql.NullString
	err := r.db.WithContext(ctx).
		Raw("SELECT get_user_plan(user_uuid => ?)", userID).
		Row().
		Scan(&plan)
	if err != nil {
		if db.IsUndefinedFunction(err) {
			return "", r.logError("plan_repo_get_plan_missing_function", domainerrors.ErrBillingUnavailable, "user_id", userID)
		}
		return "", r.logError("plan_repo_get_plan_failed", err, "user_id", userID)
	}
	if !plan.Valid {
		return "", nil
	}
	return plan.String, nil
}

func (r *Repository) UpdateUserPlan(ctx context.Context, userID string, plan entities.Plan, customerID string) error {
	userID = strings.TrimSpace(userID)
	var customer *string
	if value := strings.TrimSpace(customerID); value != "" {
		customer = &value
	}
	err := r.db.WithContext(ctx).
		Exec(
			"SELECT update_user_plan(user_uuid => ?, plan_type => ?, stripe_customer_id => ?)",
			userID,
			string(plan),
			customer,
		).
		Error
	if err != nil {
		if db.IsUndefinedFunction(err) {
			return r.logError("plan_repo_update_plan_missing_function", domainerrors.ErrBillingUnavailable, "user_id", userID)
		}
		return r.logError("plan_repo_update_plan_failed", err,
			"user_id", userID,
			"plan", string(plan),
		)
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
		"module", "billing/plan-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("plan repository operation failed", fields...)
	return err
}

var _ ports.PlanRepository = (*Repository)(nil)
var _ ports.Clock = (*Repository)(nil)
var _ ports.IDGenerator = (*Repository)(nil)
