package workers

import (
	"context"
	"errors"
	"log/slog"

	application "fidbaq/contexts/feedback/voting-engine/application"
	"fidbaq/contexts/feedback/voting-engine/domain/entities"
	domainerrors "fidbaq/contexts/feedback/voting-engine/domain/errors"
	"fidbaq/contexts/feedback/voting-engine/ports"
)

// CounterReconciler rewrites cached post counters that no longer match the
// vote rows, for example after rows were edited outside the API.
type CounterReconciler struct {
	Votes     ports.VoteRepository
	BatchSize int
	Logger    *slog.Logger
}

type ReconcileReport struct {
	Scanned  int
	Repaired int
}

// RunOnce walks every post in id order. Each post is recounted under its row
// lock so a concurrent vote cannot interleave with the repair.
func (r CounterReconciler) RunOnce(ctx context.Context) (ReconcileReport, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 200
	}
	logger.Info("vote counter reconciliation started",
		"event", "voting_reconcile_started",
		"module", "feedback/voting-engine",
		"layer", "worker",
		"batch_size", limit,
	)

	var report ReconcileReport
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		ids, err := r.Votes.ListPostIDs(ctx, cursor, limit)
		if err != nil {
			logger.Error("vote counter post listing failed",
				"event", "voting_reconcile_list_failed",
				"module", "feedback/voting-engine",
				"layer", "worker",
				"cursor", cursor,
				"error", err.Error(),
			)
			return report, err
		}
		for _, postID := range ids {
			repaired, err := r.reconcilePost(ctx, postID)
			if errors.Is(err, domainerrors.ErrPostNotFound) {
				continue
			}
			if err != nil {
				logger.Error("vote counter repair failed",
					"event", "voting_reconcile_post_failed",
					"module", "feedback/voting-engine",
					"layer", "worker",
					"post_id", postID,
					"error", err.Error(),
				)
				return report, err
			}
			report.Scanned++
			if repaired {
				report.Repaired++
			}
		}
		if len(ids) < limit {
			break
		}
		cursor = ids[len(ids)-1]
	}

	logger.Info("vote counter reconciliation completed",
		"event", "voting_reconcile_completed",
		"module", "feedback/voting-engine",
		"layer", "worker",
		"scanned", report.Scanned,
		"repaired", report.Repaired,
	)
	return report, nil
}

func (r CounterReconciler) reconcilePost(ctx context.Context, postID string) (bool, error) {
	repaired := false
	err := r.Votes.WithinPostLock(ctx, postID, func(post entities.PostRef, tx ports.VoteTx) error {
		count, err := tx.CountUpvotes(ctx, postID)
		if err != nil {
			return err
		}
		if count == post.VoteCount {
			return nil
		}
		repaired = true
		return tx.SetPostVoteCount(ctx, postID, count)
	})
	return repaired, err
}
