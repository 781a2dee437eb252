package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "fidbaq/contexts/feedback/voting-engine/application"
	"fidbaq/contexts/feedback/voting-engine/domain/entities"
	domainerrors "fidbaq/contexts/feedback/voting-engine/domain/errors"
	"fidbaq/contexts/feedback/voting-engine/ports"
	"fidbaq/internal/shared/events"
)

type CastVoteCommand struct {
	PostID   string
	UserID   string
	VoteType string
}

// CastVoteResult carries the vote as it stands after the request. Vote is
// nil when the request removed it.
type CastVoteResult struct {
	PostID    string
	BoardID   string
	Action    entities.Action
	Vote      *entities.Vote
	VoteCount int
}

type VoteUseCase struct {
	Votes     ports.VoteRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// CastVote toggles the caller's vote on a post and recounts the post's
// upvotes before the lock is released. Anonymous callers are rejected before
// any read or write.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	userID := strings.TrimSpace(cmd.UserID)
	postID := strings.TrimSpace(cmd.PostID)
	if userID == "" {
		logger.Warn("anonymous vote rejected",
			"event", "voting_vote_anonymous_rejected",
			"module", "feedback/voting-engine",
			"layer", "application",
			"post_id", postID,
		)
		return CastVoteResult{}, domainerrors.ErrAnonymousVotingNotImplemented
	}
	voteType, ok := entities.ParseVoteType(cmd.VoteType)
	if postID == "" || !ok {
		logger.Warn("vote validation failed",
			"event", "voting_vote_validation_failed",
			"module", "feedback/voting-engine",
			"layer", "application",
			"post_id", postID,
			"user_id", userID,
			"vote_type", cmd.VoteType,
		)
		return CastVoteResult{}, domainerrors.ErrInvalidVoteInput
	}

	now := uc.now()
	result := CastVoteResult{PostID: postID}
	err := uc.Votes.WithinPostLock(ctx, postID, func(post entities.PostRef, tx ports.VoteTx) error {
		result.BoardID = post.BoardID

		existing, found, err := tx.GetVoteByIdentity(ctx, postID, userID)
		if err != nil {
			return err
		}
		current := entities.NoVote()
		if found {
			current = entities.Voted(existing.VoteType)
		}

		next, action := entities.ApplyVote(current, voteType)
		result.Action = action
		switch action {
		case entities.ActionCreated:
			voteID, err := uc.IDGen.NewID(ctx)
			if err != nil {
				return err
			}
			vote := entities.Vote{
				VoteID:    voteID,
				PostID:    postID,
				UserID:    userID,
				VoteType:  next.Type,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.CreateVote(ctx, vote); err != nil {
				return err
			}
			result.Vote = &vote
		case entities.ActionUpdated:
			if err := tx.UpdateVoteType(ctx, existing.VoteID, next.Type, now); err != nil {
				return err
			}
			existing.VoteType = next.Type
			existing.UpdatedAt = now
			result.Vote = &existing
		case entities.ActionRemoved:
			if err := tx.DeleteVote(ctx, existing.VoteID); err != nil {
				return err
			}
		}

		count, err := tx.CountUpvotes(ctx, postID)
		if err != nil {
			return err
		}
		if err := tx.SetPostVoteCount(ctx, postID, count); err != nil {
			return err
		}
		result.VoteCount = count
		return nil
	})
	if err != nil {
		logger.Error("vote cast failed",
			"event", "voting_vote_cast_failed",
			"module", "feedback/voting-engine",
			"layer", "application",
			"post_id", postID,
			"user_id", userID,
			"error", err.Error(),
		)
		return CastVoteResult{}, err
	}

	logger.Info("vote cast",
		"event", "voting_vote_cast",
		"module", "feedback/voting-engine",
		"layer", "application",
		"post_id", postID,
		"user_id", userID,
		"action", string(result.Action),
		"vote_count", result.VoteCount,
	)
	uc.publish(ctx, logger, result, now)
	return result, nil
}

func (uc VoteUseCase) publish(ctx context.Context, logger *slog.Logger, result CastVoteResult, now time.Time) {
	if uc.Publisher == nil {
		return
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		eventID = result.PostID + ":" + now.Format(time.RFC3339Nano)
	}
	message := "Vote added"
	switch result.Action {
	case entities.ActionUpdated:
		message = "Vote updated"
	case entities.ActionRemoved:
		message = "Vote removed"
	}
	envelope := events.Envelope{
		EventID:       eventID,
		EventType:     events.TopicVoteCast,
		SourceService: "voting-engine",
		OccurredAtUTC: now,
		EntityType:    "post",
		EntityID:      result.PostID,
		BoardID:       result.BoardID,
		Level:         events.LevelSuccess,
		Message:       message,
		Payload: map[string]any{
			"action":     string(result.Action),
			"vote_count": result.VoteCount,
		},
	}
	if err := uc.Publisher.Publish(ctx, events.TopicVoteCast, envelope); err != nil {
		logger.Warn("vote notification publish failed",
			"event", "voting_vote_publish_failed",
			"module", "feedback/voting-engine",
			"layer", "application",
			"post_id", result.PostID,
			"error", err.Error(),
		)
	}
}

func (uc VoteUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
