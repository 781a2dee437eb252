package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"fidbaq/contexts/feedback/voting-engine/application/commands"
	"fidbaq/contexts/feedback/voting-engine/application/queries"
	"fidbaq/contexts/feedback/voting-engine/domain/entities"
	httptransport "fidbaq/contexts/feedback/voting-engine/transport/http"
)

type Handler struct {
	Votes   commands.VoteUseCase
	Queries queries.VoteQueries
	Logger  *slog.Logger
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	userID string,
	postID string,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	result, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		PostID:   postID,
		UserID:   userID,
		VoteType: req.VoteType,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	resp := httptransport.CastVoteResponse{
		PostID:    result.PostID,
		Action:    string(result.Action),
		VoteCount: result.VoteCount,
	}
	if result.Vote != nil {
		resp.Vote = toVoteDTO(*result.Vote)
	}
	return resp, nil
}

func (h Handler) UserVoteHandler(ctx context.Context, userID string, postID string) (httptransport.UserVoteResponse, error) {
	vote, found, err := h.Queries.GetUserVote(ctx, postID, userID)
	if err != nil {
		return httptransport.UserVoteResponse{}, err
	}
	resp := httptransport.UserVoteResponse{PostID: postID, Voted: found}
	if found {
		resp.Vote = toVoteDTO(vote)
	}
	return resp, nil
}

func (h Handler) PostVotesHandler(ctx context.Context, postID string) (httptransport.PostVotesResponse, error) {
	votes, err := h.Queries.PostVotes(ctx, postID)
	if err != nil {
		return httptransport.PostVotesResponse{}, err
	}
	return httptransport.PostVotesResponse{
		PostID:  votes.PostID,
		Upvotes: votes.Upvotes,
	}, nil
}

func toVoteDTO(vote entities.Vote) *httptransport.VoteDTO {
	return &httptransport.VoteDTO{
		VoteID:    vote.VoteID,
		PostID:    vote.PostID,
		UserID:    vote.UserID,
		VoteType:  string(vote.VoteType),
		CreatedAt: vote.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: vote.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
