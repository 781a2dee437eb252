package httpserver

import (
	"errors"
	"net/http"

	voteerrors "fidbaq/contexts/feedback/voting-engine/domain/errors"
	votehttp "fidbaq/contexts/feedback/voting-engine/transport/http"
)

func writeVoteError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, votehttp.ErrorResponse{Code: code, Message: message})
}

func writeVoteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voteerrors.ErrInvalidVoteInput):
		writeVoteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, voteerrors.ErrAnonymousVotingNotImplemented):
		writeVoteError(w, http.StatusNotImplemented, "not_implemented", err.Error())
	case errors.Is(err, voteerrors.ErrPostNotFound):
		writeVoteError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, voteerrors.ErrVoteConflict):
		writeVoteError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeVoteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.optionalIdentity(w, r, writeVoteError)
	if !ok {
		return
	}
	var req votehttp.CastVoteRequest
	if !decodeJSON(w, r, &req, writeVoteError) {
		return
	}
	resp, err := s.modules.Votes.Handler.CastVoteHandler(r.Context(), identity.UserID, r.PathValue("post_id"), req)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePostVotes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Votes.Handler.PostVotesHandler(r.Context(), r.PathValue("post_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUserVote(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.optionalIdentity(w, r, writeVoteError)
	if !ok {
		return
	}
	resp, err := s.modules.Votes.Handler.UserVoteHandler(r.Context(), identity.UserID, r.PathValue("post_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
