package httpserver

import (
	"errors"
	"net/http"

	commententities "fidbaq/contexts/feedback/comment-service/domain/entities"
	commenterrors "fidbaq/contexts/feedback/comment-service/domain/errors"
	commenthttp "fidbaq/contexts/feedback/comment-service/transport/http"
)

func writeCommentError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, commenthttp.ErrorResponse{Code: code, Message: message})
}

func writeCommentDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, commenterrors.ErrInvalidCommentInput):
		writeCommentError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, commenterrors.ErrUnauthenticated):
		writeCommentError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, commenterrors.ErrForbidden):
		writeCommentError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, commenterrors.ErrPostNotFound),
		errors.Is(err, commenterrors.ErrCommentNotFound):
		writeCommentError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeCommentError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.optionalIdentity(w, r, writeCommentError)
	if !ok {
		return
	}
	resp, err := s.modules.Comments.Handler.ListCommentsHandler(r.Context(), identity.UserID, r.PathValue("post_id"))
	if err != nil {
		writeCommentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.optionalIdentity(w, r, writeCommentError)
	if !ok {
		return
	}
	var req commenthttp.CreateCommentRequest
	if !decodeJSON(w, r, &req, writeCommentError) {
		return
	}
	author := commententities.Author{UserID: identity.UserID, Email: identity.Email, Name: identity.Name}
	resp, err := s.modules.Comments.Handler.CreateCommentHandler(r.Context(), author, r.PathValue("post_id"), req)
	if err != nil {
		writeCommentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r, writeCommentError)
	if !ok {
		return
	}
	var req commenthttp.UpdateCommentRequest
	if !decodeJSON(w, r, &req, writeCommentError) {
		return
	}
	resp, err := s.modules.Comments.Handler.UpdateCommentHandler(r.Context(), identity.UserID, r.PathValue("comment_id"), req)
	if err != nil {
		writeCommentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r, writeCommentError)
	if !ok {
		return
	}
	if err := s.modules.Comments.Handler.DeleteCommentHandler(r.Context(), identity.UserID, r.PathValue("comment_id")); err != nil {
		writeCommentDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
