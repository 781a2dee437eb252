package httpserver

import (
	"errors"
	"net/http"

	postentities "fidbaq/contexts/feedback/post-service/domain/entities"
	posterrors "fidbaq/contexts/feedback/post-service/domain/errors"
	posthttp "fidbaq/contexts/feedback/post-service/transport/http"
)

func writePostError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, posthttp.ErrorResponse{Code: code, Message: message})
}

func writePostDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, posterrors.ErrInvalidPostInput):
		writePostError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, posterrors.ErrUnauthenticated):
		writePostError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, posterrors.ErrForbidden):
		writePostError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, posterrors.ErrBoardNotFound),
		errors.Is(err, posterrors.ErrPostNotFound):
		writePostError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writePostError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.optionalIdentity(w, r, writePostError)
	if !ok {
		return
	}
	resp, err := s.modules.Posts.Handler.ListPostsHandler(r.Context(), identity.UserID, r.PathValue("board_id"))
	if err != nil {
		writePostDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.optionalIdentity(w, r, writePostError)
	if !ok {
		return
	}
	var req posthttp.CreatePostRequest
	if !decodeJSON(w, r, &req, writePostError) {
		return
	}
	author := postentities.Author{UserID: identity.UserID, Name: identity.Name, Email: identity.Email}
	resp, err := s.modules.Posts.Handler.CreatePostHandler(r.Context(), author, r.PathValue("board_id"), req)
	if err != nil {
		writePostDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdatePostStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r, writePostError)
	if !ok {
		return
	}
	var req posthttp.UpdatePostStatusRequest
	if !decodeJSON(w, r, &req, writePostError) {
		return
	}
	resp, err := s.modules.Posts.Handler.UpdatePostStatusHandler(r.Context(), identity.UserID, r.PathValue("post_id"), req)
	if err != nil {
		writePostDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r, writePostError)
	if !ok {
		return
	}
	if err := s.modules.Posts.Handler.DeletePostHandler(r.Context(), identity.UserID, r.PathValue("post_id")); err != nil {
		writePostDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
