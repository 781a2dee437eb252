package httpserver

import (
	"errors"
	"net/http"

	boarderrors "fidbaq/contexts/feedback/board-service/domain/errors"
	boardhttp "fidbaq/contexts/feedback/board-service/transport/http"
)

func writeBoardError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, boardhttp.ErrorResponse{Code: code, Message: message})
}

func writeBoardDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, boarderrors.ErrInvalidBoardInput):
		writeBoardError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, boarderrors.ErrUnauthenticated):
		writeBoardError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, boarderrors.ErrPlanLimitReached):
		writeBoardError(w, http.StatusPaymentRequired, "plan_limit_reached", err.Error())
	case errors.Is(err, boarderrors.ErrForbidden):
		writeBoardError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, boarderrors.ErrBoardNotFound):
		writeBoardError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, boarderrors.ErrPublicLinkConflict):
		writeBoardError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeBoardError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r, writeBoardError)
	if !ok {
		return
	}
	resp, err := s.modules.Boards.Handler.ListBoardsHandler(r.Context(), identity.UserID)
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r, writeBoardError)
	if !ok {
		return
	}
	var req boardhttp.CreateBoardRequest
	if !decodeJSON(w, r, &req, writeBoardError) {
		return
	}
	resp, err := s.modules.Boards.Handler.CreateBoardHandler(r.Context(), identity.UserID, req)
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.optionalIdentity(w, r, writeBoardError)
	if !ok {
		return
	}
	resp, err := s.modules.Boards.Handler.GetBoardHandler(r.Context(), identity.UserID, r.PathValue("board_id"))
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPublicBoard(w http.ResponseWriter, r *http.Request) {
	resp, err := s.modules.Boards.Handler.GetPublicBoardHandler(r.Context(), r.PathValue("public_link"))
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateBoard(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r, writeBoardError)
	if !ok {
		return
	}
	var req boardhttp.UpdateBoardRequest
	if !decodeJSON(w, r, &req, writeBoardError) {
		return
	}
	resp, err := s.modules.Boards.Handler.UpdateBoardHandler(r.Context(), identity.UserID, r.PathValue("board_id"), req)
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r, writeBoardError)
	if !ok {
		return
	}
	if err := s.modules.Boards.Handler.DeleteBoardHandler(r.Context(), identity.UserID, r.PathValue("board_id")); err != nil {
		writeBoardDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBoardSocket upgrades to a websocket streaming the board's
// notifications. Only viewers who may see the board can subscribe.
func (s *Server) handleBoardSocket(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.optionalIdentity(w, r, writeBoardError)
	if !ok {
		return
	}
	if s.hub == nil {
		writeBoardError(w, http.StatusServiceUnavailable, "realtime_unavailable", "realtime notifications are not enabled")
		return
	}
	board, err := s.modules.Boards.Service.GetBoard(r.Context(), r.PathValue("board_id"), identity.UserID)
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	s.hub.ServeWS(w, r, board.BoardID)
}
