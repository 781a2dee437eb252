package httpserver

import (
	"errors"
	"io"
	"net/http"

	planerrors "fidbaq/contexts/billing/plan-service/domain/errors"
	planhttp "fidbaq/contexts/billing/plan-service/transport/http"
)

func writePlanError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, planhttp.ErrorResponse{Code: code, Message: message})
}

func writePlanDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planerrors.ErrInvalidSignature):
		writePlanError(w, http.StatusBadRequest, "invalid_signature", "Invalid signature")
	case errors.Is(err, planerrors.ErrInvalidRequest):
		writePlanError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, planerrors.ErrUnauthenticated):
		writePlanError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, planerrors.ErrForbidden):
		writePlanError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, planerrors.ErrPlanUpdateFailed):
		writePlanError(w, http.StatusInternalServerError, "plan_update_failed", "Database update failed")
	case errors.Is(err, planerrors.ErrBillingUnavailable):
		writePlanError(w, http.StatusServiceUnavailable, "billing_unavailable", err.Error())
	default:
		writePlanError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleMyPlan(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r, writePlanError)
	if !ok {
		return
	}
	count, err := s.modules.Boards.Service.CountBoards(r.Context(), identity.UserID)
	if err != nil {
		writeBoardDomainError(w, err)
		return
	}
	resp, err := s.modules.Plans.Handler.EntitlementsHandler(r.Context(), identity.UserID, count)
	if err != nil {
		writePlanDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r, writePlanError)
	if !ok {
		return
	}
	var req planhttp.CheckoutRequest
	if !decodeJSON(w, r, &req, writePlanError) {
		return
	}
	resp, err := s.modules.Plans.Handler.CheckoutHandler(r.Context(), identity.UserID, req)
	if err != nil {
		writePlanDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStripeWebhook needs the raw body; the signature covers its exact
// bytes.
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		writePlanError(w, http.StatusBadRequest, "invalid_request", "request body could not be read")
		return
	}
	resp, err := s.modules.Plans.Handler.WebhookHandler(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		writePlanDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
