package httpadapter

import (
	"context"
	"log/slog"

	"fidbaq/contexts/billing/plan-service/application"
	httptransport "fidbaq/contexts/billing/plan-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) EntitlementsHandler(ctx context.Context, userID string, boardCount int) (httptransport.EntitlementsResponse, error) {
	item, err := h.Service.Entitlements(ctx, userID, boardCount)
	if err != nil {
		return httptransport.EntitlementsResponse{}, err
	}
	return httptransport.EntitlementsResponse{
		Data: httptransport.EntitlementsDTO{
			Plan:           string(item.Plan),
			IsPro:          item.Plan.IsPro(),
			BoardCount:     item.BoardCount,
			BoardLimit:     item.BoardLimit,
			CanCreateBoard: item.CanCreateBoard,
		},
	}, nil
}

func (h Handler) CheckoutHandler(
	ctx context.Context,
	actorID string,
	req httptransport.CheckoutRequest,
) (httptransport.CheckoutResponse, error) {
	session, err := h.Service.CreateCheckoutSession(ctx, actorID, application.CheckoutInput{
		UserID:    req.UserID,
		UserEmail: req.UserEmail,
	})
	if err != nil {
		return httptransport.CheckoutResponse{}, err
	}
	return httptransport.CheckoutResponse{SessionID: session.SessionID, URL: session.URL}, nil
}

func (h Handler) WebhookHandler(ctx context.Context, payload []byte, signatureHeader string) (httptransport.WebhookResponse, error) {
	if _, err := h.Service.HandleWebhook(ctx, payload, signatureHeader); err != nil {
		return httptransport.WebhookResponse{}, err
	}
	return httptransport.WebhookResponse{Received: true}, nil
}
