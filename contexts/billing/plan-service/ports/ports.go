package ports

import (
	"context"
	"time"

	"fidbaq/contexts/billing/plan-service/domain/entities"
	"fidbaq/internal/shared/events"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// PlanRepository wraps the database procedures that own plan state.
type PlanRepository interface {
	GetUserPlan(ctx context.Context, userID string) (string, error)
	UpdateUserPlan(ctx context.Context, userID string, plan entities.Plan, customerID string) error
}

type CheckoutRequest struct {
	UserID      string
	UserEmail   string
	Plan        entities.Plan
	ProductName string
	Description string
	AmountCents int64
	Currency    string
	Quantity    int64
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	SessionID string
	URL       string
}

type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
}

// WebhookEvent is the verified part of a provider event the service acts on.
type WebhookEvent struct {
	EventID    string
	Type       string
	Metadata   map[string]string
	CustomerID string
}

type WebhookVerifier interface {
	Verify(payload []byte, signatureHeader string) (WebhookEvent, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}
