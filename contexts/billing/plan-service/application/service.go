package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fidbaq/contexts/billing/plan-service/domain/entities"
	domainerrors "fidbaq/contexts/billing/plan-service/domain/errors"
	"fidbaq/contexts/billing/plan-service/ports"
	"fidbaq/internal/shared/events"
)

type Service struct {
	Plans     ports.PlanRepository
	Checkout  ports.CheckoutGateway
	Webhooks  ports.WebhookVerifier
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger

	FreeBoardLimit int
	// PublicURL is the web app origin checkout redirects back to.
	PublicURL string
}

type CheckoutInput struct {
	UserID    string
	UserEmail string
}

type WebhookResult struct {
	EventType string
	Handled   bool
}

// GetPlan resolves the user's plan. Anonymous users and unknown plan names
// resolve to free.
func (s Service) GetPlan(ctx context.Context, userID string) (entities.Plan, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.PlanFree, nil
	}
	raw, err := s.Plans.GetUserPlan(ctx, userID)
	if err != nil {
		return entities.PlanFree, fmt.Errorf("%w: %w", domainerrors.ErrPlanLookupFailed, err)
	}
	return entities.ParsePlan(raw), nil
}

// CanCreateBoard gates board creation. A failed plan lookup is treated as
// the free plan.
func (s Service) CanCreateBoard(ctx context.Context, ownerID string, boardCount int) (bool, error) {
	plan, err := s.GetPlan(ctx, ownerID)
	if err != nil {
		ResolveLogger(s.Logger).Warn("plan lookup failed, gating as free",
			"event", "plan_lookup_fallback_free",
			"module", "billing/plan-service",
			"layer", "application",
			"user_id", strings.TrimSpace(ownerID),
			"error", err.Error(),
		)
		plan = entities.PlanFree
	}
	return entities.CanCreateBoard(plan.IsPro(), boardCount, s.FreeBoardLimit), nil
}

func (s Service) Entitlements(ctx context.Context, userID string, boardCount int) (entities.Entitlements, error) {
	if strings.TrimSpace(userID) == "" {
		return entities.Entitlements{}, domainerrors.ErrUnauthenticated
	}
	plan, err := s.GetPlan(ctx, userID)
	if err != nil {
		return entities.Entitlements{}, err
	}
	return entities.NewEntitlements(plan, boardCount, s.FreeBoardLimit), nil
}

// CreateCheckoutSession opens a hosted checkout for the Pro upgrade. The
// caller may only start a checkout for their own account.
func (s Service) CreateCheckoutSession(ctx context.Context, actorID string, input CheckoutInput) (ports.CheckoutSession, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return ports.CheckoutSession{}, domainerrors.ErrUnauthenticated
	}
	userID := strings.TrimSpace(input.UserID)
	userEmail := strings.TrimSpace(input.UserEmail)
	if userID == "" || userEmail == "" {
		return ports.CheckoutSession{}, domainerrors.ErrInvalidRequest
	}
	if userID != actorID {
		return ports.CheckoutSession{}, domainerrors.ErrForbidden
	}
	if s.Checkout == nil {
		return ports.CheckoutSession{}, domainerrors.ErrBillingUnavailable
	}

	base := strings.TrimRight(strings.TrimSpace(s.PublicURL), "/")
	session, err := s.Checkout.CreateCheckoutSession(ctx, ports.CheckoutRequest{
		UserID:      userID,
		UserEmail:   userEmail,
		Plan:        entities.PlanPro,
		ProductName: entities.ProProductName,
		Description: entities.ProProductDescription,
		AmountCents: entities.ProPriceCents,
		Currency:    entities.ProCurrency,
		Quantity:    1,
		SuccessURL:  base + "/dashboard?upgrade=success",
		CancelURL:   base + "/dashboard?upgrade=cancelled",
	})
	if err != nil {
		ResolveLogger(s.Logger).Error("checkout session creation failed",
			"event", "plan_checkout_failed",
			"module", "billing/plan-service",
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
		return ports.CheckoutSession{}, fmt.Errorf("%w: %w", domainerrors.ErrCheckoutFailed, err)
	}

	ResolveLogger(s.Logger).Info("checkout session created",
		"event", "plan_checkout_created",
		"module", "billing/plan-service",
		"layer", "application",
		"user_id", userID,
		"session_id", session.SessionID,
	)
	return session, nil
}

// HandleWebhook verifies a provider callback and applies it. Nothing is
// written unless the signature checks out.
func (s Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (WebhookResult, error) {
	logger := ResolveLogger(s.Logger)
	if s.Webhooks == nil {
		return WebhookResult{}, domainerrors.ErrBillingUnavailable
	}
	event, err := s.Webhooks.Verify(payload, signatureHeader)
	if err != nil {
		logger.Warn("webhook verification failed",
			"event", "plan_webhook_rejected",
			"module", "billing/plan-service",
			"layer", "application",
			"error", err.Error(),
		)
		switch {
		case errors.Is(err, domainerrors.ErrBillingUnavailable):
			return WebhookResult{}, domainerrors.ErrBillingUnavailable
		case errors.Is(err, domainerrors.ErrInvalidRequest):
			return WebhookResult{}, domainerrors.ErrInvalidRequest
		}
		return WebhookResult{}, domainerrors.ErrInvalidSignature
	}

	result := WebhookResult{EventType: event.Type}
	switch event.Type {
	case entities.WebhookCheckoutCompleted:
		userID := strings.TrimSpace(event.Metadata["user_id"])
		if userID == "" {
			logger.Warn("checkout completed without user metadata",
				"event", "plan_webhook_missing_user",
				"module", "billing/plan-service",
				"layer", "application",
				"stripe_event_id", event.EventID,
			)
			return result, domainerrors.ErrInvalidRequest
		}
		plan := entities.PlanPro
		if raw := strings.TrimSpace(event.Metadata["plan"]); raw != "" {
			plan = entities.Plan(strings.ToLower(raw))
			if plan != entities.PlanPro && plan != entities.PlanFree {
				return result, domainerrors.ErrInvalidRequest
			}
		}
		if err := s.Plans.UpdateUserPlan(ctx, userID, plan, strings.TrimSpace(event.CustomerID)); err != nil {
			logger.Error("plan update from webhook failed",
				"event", "plan_webhook_update_failed",
				"module", "billing/plan-service",
				"layer", "application",
				"stripe_event_id", event.EventID,
				"user_id", userID,
				"error", err.Error(),
			)
			return result, fmt.Errorf("%w: %v", domainerrors.ErrPlanUpdateFailed, err)
		}
		logger.Info("user plan upgraded",
			"event", "plan_upgraded",
			"module", "billing/plan-service",
			"layer", "application",
			"stripe_event_id", event.EventID,
			"user_id", userID,
			"user_email", strings.TrimSpace(event.Metadata["user_email"]),
			"plan", string(plan),
		)
		s.publishUpgrade(ctx, userID, plan, event.CustomerID)
		result.Handled = true
	case entities.WebhookPaymentIntentFailed:
		logger.Warn("payment failed",
			"event", "plan_webhook_payment_failed",
			"module", "billing/plan-service",
			"layer", "application",
			"stripe_event_id", event.EventID,
		)
	default:
		logger.Info("webhook event ignored",
			"event", "plan_webhook_ignored",
			"module", "billing/plan-service",
			"layer", "application",
			"stripe_event_id", event.EventID,
			"stripe_event_type", event.Type,
		)
	}
	return result, nil
}

func (s Service) publishUpgrade(ctx context.Context, userID string, plan entities.Plan, customerID string) {
	if s.Publisher == nil {
		return
	}
	eventID := userID + ":" + events.TopicPlanUpgraded
	if s.IDGen != nil {
		if id, err := s.IDGen.NewID(ctx); err == nil {
			eventID = id
		}
	}
	envelope := events.Envelope{
		EventID:       eventID,
		EventType:     events.TopicPlanUpgraded,
		SourceService: "plan-service",
		OccurredAtUTC: s.now(),
		EntityType:    "user_plan",
		EntityID:      userID,
		Level:         events.LevelSuccess,
		Message:       "Plan upgraded",
		Payload: map[string]any{
			"plan":        string(plan),
			"customer_id": customerID,
		},
	}
	if err := s.Publisher.Publish(ctx, events.TopicPlanUpgraded, envelope); err != nil {
		ResolveLogger(s.Logger).Warn("plan notification publish failed",
			"event", "plan_publish_failed",
			"module", "billing/plan-service",
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
	}
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

// ResolveLogger guarantees a non-nil logger.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
