package stripeadapter

import (
	"encoding/json"
	"fmt"
	"strings"

	"fidbaq/contexts/billing/plan-service/domain/entities"
	domainerrors "fidbaq/contexts/billing/plan-service/domain/errors"
	"fidbaq/contexts/billing/plan-service/ports"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Verifier checks Stripe-Signature headers against the endpoint secret.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: strings.TrimSpace(secret)}
}

func (v *Verifier) Verify(payload []byte, signatureHeader string) (ports.WebhookEvent, error) {
	if v.secret == "" {
		return ports.WebhookEvent{}, domainerrors.ErrBillingUnavailable
	}
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return ports.WebhookEvent{}, fmt.Errorf("%w: %w", domainerrors.ErrInvalidSignature, err)
	}

	out := ports.WebhookEvent{
		EventID: event.ID,
		Type:    string(event.Type),
	}
	if out.Type == entities.WebhookCheckoutCompleted && event.Data != nil {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return ports.WebhookEvent{}, fmt.Errorf("%w: %w", domainerrors.ErrInvalidRequest, err)
		}
		out.Metadata = session.Metadata
		if session.Customer != nil {
			out.CustomerID = session.Customer.ID
		}
	}
	return out, nil
}

var _ ports.WebhookVerifier = (*Verifier)(nil)
