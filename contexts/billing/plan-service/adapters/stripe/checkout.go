package stripeadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fidbaq/contexts/billing/plan-service/ports"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Gateway creates hosted checkout sessions through the Stripe API.
type Gateway struct {
	api    *client.API
	logger *slog.Logger
}

// NewGateway builds a gateway for secretKey. A non-empty baseURL points every
// backend at it, which is how tests talk to a local server.
func NewGateway(secretKey string, baseURL string, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	api := &client.API{}
	var backends *stripe.Backends
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(baseURL),
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     leveledLogger{logger: logger},
		})
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}
	api.Init(secretKey, backends)
	return &Gateway{api: api, logger: logger}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.ProductName),
						Description: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(req.Quantity),
			},
		},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		CustomerEmail: stripe.String(req.UserEmail),
	}
	params.Context = ctx
	params.AddMetadata("user_id", req.UserID)
	params.AddMetadata("user_email", req.UserEmail)
	params.AddMetadata("plan", string(req.Plan))

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Error("stripe checkout session request failed",
			"event", "plan_stripe_checkout_failed",
			"module", "billing/plan-service",
			"layer", "adapter",
			"user_id", req.UserID,
			"error", err.Error(),
		)
		return ports.CheckoutSession{}, err
	}
	return ports.CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

// leveledLogger routes the Stripe client's own logging into slog.
type leveledLogger struct {
	logger *slog.Logger
}

func (l leveledLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "module", "billing/plan-service", "layer", "adapter")
}

func (l leveledLogger) Infof(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...), "module", "billing/plan-service", "layer", "adapter")
}

func (l leveledLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...), "module", "billing/plan-service", "layer", "adapter")
}

func (l leveledLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), "module", "billing/plan-service", "layer", "adapter")
}

var _ ports.CheckoutGateway = (*Gateway)(nil)
var _ stripe.LeveledLoggerInterface = leveledLogger{}
