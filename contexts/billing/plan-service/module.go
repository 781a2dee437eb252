package planservice

import (
	"log/slog"

	httpadapter "fidbaq/contexts/billing/plan-service/adapters/http"
	"fidbaq/contexts/billing/plan-service/adapters/memory"
	stripeadapter "fidbaq/contexts/billing/plan-service/adapters/stripe"
	"fidbaq/contexts/billing/plan-service/application"
	"fidbaq/contexts/billing/plan-service/domain/entities"
	"fidbaq/contexts/billing/plan-service/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Service  application.Service
	Store    *memory.Store
	Checkout *memory.Checkout
}

type Dependencies struct {
	Plans          ports.PlanRepository
	Checkout       ports.CheckoutGateway
	Webhooks       ports.WebhookVerifier
	Publisher      ports.EventPublisher
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Logger         *slog.Logger
	FreeBoardLimit int
	PublicURL      string
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Plans:          deps.Plans,
		Checkout:       deps.Checkout,
		Webhooks:       deps.Webhooks,
		Publisher:      deps.Publisher,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		Logger:         deps.Logger,
		FreeBoardLimit: deps.FreeBoardLimit,
		PublicURL:      deps.PublicURL,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule keeps plans in memory and records checkouts, but still
// verifies webhooks with the real Stripe signature scheme under
// webhookSecret.
func NewInMemoryModule(
	seed map[string]entities.Plan,
	webhookSecret string,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(seed)
	checkout := &memory.Checkout{}
	module := NewModule(Dependencies{
		Plans:          store,
		Checkout:       checkout,
		Webhooks:       stripeadapter.NewVerifier(webhookSecret),
		Publisher:      publisher,
		Clock:          store,
		IDGen:          store,
		Logger:         logger,
		FreeBoardLimit: entities.DefaultFreeBoardLimit,
		PublicURL:      "http://localhost:3000",
	})
	module.Store = store
	module.Checkout = checkout
	return module
}
