package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"fidbaq/contexts/billing/plan-service/domain/entities"
	"fidbaq/contexts/billing/plan-service/ports"

	"github.com/google/uuid"
)

type PlanUpdate struct {
	UserID     string
	Plan       entities.Plan
	CustomerID string
}

// Store stands in for the plan procedures and records every update call.
type Store struct {
	mu      sync.RWMutex
	plans   map[string]string
	updates []PlanUpdate

	// FailLookup and FailUpdate, when set, are returned by the matching call.
	FailLookup error
	FailUpdate error
}

func NewStore(seed map[string]entities.Plan) *Store {
	plans := make(map[string]string, len(seed))
	for userID, plan := range seed {
		plans[strings.TrimSpace(userID)] = string(plan)
	}
	return &Store{plans: plans}
}

func (s *Store) GetUserPlan(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailLookup != nil {
		return "", s.FailLookup
	}
	return s.plans[strings.TrimSpace(userID)], nil
}

func (s *Store) UpdateUserPlan(_ context.Context, userID string, plan entities.Plan, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdate != nil {
		return s.FailUpdate
	}
	userID = strings.TrimSpace(userID)
	s.plans[userID] = string(plan)
	s.updates = append(s.updates, PlanUpdate{UserID: userID, Plan: plan, CustomerID: customerID})
	return nil
}

func (s *Store) Updates() []PlanUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]PlanUpdate(nil), s.updates...)
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// Checkout records checkout requests and hands back a deterministic session.
type Checkout struct {
	mu       sync.Mutex
	requests []ports.CheckoutRequest

	Fail error
}

func (c *Checkout) CreateCheckoutSession(_ context.Context, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Fail != nil {
		return ports.CheckoutSession{}, c.Fail
	}
	c.requests = append(c.requests, req)
	id := "cs_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return ports.CheckoutSession{
		SessionID: id,
		URL:       "https://checkout.stripe.test/pay/" + id,
	}, nil
}

func (c *Checkout) Requests() []ports.CheckoutRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ports.CheckoutRequest(nil), c.requests...)
}

var _ ports.PlanRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
var _ ports.CheckoutGateway = (*Checkout)(nil)
