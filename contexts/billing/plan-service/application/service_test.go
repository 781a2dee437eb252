package application

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"fidbaq/contexts/billing/plan-service/adapters/memory"
	stripeadapter "fidbaq/contexts/billing/plan-service/adapters/stripe"
	"fidbaq/contexts/billing/plan-service/domain/entities"
	domainerrors "fidbaq/contexts/billing/plan-service/domain/errors"
	"fidbaq/internal/shared/events"
)

const testWebhookSecret = "whsec_test_secret"

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

type recordingPublisher struct {
	topics []string
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, _ events.Envelope) error {
	r.topics = append(r.topics, topic)
	return nil
}

func newFixture(seed map[string]entities.Plan) (Service, *memory.Store, *memory.Checkout, *recordingPublisher) {
	store := memory.NewStore(seed)
	checkout := &memory.Checkout{}
	publisher := &recordingPublisher{}
	return Service{
		Plans:          store,
		Checkout:       checkout,
		Webhooks:       stripeadapter.NewVerifier(testWebhookSecret),
		Publisher:      publisher,
		Clock:          fixedClock{now: time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)},
		IDGen:          store,
		FreeBoardLimit: 3,
		PublicURL:      "https://app.fidbaq.test/",
	}, store, checkout, publisher
}

func sign(secret string, payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func checkoutCompletedPayload(metadata string) []byte {
	return []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","object":"checkout.session","customer":"cus_123","metadata":` + metadata + `}}}`)
}

func TestGetPlanDefaultsToFree(t *testing.T) {
	service, store, _, _ := newFixture(map[string]entities.Plan{"pro-user": entities.PlanPro, "odd-user": "legacy"})

	for userID, want := range map[string]entities.Plan{
		"":         entities.PlanFree,
		"nobody":   entities.PlanFree,
		"odd-user": entities.PlanFree,
		"pro-user": entities.PlanPro,
	} {
		got, err := service.GetPlan(context.Background(), userID)
		if err != nil || got != want {
			t.Fatalf("GetPlan(%q) = %q, %v; want %q", userID, got, err, want)
		}
	}

	store.FailLookup = errors.New("rpc down")
	if _, err := service.GetPlan(context.Background(), "pro-user"); !errors.Is(err, domainerrors.ErrPlanLookupFailed) {
		t.Fatalf("expected ErrPlanLookupFailed, got %v", err)
	}
}

func TestCanCreateBoardGate(t *testing.T) {
	service, store, _, _ := newFixture(map[string]entities.Plan{"pro-user": entities.PlanPro})
	ctx := context.Background()

	cases := []struct {
		user  string
		count int
		want  bool
	}{
		{user: "free-user", count: 2, want: true},
		{user: "free-user", count: 3, want: false},
		{user: "pro-user", count: 1000, want: true},
	}
	for _, tc := range cases {
		got, err := service.CanCreateBoard(ctx, tc.user, tc.count)
		if err != nil || got != tc.want {
			t.Fatalf("CanCreateBoard(%s, %d) = %v, %v; want %v", tc.user, tc.count, got, err, tc.want)
		}
	}

	store.FailLookup = errors.New("rpc down")
	got, err := service.CanCreateBoard(ctx, "pro-user", 3)
	if err != nil || got {
		t.Fatalf("lookup failure should gate as free, got %v, %v", got, err)
	}
}

func TestEntitlements(t *testing.T) {
	service, _, _, _ := newFixture(nil)
	if _, err := service.Entitlements(context.Background(), "", 0); !errors.Is(err, domainerrors.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	got, err := service.Entitlements(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("entitlements: %v", err)
	}
	if got.Plan != entities.PlanFree || got.CanCreateBoard || got.BoardLimit != 3 {
		t.Fatalf("unexpected entitlements %+v", got)
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	service, _, checkout, _ := newFixture(nil)
	ctx := context.Background()

	if _, err := service.CreateCheckoutSession(ctx, "user-1", CheckoutInput{UserID: "user-1"}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("missing email: expected ErrInvalidRequest, got %v", err)
	}
	if _, err := service.CreateCheckoutSession(ctx, "user-2", CheckoutInput{UserID: "user-1", UserEmail: "u1@example.com"}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("other user's checkout: expected ErrForbidden, got %v", err)
	}
	if len(checkout.Requests()) != 0 {
		t.Fatalf("rejected checkouts must not reach the gateway")
	}

	session, err := service.CreateCheckoutSession(ctx, "user-1", CheckoutInput{UserID: "user-1", UserEmail: "u1@example.com"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if session.SessionID == "" || session.URL == "" {
		t.Fatalf("unexpected session %+v", session)
	}
	requests := checkout.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected one gateway call, got %d", len(requests))
	}
	req := requests[0]
	if req.AmountCents != 1900 || req.Currency != "usd" || req.Quantity != 1 {
		t.Fatalf("unexpected line item %+v", req)
	}
	if req.ProductName != "Fidbaq Pro Plan" || req.Description != "Unlimited boards and premium features" {
		t.Fatalf("unexpected product %+v", req)
	}
	if req.SuccessURL != "https://app.fidbaq.test/dashboard?upgrade=success" ||
		req.CancelURL != "https://app.fidbaq.test/dashboard?upgrade=cancelled" {
		t.Fatalf("unexpected redirect urls %+v", req)
	}
	if req.Plan != entities.PlanPro || req.UserEmail != "u1@example.com" {
		t.Fatalf("unexpected metadata %+v", req)
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	service, store, _, publisher := newFixture(nil)
	payload := checkoutCompletedPayload(`{"user_id":"user-1","user_email":"u1@example.com","plan":"pro"}`)

	for name, header := range map[string]string{
		"empty":        "",
		"wrong secret": sign("whsec_other", payload),
		"garbage":      "t=1,v1=deadbeef",
	} {
		if _, err := service.HandleWebhook(context.Background(), payload, header); !errors.Is(err, domainerrors.ErrInvalidSignature) {
			t.Fatalf("%s: expected ErrInvalidSignature, got %v", name, err)
		}
	}
	if len(store.Updates()) != 0 || len(publisher.topics) != 0 {
		t.Fatalf("invalid signatures must not mutate plans")
	}
}

func TestHandleWebhookCheckoutCompletedUpdatesOnce(t *testing.T) {
	service, store, _, publisher := newFixture(nil)
	payload := checkoutCompletedPayload(`{"user_id":"user-1","user_email":"u1@example.com","plan":"pro"}`)

	result, err := service.HandleWebhook(context.Background(), payload, sign(testWebhookSecret, payload))
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if !result.Handled || result.EventType != entities.WebhookCheckoutCompleted {
		t.Fatalf("unexpected result %+v", result)
	}
	updates := store.Updates()
	if len(updates) != 1 {
		t.Fatalf("expected exactly one plan update, got %d", len(updates))
	}
	if updates[0] != (memory.PlanUpdate{UserID: "user-1", Plan: entities.PlanPro, CustomerID: "cus_123"}) {
		t.Fatalf("unexpected update %+v", updates[0])
	}
	if len(publisher.topics) != 1 || publisher.topics[0] != events.TopicPlanUpgraded {
		t.Fatalf("expected plan.upgraded, got %v", publisher.topics)
	}
	plan, err := service.GetPlan(context.Background(), "user-1")
	if err != nil || plan != entities.PlanPro {
		t.Fatalf("plan after upgrade = %q, %v", plan, err)
	}
}

func TestHandleWebhookMissingUserIsInvalid(t *testing.T) {
	service, store, _, _ := newFixture(nil)
	payload := checkoutCompletedPayload(`{"plan":"pro"}`)

	if _, err := service.HandleWebhook(context.Background(), payload, sign(testWebhookSecret, payload)); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if len(store.Updates()) != 0 {
		t.Fatalf("missing user id must not mutate plans")
	}
}

func TestHandleWebhookUpdateFailureSurfaces(t *testing.T) {
	service, store, _, publisher := newFixture(nil)
	store.FailUpdate = errors.New("rpc down")
	payload := checkoutCompletedPayload(`{"user_id":"user-1","plan":"pro"}`)

	if _, err := service.HandleWebhook(context.Background(), payload, sign(testWebhookSecret, payload)); !errors.Is(err, domainerrors.ErrPlanUpdateFailed) {
		t.Fatalf("expected ErrPlanUpdateFailed, got %v", err)
	}
	if len(publisher.topics) != 0 {
		t.Fatalf("failed update must not announce an upgrade")
	}
}

func TestHandleWebhookMissingUpdateFunctionIsUpdateFailure(t *testing.T) {
	service, store, _, _ := newFixture(nil)
	store.FailUpdate = domainerrors.ErrBillingUnavailable
	payload := checkoutCompletedPayload(`{"user_id":"user-1","plan":"pro"}`)

	_, err := service.HandleWebhook(context.Background(), payload, sign(testWebhookSecret, payload))
	if !errors.Is(err, domainerrors.ErrPlanUpdateFailed) {
		t.Fatalf("expected ErrPlanUpdateFailed, got %v", err)
	}
	if errors.Is(err, domainerrors.ErrBillingUnavailable) {
		t.Fatalf("webhook update failure must not read as billing unavailable: %v", err)
	}
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	service, store, _, _ := newFixture(nil)
	for _, eventType := range []string{entities.WebhookPaymentIntentFailed, "customer.created"} {
		payload := []byte(`{"id":"evt_2","object":"event","type":"` + eventType + `","data":{"object":{"id":"pi_1","object":"payment_intent"}}}`)
		result, err := service.HandleWebhook(context.Background(), payload, sign(testWebhookSecret, payload))
		if err != nil {
			t.Fatalf("%s: %v", eventType, err)
		}
		if result.Handled || result.EventType != eventType {
			t.Fatalf("%s: unexpected result %+v", eventType, result)
		}
	}
	if len(store.Updates()) != 0 {
		t.Fatalf("non-checkout events must not mutate plans")
	}
}
