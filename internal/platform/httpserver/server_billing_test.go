package httpserver

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	planerrors "fidbaq/contexts/billing/plan-service/domain/errors"
)

func stripeSignature(secret string, payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(env *testEnv, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rr := httptest.NewRecorder()
	env.server.mux.ServeHTTP(rr, req)
	return rr
}

func TestMyPlanReportsEntitlements(t *testing.T) {
	env := newTestServer(t)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/me/plan", "", ""), http.StatusUnauthorized)

	rr := env.do(t, http.MethodGet, "/v1/me/plan", env.token(t, "owner-1"), "")
	expectStatus(t, rr, http.StatusOK)
	var body struct {
		Data struct {
			Plan           string `json:"plan"`
			IsPro          bool   `json:"is_pro"`
			BoardCount     int    `json:"board_count"`
			BoardLimit     int    `json:"board_limit"`
			CanCreateBoard bool   `json:"can_create_board"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Plan != "free" || body.Data.IsPro || body.Data.BoardCount != 2 || body.Data.BoardLimit != 3 || !body.Data.CanCreateBoard {
		t.Fatalf("unexpected entitlements %+v", body.Data)
	}

	rr = env.do(t, http.MethodGet, "/v1/me/plan", env.token(t, "pro-owner"), "")
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"is_pro":true`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestCheckoutRequiresMatchingUser(t *testing.T) {
	env := newTestServer(t)
	token := env.token(t, "user-1")

	expectStatus(t, env.do(t, http.MethodPost, "/v1/billing/checkout", "", `{"userEmail":"u1@example.com","userId":"user-1"}`), http.StatusUnauthorized)
	expectStatus(t, env.do(t, http.MethodPost, "/v1/billing/checkout", token, `{"userId":"user-1"}`), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPost, "/v1/billing/checkout", token, `{"userEmail":"u9@example.com","userId":"user-9"}`), http.StatusForbidden)

	rr := env.do(t, http.MethodPost, "/v1/billing/checkout", token, `{"userEmail":"u1@example.com","userId":"user-1"}`)
	expectStatus(t, rr, http.StatusOK)
	var body struct {
		SessionID string `json:"sessionId"`
		URL       string `json:"url"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body.SessionID == "" || body.URL == "" {
		t.Fatalf("unexpected checkout response %s", rr.Body.String())
	}
	if got := len(env.modules.Plans.Checkout.Requests()); got != 1 {
		t.Fatalf("expected one checkout request, got %d", got)
	}
}

func TestStripeWebhookSignatureAndUpgrade(t *testing.T) {
	env := newTestServer(t)
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","object":"checkout.session","customer":"cus_9","metadata":{"user_id":"owner-1","user_email":"owner-1@example.com","plan":"pro"}}}}`)

	rr := postWebhook(env, payload, "")
	expectStatus(t, rr, http.StatusBadRequest)
	if !strings.Contains(rr.Body.String(), "Invalid signature") {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
	expectStatus(t, postWebhook(env, payload, stripeSignature("whsec_wrong", payload)), http.StatusBadRequest)
	if got := len(env.modules.Plans.Store.Updates()); got != 0 {
		t.Fatalf("bad signatures must not update plans, got %d", got)
	}

	rr = postWebhook(env, payload, stripeSignature(testWebhookSecret, payload))
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"received":true`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
	if got := len(env.modules.Plans.Store.Updates()); got != 1 {
		t.Fatalf("expected one plan update, got %d", got)
	}

	for i := 0; i < 2; i++ {
		expectStatus(t, env.do(t, http.MethodPost, "/v1/boards", env.token(t, "owner-1"), `{"name":"More"}`), http.StatusCreated)
	}
}

func TestStripeWebhookUpdateFailureIs500(t *testing.T) {
	env := newTestServer(t)
	env.modules.Plans.Store.FailUpdate = fmt.Errorf("rpc unavailable")
	payload := []byte(`{"id":"evt_2","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_2","object":"checkout.session","metadata":{"user_id":"owner-1","plan":"pro"}}}}`)

	rr := postWebhook(env, payload, stripeSignature(testWebhookSecret, payload))
	expectStatus(t, rr, http.StatusInternalServerError)
	if !strings.Contains(rr.Body.String(), "Database update failed") {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestStripeWebhookMissingUpdateFunctionIs500(t *testing.T) {
	env := newTestServer(t)
	env.modules.Plans.Store.FailUpdate = planerrors.ErrBillingUnavailable
	payload := []byte(`{"id":"evt_3","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_3","object":"checkout.session","metadata":{"user_id":"owner-1","plan":"pro"}}}}`)

	rr := postWebhook(env, payload, stripeSignature(testWebhookSecret, payload))
	expectStatus(t, rr, http.StatusInternalServerError)
	if !strings.Contains(rr.Body.String(), "Database update failed") {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}
