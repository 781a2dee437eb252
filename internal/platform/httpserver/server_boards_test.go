package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fidbaq/internal/shared/events"

	"github.com/gorilla/websocket"
)

func TestHealthz(t *testing.T) {
	env := newTestServer(t)
	expectStatus(t, env.do(t, http.MethodGet, "/healthz", "", ""), http.StatusOK)
}

func TestListBoardsRequiresAuthorization(t *testing.T) {
	env := newTestServer(t)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/boards", "", ""), http.StatusUnauthorized)

	rr := env.do(t, http.MethodGet, "/v1/boards", env.token(t, "owner-1"), "")
	expectStatus(t, rr, http.StatusOK)
	var body struct {
		Items []struct {
			BoardID string `json:"board_id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 2 {
		t.Fatalf("expected both owner boards, got %+v", body.Items)
	}
}

func TestInvalidTokenOnOptionalRouteIsRejected(t *testing.T) {
	env := newTestServer(t)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/boards/board-public", "not-a-jwt", ""), http.StatusUnauthorized)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/boards/board-public", "", ""), http.StatusOK)
}

func TestPrivateBoardHiddenFromOtherViewers(t *testing.T) {
	env := newTestServer(t)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/boards/board-private", "", ""), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/boards/board-private", env.token(t, "user-2"), ""), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/boards/board-private", env.token(t, "owner-1"), ""), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/public/boards/internal-def456", "", ""), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/public/boards/roadmap-abc123", "", ""), http.StatusOK)
}

func TestCreateBoardGatedByPlan(t *testing.T) {
	env := newTestServer(t)
	token := env.token(t, "owner-2")
	for i := 0; i < 3; i++ {
		expectStatus(t, env.do(t, http.MethodPost, "/v1/boards", token, `{"name":"My Board!!"}`), http.StatusCreated)
	}
	rr := env.do(t, http.MethodPost, "/v1/boards", token, `{"name":"My Board!!"}`)
	expectStatus(t, rr, http.StatusPaymentRequired)
	if !strings.Contains(rr.Body.String(), "plan_limit_reached") {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}

	pro := env.token(t, "pro-owner")
	for i := 0; i < 4; i++ {
		expectStatus(t, env.do(t, http.MethodPost, "/v1/boards", pro, `{"name":"Unlimited"}`), http.StatusCreated)
	}
}

func TestCreateBoardReturnsSluggedLink(t *testing.T) {
	env := newTestServer(t)
	rr := env.do(t, http.MethodPost, "/v1/boards", env.token(t, "owner-2"), `{"name":"My Board!!","theme":"dark"}`)
	expectStatus(t, rr, http.StatusCreated)
	var body struct {
		Data struct {
			PublicLink string `json:"public_link"`
			Theme      string `json:"theme"`
			IsPublic   bool   `json:"is_public"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(body.Data.PublicLink, "my-board-") || len(body.Data.PublicLink) != len("my-board-")+6 {
		t.Fatalf("unexpected public link %q", body.Data.PublicLink)
	}
	if body.Data.Theme != "dark" || !body.Data.IsPublic {
		t.Fatalf("unexpected board %+v", body.Data)
	}
}

func TestUpdateAndDeleteBoardOwnerOnly(t *testing.T) {
	env := newTestServer(t)
	expectStatus(t, env.do(t, http.MethodPatch, "/v1/boards/board-public", env.token(t, "user-2"), `{"name":"Hijacked"}`), http.StatusForbidden)
	expectStatus(t, env.do(t, http.MethodDelete, "/v1/boards/board-private", env.token(t, "user-2"), ""), http.StatusNotFound)

	rr := env.do(t, http.MethodPatch, "/v1/boards/board-public", env.token(t, "owner-1"), `{"name":"Public roadmap"}`)
	expectStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"public_link":"roadmap-abc123"`) {
		t.Fatalf("rename must keep the public link: %s", rr.Body.String())
	}
	expectStatus(t, env.do(t, http.MethodDelete, "/v1/boards/board-public", env.token(t, "owner-1"), ""), http.StatusNoContent)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/boards/board-public", "", ""), http.StatusNotFound)
}

func TestMalformedJSONIsRejected(t *testing.T) {
	env := newTestServer(t)
	expectStatus(t, env.do(t, http.MethodPost, "/v1/boards", env.token(t, "owner-2"), `{"name":`), http.StatusBadRequest)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/boards", nil)
	req.Header.Set("Origin", "https://app.fidbaq.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rr := httptest.NewRecorder()
	env.server.handler.ServeHTTP(rr, req)

	if rr.Code >= 300 {
		t.Fatalf("preflight failed with %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestBoardSocketStreamsNotifications(t *testing.T) {
	env := newTestServer(t)
	expectStatus(t, env.do(t, http.MethodGet, "/v1/boards/board-private/ws", "", ""), http.StatusNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = env.server.hub.Run(ctx, env.bus) }()
	deadline := time.Now().Add(time.Second)
	for env.bus.SubscriberCount(events.TopicVoteCast) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("hub did not subscribe")
		}
		time.Sleep(5 * time.Millisecond)
	}

	srv := httptest.NewServer(env.server.handler)
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/boards/board-public/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	deadline = time.Now().Add(time.Second)
	for env.server.hub.ClientCount("board-public") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("socket was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/v1/posts/post-1/votes", env.token(t, "user-1"), ""), http.StatusOK)

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got events.Envelope
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.EventType != events.TopicVoteCast || got.BoardID != "board-public" || got.Level != events.LevelSuccess {
		t.Fatalf("unexpected envelope %+v", got)
	}
}
