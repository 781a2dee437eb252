package httpserver

import (
	"bytes"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	planservice "fidbaq/contexts/billing/plan-service"
	planentities "fidbaq/contexts/billing/plan-service/domain/entities"
	boardservice "fidbaq/contexts/feedback/board-service"
	boardentities "fidbaq/contexts/feedback/board-service/domain/entities"
	commentservice "fidbaq/contexts/feedback/comment-service"
	commententities "fidbaq/contexts/feedback/comment-service/domain/entities"
	postservice "fidbaq/contexts/feedback/post-service"
	postentities "fidbaq/contexts/feedback/post-service/domain/entities"
	votingengine "fidbaq/contexts/feedback/voting-engine"
	voteentities "fidbaq/contexts/feedback/voting-engine/domain/entities"
	"fidbaq/internal/platform/auth"
	"fidbaq/internal/platform/messaging"
	"fidbaq/internal/platform/realtime"
)

const (
	testJWTSecret     = "test-jwt-secret"
	testWebhookSecret = "whsec_test_secret"
)

type testEnv struct {
	server   *Server
	modules  Modules
	bus      *messaging.Bus
	verifier *auth.Verifier
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.Default()
	bus := messaging.NewBus(logger)
	created := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	plans := planservice.NewInMemoryModule(map[string]planentities.Plan{"pro-owner": planentities.PlanPro}, testWebhookSecret, bus, logger)
	boards := boardservice.NewInMemoryModule([]boardentities.Board{
		{BoardID: "board-public", OwnerID: "owner-1", Name: "Roadmap", PublicLink: "roadmap-abc123", IsPublic: true, Theme: boardentities.ThemeLight, CreatedAt: created, UpdatedAt: created},
		{BoardID: "board-private", OwnerID: "owner-1", Name: "Internal", PublicLink: "internal-def456", IsPublic: false, Theme: boardentities.ThemeDark, CreatedAt: created, UpdatedAt: created},
	}, plans.Service, bus, logger)

	posts := postservice.NewInMemoryModule([]postentities.Post{
		{PostID: "post-1", BoardID: "board-public", Title: "Dark mode", Status: postentities.StatusPending, Author: postentities.Author{UserID: "user-2"}, CreatedAt: created},
	}, bus, logger)
	posts.Store.SetBoard(postentities.BoardRef{BoardID: "board-public", OwnerID: "owner-1", IsPublic: true})
	posts.Store.SetBoard(postentities.BoardRef{BoardID: "board-private", OwnerID: "owner-1", IsPublic: false})

	votes := votingengine.NewInMemoryModule(nil, bus, logger)
	votes.Store.SetPost(voteentities.PostRef{PostID: "post-1", BoardID: "board-public"})

	comments := commentservice.NewInMemoryModule([]commententities.Comment{
		{CommentID: "comment-1", PostID: "post-1", Content: "Yes please", Author: commententities.Author{UserID: "user-2", Email: "u2@example.com", Name: "U2"}, CreatedAt: created, UpdatedAt: created},
	}, bus, logger)
	comments.Store.SetPost(commententities.PostRef{PostID: "post-1", BoardID: "board-public", BoardOwnerID: "owner-1", BoardPublic: true})
	comments.Store.SetPost(commententities.PostRef{PostID: "post-private", BoardID: "board-private", BoardOwnerID: "owner-1"})

	modules := Modules{Boards: boards, Posts: posts, Votes: votes, Comments: comments, Plans: plans}
	verifier := auth.NewVerifier(testJWTSecret)
	hub := realtime.NewHub(nil, logger)
	return &testEnv{
		server:   New(modules, verifier, hub, nil, logger, ":0"),
		modules:  modules,
		bus:      bus,
		verifier: verifier,
	}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.verifier.Sign(auth.Identity{UserID: userID, Email: userID + "@example.com", Name: userID}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// do sends a request straight to the mux. An empty token sends no
// Authorization header.
func (e *testEnv) do(t *testing.T, method string, path string, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.server.mux.ServeHTTP(rr, req)
	return rr
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected %d, got %d body=%s", want, rr.Code, rr.Body.String())
	}
}
