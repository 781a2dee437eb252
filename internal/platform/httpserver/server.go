package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	planservice "fidbaq/contexts/billing/plan-service"
	boardservice "fidbaq/contexts/feedback/board-service"
	commentservice "fidbaq/contexts/feedback/comment-service"
	postservice "fidbaq/contexts/feedback/post-service"
	votingengine "fidbaq/contexts/feedback/voting-engine"
	"fidbaq/internal/platform/auth"
	_ "fidbaq/internal/platform/httpserver/docs"
	"fidbaq/internal/platform/realtime"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	maxJSONBodyBytes    = 64 << 10
	maxWebhookBodyBytes = 1 << 20
	shutdownTimeout     = 10 * time.Second
)

type Modules struct {
	Boards   boardservice.Module
	Posts    postservice.Module
	Votes    votingengine.Module
	Comments commentservice.Module
	Plans    planservice.Module
}

type Server struct {
	mux     *http.ServeMux
	handler http.Handler
	logger  *slog.Logger
	addr    string
	auth    *auth.Verifier
	hub     *realtime.Hub
	modules Modules
}

func New(
	modules Modules,
	verifier *auth.Verifier,
	hub *realtime.Hub,
	allowedOrigins []string,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		auth:    verifier,
		hub:     hub,
		modules: modules,
	}
	s.registerRoutes()
	s.handler = cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(s.mux)
	return s
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting",
			"event", "http_server_starting",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"addr", s.addr,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /v1/boards", s.handleListBoards)
	s.mux.HandleFunc("POST /v1/boards", s.handleCreateBoard)
	s.mux.HandleFunc("GET /v1/boards/{board_id}", s.handleGetBoard)
	s.mux.HandleFunc("PATCH /v1/boards/{board_id}", s.handleUpdateBoard)
	s.mux.HandleFunc("DELETE /v1/boards/{board_id}", s.handleDeleteBoard)
	s.mux.HandleFunc("GET /v1/public/boards/{public_link}", s.handleGetPublicBoard)
	s.mux.HandleFunc("GET /v1/boards/{board_id}/ws", s.handleBoardSocket)

	s.mux.HandleFunc("GET /v1/boards/{board_id}/posts", s.handleListPosts)
	s.mux.HandleFunc("POST /v1/boards/{board_id}/posts", s.handleCreatePost)
	s.mux.HandleFunc("PATCH /v1/posts/{post_id}/status", s.handleUpdatePostStatus)
	s.mux.HandleFunc("DELETE /v1/posts/{post_id}", s.handleDeletePost)

	s.mux.HandleFunc("POST /v1/posts/{post_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /v1/posts/{post_id}/votes", s.handlePostVotes)
	s.mux.HandleFunc("GET /v1/posts/{post_id}/votes/me", s.handleUserVote)

	s.mux.HandleFunc("GET /v1/posts/{post_id}/comments", s.handleListComments)
	s.mux.HandleFunc("POST /v1/posts/{post_id}/comments", s.handleCreateComment)
	s.mux.HandleFunc("PATCH /v1/comments/{comment_id}", s.handleUpdateComment)
	s.mux.HandleFunc("DELETE /v1/comments/{comment_id}", s.handleDeleteComment)

	s.mux.HandleFunc("GET /v1/me/plan", s.handleMyPlan)
	s.mux.HandleFunc("POST /v1/billing/checkout", s.handleCheckout)
	s.mux.HandleFunc("POST /webhooks/stripe", s.handleStripeWebhook)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorWriter func(w http.ResponseWriter, status int, code string, message string)

// identity resolves the caller from the Authorization header, or from the
// access_token query parameter on requests that cannot set headers. A missing
// token is anonymous unless required; a present but invalid one is always
// rejected.
func (s *Server) identity(w http.ResponseWriter, r *http.Request, required bool, fail errorWriter) (auth.Identity, bool) {
	header := r.Header.Get("Authorization")
	if strings.TrimSpace(header) == "" && r.URL.Query().Get("access_token") != "" {
		header = "Bearer " + r.URL.Query().Get("access_token")
	}
	if s.auth == nil {
		if required || strings.TrimSpace(header) != "" {
			fail(w, http.StatusUnauthorized, "unauthorized", "authentication is not configured")
			return auth.Identity{}, false
		}
		return auth.Identity{}, true
	}

	identity, err := s.auth.Verify(header)
	switch {
	case err == nil:
		return identity, true
	case errors.Is(err, auth.ErrMissingToken) && !required:
		return auth.Identity{}, true
	case errors.Is(err, auth.ErrMissingToken):
		fail(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
	default:
		s.logger.Warn("bearer token rejected",
			"event", "http_auth_rejected",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"path", r.URL.Path,
			"error", err.Error(),
		)
		fail(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is invalid")
	}
	return auth.Identity{}, false
}

func (s *Server) requireIdentity(w http.ResponseWriter, r *http.Request, fail errorWriter) (auth.Identity, bool) {
	return s.identity(w, r, true, fail)
}

func (s *Server) optionalIdentity(w http.ResponseWriter, r *http.Request, fail errorWriter) (auth.Identity, bool) {
	return s.identity(w, r, false, fail)
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, fail errorWriter) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes))
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
