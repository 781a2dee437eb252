package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	planservice "fidbaq/contexts/billing/plan-service"
	planpostgres "fidbaq/contexts/billing/plan-service/adapters/postgres"
	planstripe "fidbaq/contexts/billing/plan-service/adapters/stripe"
	planports "fidbaq/contexts/billing/plan-service/ports"
	boardservice "fidbaq/contexts/feedback/board-service"
	boardpostgres "fidbaq/contexts/feedback/board-service/adapters/postgres"
	commentservice "fidbaq/contexts/feedback/comment-service"
	commentpostgres "fidbaq/contexts/feedback/comment-service/adapters/postgres"
	postservice "fidbaq/contexts/feedback/post-service"
	postpostgres "fidbaq/contexts/feedback/post-service/adapters/postgres"
	votingengine "fidbaq/contexts/feedback/voting-engine"
	votepostgres "fidbaq/contexts/feedback/voting-engine/adapters/postgres"
	"fidbaq/contexts/feedback/voting-engine/application/workers"
	"fidbaq/internal/platform/auth"
	"fidbaq/internal/platform/config"
	"fidbaq/internal/platform/db"
	"fidbaq/internal/platform/httpserver"
	"fidbaq/internal/platform/messaging"
	"fidbaq/internal/platform/realtime"

	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	hub      *realtime.Hub
	bus      *messaging.Bus
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres   *db.Postgres
	reconciler workers.CounterReconciler
	interval   time.Duration
	logger     *slog.Logger
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if strings.TrimSpace(cfg.AuthJWTSecret) == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}

	pg, err := connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)

	planRepo := planpostgres.NewRepository(pg.DB, logger)
	var checkout planports.CheckoutGateway
	if strings.TrimSpace(cfg.StripeSecretKey) != "" {
		checkout = planstripe.NewGateway(cfg.StripeSecretKey, "", logger)
	} else {
		logger.Warn("stripe secret key missing, checkout disabled",
			"event", "bootstrap_checkout_disabled",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	plans := planservice.NewModule(planservice.Dependencies{
		Plans:          planRepo,
		Checkout:       checkout,
		Webhooks:       planstripe.NewVerifier(cfg.StripeWebhookSecret),
		Publisher:      bus,
		Clock:          planRepo,
		IDGen:          planRepo,
		Logger:         logger,
		FreeBoardLimit: cfg.FreeBoardLimit,
		PublicURL:      cfg.PublicURL,
	})

	boardRepo := boardpostgres.NewRepository(pg.DB, logger)
	boards := boardservice.NewModule(boardservice.Dependencies{
		Repository: boardRepo,
		Plans:      plans.Service,
		Publisher:  bus,
		Clock:      boardRepo,
		IDGen:      boardRepo,
		Logger:     logger,
	})

	postRepo := postpostgres.NewRepository(pg.DB, logger)
	posts := postservice.NewModule(postservice.Dependencies{
		Repository: postRepo,
		Publisher:  bus,
		Clock:      postRepo,
		IDGen:      postRepo,
		Logger:     logger,
	})

	voteRepo := votepostgres.NewRepository(pg.DB, logger)
	votes := votingengine.NewModule(votingengine.Dependencies{
		Votes:     voteRepo,
		Publisher: bus,
		Clock:     voteRepo,
		IDGen:     voteRepo,
		Logger:    logger,
	})

	commentRepo := commentpostgres.NewRepository(pg.DB, logger)
	comments := commentservice.NewModule(commentservice.Dependencies{
		Repository: commentRepo,
		Publisher:  bus,
		Clock:      commentRepo,
		IDGen:      commentRepo,
		Logger:     logger,
	})

	hub := realtime.NewHub(cfg.CORSAllowedOrigins, logger)
	server := httpserver.New(
		httpserver.Modules{
			Boards:   boards,
			Posts:    posts,
			Votes:    votes,
			Comments: comments,
			Plans:    plans,
		},
		auth.NewVerifier(cfg.AuthJWTSecret),
		hub,
		cfg.CORSAllowedOrigins,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		hub:      hub,
		bus:      bus,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	votes := votingengine.NewModule(votingengine.Dependencies{
		Votes:  votepostgres.NewRepository(pg.DB, logger),
		Logger: logger,
	})
	return &WorkerApp{
		postgres:   pg,
		reconciler: votes.Reconciler,
		interval:   cfg.ReconcileInterval,
		logger:     logger,
	}, nil
}

// Run serves HTTP and fans bus events out to websocket clients. Either
// stopping stops both.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.hub.Run(groupCtx, a.bus)
	})
	group.Go(func() error {
		return a.server.Run(groupCtx)
	})
	return group.Wait()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	interval := w.interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"reconcile_interval", interval.String(),
	)

	for {
		if _, err := w.reconciler.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("vote counter reconciliation failed",
				"event", "bootstrap_worker_reconcile_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func newLogger(cfg config.Config, process string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})).
		With("service", cfg.ServiceName, "process", process)
	slog.SetDefault(logger)
	return logger
}

func connect(ctx context.Context, cfg config.Config, logger *slog.Logger) (*db.Postgres, error) {
	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		logger.Info("schema guards applied",
			"event", "bootstrap_schema_guards_applied",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return pg, nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
