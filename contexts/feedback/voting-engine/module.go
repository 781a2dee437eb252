package votingengine

import (
	"log/slog"

	httpadapter "fidbaq/contexts/feedback/voting-engine/adapters/http"
	"fidbaq/contexts/feedback/voting-engine/adapters/memory"
	"fidbaq/contexts/feedback/voting-engine/application/commands"
	"fidbaq/contexts/feedback/voting-engine/application/queries"
	"fidbaq/contexts/feedback/voting-engine/application/workers"
	"fidbaq/contexts/feedback/voting-engine/domain/entities"
	"fidbaq/contexts/feedback/voting-engine/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Reconciler workers.CounterReconciler
	Store      *memory.Store
}

type Dependencies struct {
	Votes     ports.VoteRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	voteUseCase := commands.VoteUseCase{
		Votes:     deps.Votes,
		Publisher: deps.Publisher,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Votes:   voteUseCase,
			Queries: queries.VoteQueries{Votes: deps.Votes},
			Logger:  deps.Logger,
		},
		Reconciler: workers.CounterReconciler{
			Votes:  deps.Votes,
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Vote, publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Votes:     store,
		Publisher: publisher,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
