package evidenceledger

import (
	"log/slog"

	httpadapter "archeli/contexts/audit-ledger/evidence-ledger/adapters/http"
	"archeli/contexts/audit-ledger/evidence-ledger/adapters/memory"
	sqliteadapter "archeli/contexts/audit-ledger/evidence-ledger/adapters/sqlite"
	"archeli/contexts/audit-ledger/evidence-ledger/application"
	"archeli/contexts/audit-ledger/evidence-ledger/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository    ports.Repository
	Trail         ports.AuditTrail
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	SourceService string
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:          deps.Repository,
		Trail:         deps.Trail,
		Clock:         deps.Clock,
		IDGen:         deps.IDGenerator,
		SourceService: deps.SourceService,
		Logger:        deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Ledger: service,
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:    store,
		Clock:         sqliteadapter.SystemClock{},
		IDGenerator:   sqliteadapter.UUIDGenerator{},
		SourceService: "archeli",
		Logger:        logger,
	})
	module.Store = store
	return module
}
