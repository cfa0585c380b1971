package workorchestrator

import (
	"log/slog"

	httpadapter "archeli/contexts/routing-core/work-orchestrator/adapters/http"
	"archeli/contexts/routing-core/work-orchestrator/application"
	"archeli/contexts/routing-core/work-orchestrator/ports"
)

type Module struct {
	Service *application.Service
	Handler httpadapter.Handler
}

type Dependencies struct {
	Matcher     ports.Matcher
	Dispatcher  ports.Dispatcher
	Ledger      ports.Ledger
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.NewService(
		deps.Matcher,
		deps.Dispatcher,
		deps.Ledger,
		deps.Clock,
		deps.IDGenerator,
		deps.Logger,
	)
	return Module{
		Service: service,
		Handler: httpadapter.Handler{Orchestrator: service, Logger: deps.Logger},
	}
}
