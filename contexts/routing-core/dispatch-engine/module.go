package dispatchengine

import (
	"log/slog"
	"time"

	"archeli/contexts/routing-core/dispatch-engine/application"
	"archeli/contexts/routing-core/dispatch-engine/ports"
)

type Module struct {
	Service application.Service
}

type Dependencies struct {
	Skills         ports.SkillDirectory
	Ledger         ports.Ledger
	Clock          ports.Clock
	HandlerTimeout time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Service: application.Service{
			Skills:         deps.Skills,
			Ledger:         deps.Ledger,
			Clock:          deps.Clock,
			HandlerTimeout: deps.HandlerTimeout,
			Logger:         deps.Logger,
		},
	}
}
