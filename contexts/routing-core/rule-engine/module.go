package ruleengine

import (
	"log/slog"

	fileadapter "archeli/contexts/routing-core/rule-engine/adapters/file"
	httpadapter "archeli/contexts/routing-core/rule-engine/adapters/http"
	"archeli/contexts/routing-core/rule-engine/application"
	"archeli/contexts/routing-core/rule-engine/ports"
)

type Module struct {
	Service *application.Service
	Handler httpadapter.Handler
}

type Dependencies struct {
	Source    ports.RuleSource
	RulesPath string
	Clock     ports.Clock
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	source := deps.Source
	if source == nil {
		source = fileadapter.Loader{}
	}
	service := application.NewService(source, deps.RulesPath, deps.Clock, deps.Logger)
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Rules:  service,
			Logger: deps.Logger,
		},
	}
}
