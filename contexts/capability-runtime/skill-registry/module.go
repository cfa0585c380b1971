package skillregistry

import (
	"fmt"
	"log/slog"

	"archeli/contexts/capability-runtime/skill-registry/adapters/builtin"
	httpadapter "archeli/contexts/capability-runtime/skill-registry/adapters/http"
	"archeli/contexts/capability-runtime/skill-registry/adapters/loader"
	"archeli/contexts/capability-runtime/skill-registry/application"
	"archeli/contexts/capability-runtime/skill-registry/ports"
)

type Module struct {
	Service *application.Service
	Handler httpadapter.Handler
}

type Dependencies struct {
	SkillsDir  string
	Clock      ports.Clock
	Policy     string
	QueueDepth int
	Logger     *slog.Logger
}

// NewModule builds the registry, seeds the builtins, and registers every
// manifest found in the skills directory. Manifests override the default
// builtin descriptors when they share an id.
func NewModule(deps Dependencies) (Module, error) {
	service := application.NewService(deps.Clock, deps.Logger, deps.Policy, deps.QueueDepth)

	builtins := builtin.Handlers()
	skills, err := loader.Loader{Builtins: builtins}.LoadDir(deps.SkillsDir)
	if err != nil {
		return Module{}, fmt.Errorf("load skills dir: %w", err)
	}
	for _, skill := range skills {
		if err := service.Register(skill.Descriptor, skill.Handler); err != nil {
			return Module{}, fmt.Errorf("register skill %q from %s: %w", skill.Descriptor.ID, skill.Path, err)
		}
	}

	for _, descriptor := range builtin.Descriptors() {
		if _, err := service.Resolve(descriptor.ID); err == nil {
			continue // manifest already claimed this id
		}
		if err := service.Register(descriptor, builtins[descriptor.ID]); err != nil {
			return Module{}, fmt.Errorf("register builtin %q: %w", descriptor.ID, err)
		}
	}

	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Registry: service,
			Logger:   deps.Logger,
		},
	}, nil
}
