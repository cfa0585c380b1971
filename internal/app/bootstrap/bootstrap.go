package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	evidenceledger "archeli/contexts/audit-ledger/evidence-ledger"
	"archeli/contexts/audit-ledger/evidence-ledger/adapters/jsonl"
	sqliteadapter "archeli/contexts/audit-ledger/evidence-ledger/adapters/sqlite"
	ledgerworkers "archeli/contexts/audit-ledger/evidence-ledger/application/workers"
	skillregistry "archeli/contexts/capability-runtime/skill-registry"
	dispatchengine "archeli/contexts/routing-core/dispatch-engine"
	ruleengine "archeli/contexts/routing-core/rule-engine"
	workorchestrator "archeli/contexts/routing-core/work-orchestrator"
	orchworkers "archeli/contexts/routing-core/work-orchestrator/application/workers"
	"archeli/internal/platform/config"
	"archeli/internal/platform/db"
	"archeli/internal/platform/httpserver"
	"archeli/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server       *httpserver.Server
	sqlite       *db.SQLite
	reloader     *orchworkers.RuleReloader
	pollInterval time.Duration
	logger       *slog.Logger
}

type WorkerApp struct {
	sqlite       *db.SQLite
	relay        ledgerworkers.OutcomeRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.DBPath) == "" {
		return nil, errors.New("DB_PATH is required")
	}

	sqlite, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.AutoMigrate(sqlite.DB); err != nil {
		return nil, err
	}

	repo := sqliteadapter.NewRepository(sqlite.DB, logger)
	ledgerModule := evidenceledger.NewModule(evidenceledger.Dependencies{
		Repository:    repo,
		Trail:         &jsonl.Trail{Dir: cfg.EvidenceDir},
		Clock:         sqliteadapter.SystemClock{},
		IDGenerator:   sqliteadapter.UUIDGenerator{},
		SourceService: cfg.ServiceName,
		Logger:        logger,
	})

	ruleModule := ruleengine.NewModule(ruleengine.Dependencies{
		RulesPath: cfg.RoutingRulesPath,
		Logger:    logger,
	})
	if _, err := ruleModule.Service.Reload(); err != nil {
		// Until a valid rule file appears, submitted items fail as
		// not-configured; the reload poller keeps trying.
		logger.Warn("initial rule load failed, starting without a snapshot",
			"event", "bootstrap_rule_load_failed",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"path", cfg.RoutingRulesPath,
			"error", err.Error(),
		)
	}

	skillModule, err := skillregistry.NewModule(skillregistry.Dependencies{
		SkillsDir:  cfg.SkillsDir,
		Policy:     cfg.AdmissionPolicy,
		QueueDepth: cfg.AdmissionQueueDepth,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	dispatchModule := dispatchengine.NewModule(dispatchengine.Dependencies{
		Skills:         skillDirectory{registry: skillModule.Service},
		Ledger:         attemptLedger{ledger: ledgerModule.Service},
		Clock:          sqliteadapter.SystemClock{},
		HandlerTimeout: cfg.HandlerTimeout,
		Logger:         logger,
	})

	orchestratorModule := workorchestrator.NewModule(workorchestrator.Dependencies{
		Matcher:     ruleMatcher{rules: ruleModule.Service},
		Dispatcher:  dispatchRunner{service: dispatchModule.Service},
		Ledger:      outcomeLedger{ledger: ledgerModule.Service},
		Clock:       sqliteadapter.SystemClock{},
		IDGenerator: sqliteadapter.UUIDGenerator{},
		Logger:      logger,
	})

	server := httpserver.New(
		orchestratorModule,
		ruleModule,
		skillModule,
		ledgerModule,
		logger,
		normalizeAddr(cfg.HTTPPort),
		cfg.APIKey,
	)
	return &APIApp{
		server: server,
		sqlite: sqlite,
		reloader: &orchworkers.RuleReloader{
			Path:   cfg.RoutingRulesPath,
			Rules:  snapshotReloader{rules: ruleModule.Service},
			Logger: logger,
		},
		pollInterval: cfg.RuleReloadInterval,
		logger:       logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.DBPath) == "" {
		return nil, errors.New("DB_PATH is required")
	}

	sqlite, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.AutoMigrate(sqlite.DB); err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	repo := sqliteadapter.NewRepository(sqlite.DB, logger)

	return &WorkerApp{
		sqlite: sqlite,
		relay: ledgerworkers.OutcomeRelay{
			Outbox:    repo,
			Publisher: bus,
			Clock:     sqliteadapter.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

// Run serves HTTP and keeps the rule snapshot fresh from the rule file.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	go func() {
		interval := a.pollInterval
		if interval <= 0 {
			interval = 5 * time.Second
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = a.reloader.RunOnce(ctx)
			}
		}
	}()

	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.sqlite != nil {
		return a.sqlite.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.relay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.sqlite != nil {
		return w.sqlite.Close()
	}
	return nil
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
