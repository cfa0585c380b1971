package workers

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// SnapshotReloader triggers a rule snapshot reload through the atomic
// publish contract; a failed reload leaves the current snapshot in place.
type SnapshotReloader interface {
	Reload() error
}

// RuleReloader polls the rule file's modification time and reloads the
// snapshot when it changes. The first observation only records the baseline;
// the initial load happens at bootstrap.
type RuleReloader struct {
	Path   string
	Rules  SnapshotReloader
	Logger *slog.Logger

	lastModTime time.Time
	primed      bool
}

func (r *RuleReloader) RunOnce(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(r.Path)
	if err != nil {
		r.logger().Warn("rule file stat failed",
			"event", "orchestrator_rule_file_stat_failed",
			"module", "routing-core/work-orchestrator",
			"layer", "worker",
			"path", r.Path,
			"error", err.Error(),
		)
		return err
	}

	modTime := info.ModTime()
	if !r.primed {
		r.lastModTime = modTime
		r.primed = true
		return nil
	}
	if modTime.Equal(r.lastModTime) {
		return nil
	}

	if err := r.Rules.Reload(); err != nil {
		r.logger().Error("rule snapshot reload failed, keeping current snapshot",
			"event", "orchestrator_rule_reload_failed",
			"module", "routing-core/work-orchestrator",
			"layer", "worker",
			"path", r.Path,
			"error", err.Error(),
		)
		return err
	}

	r.lastModTime = modTime
	r.logger().Info("rule snapshot reloaded",
		"event", "orchestrator_rule_reloaded",
		"module", "routing-core/work-orchestrator",
		"layer", "worker",
		"path", r.Path,
	)
	return nil
}

func (r *RuleReloader) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
