package application

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"archeli/contexts/routing-core/rule-engine/domain/entities"
	domainerrors "archeli/contexts/routing-core/rule-engine/domain/errors"
	"archeli/contexts/routing-core/rule-engine/ports"
)

// Service owns the current rule snapshot and evaluates items against it.
// Publication is a single-writer atomic pointer swap: readers always see a
// complete snapshot, and a failed load never replaces last-known-good.
type Service struct {
	Source ports.RuleSource
	Path   string
	Clock  ports.Clock
	Logger *slog.Logger

	mu      sync.Mutex
	version atomic.Uint64
	current atomic.Pointer[entities.Snapshot]
}

func NewService(source ports.RuleSource, path string, clock ports.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Source: source,
		Path:   path,
		Clock:  clock,
		Logger: logger,
	}
}

// Reload loads the rule source and publishes a new snapshot.
// On failure the current snapshot is retained and the error returned.
func (s *Service) Reload() (ports.SnapshotInfo, error) {
	rules, err := s.Source.Load(s.Path)
	if err != nil {
		s.Logger.Error("rule set load rejected",
			"event", "rule_engine_load_rejected",
			"module", "routing-core/rule-engine",
			"layer", "application",
			"path", s.Path,
			"error", err.Error(),
		)
		return ports.SnapshotInfo{}, fmt.Errorf("load rule set: %w", err)
	}

	ordered := append([]entities.Rule(nil), rules...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := &entities.Snapshot{
		Version:  s.version.Add(1),
		LoadedAt: s.now(),
		Rules:    ordered,
	}
	s.current.Store(snapshot)

	s.Logger.Info("rule snapshot published",
		"event", "rule_engine_snapshot_published",
		"module", "routing-core/rule-engine",
		"layer", "application",
		"version", snapshot.Version,
		"rule_count", len(snapshot.Rules),
	)
	return snapshotInfo(snapshot), nil
}

// Current returns the latest successfully published snapshot.
func (s *Service) Current() (*entities.Snapshot, error) {
	snapshot := s.current.Load()
	if snapshot == nil {
		return nil, domainerrors.ErrNotConfigured
	}
	return snapshot, nil
}

func (s *Service) Info() (ports.SnapshotInfo, error) {
	snapshot, err := s.Current()
	if err != nil {
		return ports.SnapshotInfo{}, err
	}
	return snapshotInfo(snapshot), nil
}

// Match evaluates enabled rules in priority order against the item and
// returns every firing rule's targets. First entry is the primary candidate;
// an empty result means the item is unroutable.
func (s *Service) Match(item ports.WorkItem) ([]ports.Candidate, error) {
	snapshot, err := s.Current()
	if err != nil {
		return nil, err
	}
	return MatchSnapshot(item, snapshot), nil
}

// MatchSnapshot evaluates against an explicitly captured snapshot, so
// in-flight evaluations are unaffected by concurrent reloads.
func MatchSnapshot(item ports.WorkItem, snapshot *entities.Snapshot) []ports.Candidate {
	doc := map[string]any{
		"id":      item.ID,
		"kind":    item.Kind,
		"payload": item.Payload,
	}

	candidates := make([]ports.Candidate, 0)
	for _, rule := range snapshot.Rules {
		if !rule.Enabled {
			continue
		}
		if !rule.Predicate.Eval(doc) {
			continue
		}
		score := float64(rule.Predicate.LeafCount())
		for _, target := range rule.Targets {
			candidates = append(candidates, ports.Candidate{
				RuleID:   rule.ID,
				SkillID:  target,
				Priority: rule.Priority,
				Score:    score,
			})
		}
	}
	return candidates
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func snapshotInfo(snapshot *entities.Snapshot) ports.SnapshotInfo {
	return ports.SnapshotInfo{
		Version:   snapshot.Version,
		LoadedAt:  snapshot.LoadedAt,
		RuleCount: len(snapshot.Rules),
		Enabled:   snapshot.EnabledCount(),
	}
}
