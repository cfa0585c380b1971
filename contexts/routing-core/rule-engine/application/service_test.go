package application

import (
	"errors"
	"testing"
	"time"

	"archeli/contexts/routing-core/rule-engine/domain/entities"
	domainerrors "archeli/contexts/routing-core/rule-engine/domain/errors"
	"archeli/contexts/routing-core/rule-engine/ports"
)

type stubSource struct {
	rules []entities.Rule
	err   error
}

func (s stubSource) Load(string) ([]entities.Rule, error) {
	return s.rules, s.err
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func leaf(field, op string, value any) entities.Predicate {
	return entities.Predicate{Field: field, Op: op, Value: value}
}

func TestCurrentBeforeFirstLoadIsNotConfigured(t *testing.T) {
	service := NewService(stubSource{}, "rules.yaml", fixedClock{}, nil)
	if _, err := service.Current(); !errors.Is(err, domainerrors.ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
	if _, err := service.Match(ports.WorkItem{ID: "i1"}); !errors.Is(err, domainerrors.ErrNotConfigured) {
		t.Fatalf("expected match to surface not configured, got %v", err)
	}
}

func TestFailedReloadKeepsLastKnownGood(t *testing.T) {
	good := stubSource{rules: []entities.Rule{
		{ID: "r1", Priority: 1, Targets: []string{"skill-a"}, Enabled: true, Predicate: leaf("kind", entities.OpEq, "text")},
	}}
	service := NewService(good, "rules.yaml", fixedClock{now: time.Unix(100, 0)}, nil)
	if _, err := service.Reload(); err != nil {
		t.Fatalf("initial reload: %v", err)
	}
	before, _ := service.Current()

	service.Source = stubSource{err: domainerrors.ErrValidation}
	if _, err := service.Reload(); !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	after, err := service.Current()
	if err != nil {
		t.Fatalf("current after failed reload: %v", err)
	}
	if after != before {
		t.Fatalf("failed reload must not replace the current snapshot")
	}
	if after.Version != 1 {
		t.Fatalf("expected version 1, got %d", after.Version)
	}
}

func TestReloadVersionsAreMonotonic(t *testing.T) {
	source := stubSource{rules: []entities.Rule{
		{ID: "r1", Priority: 1, Targets: []string{"a"}, Enabled: true, Predicate: leaf("kind", entities.OpExists, nil)},
	}}
	service := NewService(source, "rules.yaml", fixedClock{now: time.Unix(100, 0)}, nil)

	var last uint64
	for i := 0; i < 3; i++ {
		info, err := service.Reload()
		if err != nil {
			t.Fatalf("reload %d: %v", i, err)
		}
		if info.Version <= last {
			t.Fatalf("versions must increase: %d after %d", info.Version, last)
		}
		last = info.Version
	}
}

func TestMatchOrdersByPriorityAndKeepsTieFileOrder(t *testing.T) {
	source := stubSource{rules: []entities.Rule{
		{ID: "late", Priority: 5, Targets: []string{"skill-c"}, Enabled: true, Predicate: leaf("kind", entities.OpEq, "text")},
		{ID: "first", Priority: 1, Targets: []string{"skill-a"}, Enabled: true, Predicate: leaf("kind", entities.OpEq, "text")},
		{ID: "tie", Priority: 1, Targets: []string{"skill-b"}, Enabled: true, Predicate: leaf("kind", entities.OpEq, "text")},
		{ID: "disabled", Priority: 0, Targets: []string{"skill-x"}, Enabled: false, Predicate: leaf("kind", entities.OpEq, "text")},
		{ID: "miss", Priority: 0, Targets: []string{"skill-y"}, Enabled: true, Predicate: leaf("kind", entities.OpEq, "image")},
	}}
	service := NewService(source, "rules.yaml", fixedClock{now: time.Unix(100, 0)}, nil)
	if _, err := service.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	candidates, err := service.Match(ports.WorkItem{ID: "i1", Kind: "text"})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	got := make([]string, 0, len(candidates))
	for _, c := range candidates {
		got = append(got, c.SkillID)
	}
	want := []string{"skill-a", "skill-b", "skill-c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if candidates[0].RuleID != "first" {
		t.Fatalf("primary candidate must come from the highest-priority firing rule")
	}
}

func TestMatchNoFiringRulesReturnsEmptyList(t *testing.T) {
	source := stubSource{rules: []entities.Rule{
		{ID: "r1", Priority: 1, Targets: []string{"a"}, Enabled: true, Predicate: leaf("kind", entities.OpEq, "text")},
	}}
	service := NewService(source, "rules.yaml", fixedClock{now: time.Unix(100, 0)}, nil)
	if _, err := service.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	candidates, err := service.Match(ports.WorkItem{ID: "i1", Kind: "audio"})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected empty candidate list, got %v", candidates)
	}
}

func TestInFlightEvaluationUsesCapturedSnapshot(t *testing.T) {
	source := stubSource{rules: []entities.Rule{
		{ID: "r1", Priority: 1, Targets: []string{"old"}, Enabled: true, Predicate: leaf("kind", entities.OpEq, "text")},
	}}
	service := NewService(source, "rules.yaml", fixedClock{now: time.Unix(100, 0)}, nil)
	if _, err := service.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	captured, _ := service.Current()

	service.Source = stubSource{rules: []entities.Rule{
		{ID: "r1", Priority: 1, Targets: []string{"new"}, Enabled: true, Predicate: leaf("kind", entities.OpEq, "text")},
	}}
	if _, err := service.Reload(); err != nil {
		t.Fatalf("second reload: %v", err)
	}

	candidates := MatchSnapshot(ports.WorkItem{ID: "i1", Kind: "text"}, captured)
	if len(candidates) != 1 || candidates[0].SkillID != "old" {
		t.Fatalf("captured snapshot must keep serving the old rules, got %v", candidates)
	}
}
