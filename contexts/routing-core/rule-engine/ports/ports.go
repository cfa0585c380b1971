package ports

import (
	"time"

	"archeli/contexts/routing-core/rule-engine/domain/entities"
)

// WorkItem is the matcher's view of an incoming item.
type WorkItem struct {
	ID      string
	Kind    string
	Payload map[string]any
}

// Candidate is one firing rule's target, in match order.
type Candidate struct {
	RuleID   string
	SkillID  string
	Priority int
	Score    float64
}

type SnapshotInfo struct {
	Version   uint64
	LoadedAt  time.Time
	RuleCount int
	Enabled   int
}

// RuleSource loads and validates a rule set from its declarative source.
type RuleSource interface {
	Load(path string) ([]entities.Rule, error)
}

type Clock interface {
	Now() time.Time
}
