package entities

import "time"

// Rule maps a predicate over work item fields to one or more target skills.
// Lower priority value means higher precedence; ties keep file order.
type Rule struct {
	ID        string
	Priority  int
	Targets   []string
	Enabled   bool
	Predicate Predicate
}

// Snapshot is an immutable view of the rule set as of one load.
// Rules are sorted ascending by priority, stable within ties.
type Snapshot struct {
	Version  uint64
	LoadedAt time.Time
	Rules    []Rule
}

func (s *Snapshot) EnabledCount() int {
	count := 0
	for _, rule := range s.Rules {
		if rule.Enabled {
			count++
		}
	}
	return count
}
