package ports

import (
	"context"
	"time"
)

// WorkItem is the payload handed to the matcher and dispatcher.
type WorkItem struct {
	ID      string
	Kind    string
	Payload map[string]any
	Attempt int
}

// Candidate is one firing rule's target, in match order.
type Candidate struct {
	RuleID   string
	SkillID  string
	Priority int
	Score    float64
}

// Outcome is the terminal result of one attempt as the ledger records it.
type Outcome struct {
	ItemID      string
	Attempt     int
	Status      string
	SkillID     string
	Output      map[string]any
	ErrorCode   string
	ErrorDetail string
	Retryable   bool
	CompletedAt time.Time
}

// Matcher evaluates an item against the current rule snapshot. An empty
// candidate list means no rule fired; the not-configured sentinel means no
// snapshot was ever published.
type Matcher interface {
	Match(item WorkItem) ([]Candidate, error)
}

// Dispatcher runs the candidate loop and commits the attempt itself. The
// returned outcome is already durable when the call returns without error.
type Dispatcher interface {
	Dispatch(ctx context.Context, item WorkItem, candidates []Candidate) (Outcome, error)
}

// Ledger covers the orchestrator's direct persistence needs: terminal
// outcomes for attempts that never reached the dispatcher (unroutable,
// cancelled early) and status lookups for items this process no longer
// holds in memory.
type Ledger interface {
	RecordOutcome(ctx context.Context, outcome Outcome) error
	LatestOutcome(ctx context.Context, itemID string) (Outcome, bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
