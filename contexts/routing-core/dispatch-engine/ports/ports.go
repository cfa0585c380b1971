package ports

import (
	"context"
	"time"

	"archeli/contexts/routing-core/dispatch-engine/domain/entities"
)

// WorkItem is the dispatcher's view of the item being processed.
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

// EvidencePayload is one artifact a handler produced during invocation.
type EvidencePayload struct {
	Kind    string
	Payload map[string]any
}

// InvocationResult is a handler's successful return.
type InvocationResult struct {
	Output   map[string]any
	Evidence []EvidencePayload
}

type Handler interface {
	Invoke(ctx context.Context, payload map[string]any) (InvocationResult, error)
}

// SkillDirectory is the dispatcher's view of the registry: handler
// resolution, advisory health, and per-skill admission. Admit blocks under
// the queue policy and fails fast with the busy sentinel under reject; the
// returned release func must be called exactly once when the handler returns.
type SkillDirectory interface {
	Resolve(id string) (Handler, error)
	IsAvailable(id string) bool
	Admit(ctx context.Context, id string) (func(), error)
}

// Decision records the originally matched target for an attempt. It always
// names the first candidate in match order, even when a fallback ran.
type Decision struct {
	RuleID  string
	SkillID string
	Score   float64
	Attempt int
}

// EvidenceEntry is one artifact headed for the ledger, attributed to the
// skill that produced it.
type EvidenceEntry struct {
	SkillID string
	Kind    string
	Payload map[string]any
}

// AttemptRecord is one dispatch attempt handed to the ledger as a single
// atomic unit. Decision is nil when no candidate list existed.
type AttemptRecord struct {
	Decision *Decision
	Evidence []EvidenceEntry
	Result   entities.Result
}

type Ledger interface {
	CommitAttempt(ctx context.Context, record AttemptRecord) error
}

type Clock interface {
	Now() time.Time
}
