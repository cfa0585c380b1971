package entities

import "time"

// RoutingDecision is the audit record of what the matcher originally chose.
// It names the first candidate tried even when a fallback produced the result.
type RoutingDecision struct {
	DecisionID string
	ItemID     string
	Attempt    int
	RuleID     string
	SkillID    string
	Score      float64
	DecidedAt  time.Time
}

// EvidenceRecord is one immutable artifact produced while handling an item.
// (ItemID, Fingerprint) identifies it; re-appending the same pair is a no-op.
type EvidenceRecord struct {
	EvidenceID  string
	ItemID      string
	SkillID     string
	Kind        string
	Payload     []byte
	Fingerprint string
	CreatedAt   time.Time
}

type OutcomeStatus string

const (
	OutcomeCompleted OutcomeStatus = "completed"
	OutcomeFailed    OutcomeStatus = "failed"
)

// Outcome is the terminal result of one processing attempt.
type Outcome struct {
	OutcomeID   string
	ItemID      string
	Attempt     int
	Status      OutcomeStatus
	SkillID     string
	ErrorCode   string
	ErrorDetail string
	Retryable   bool
	CompletedAt time.Time
}

// Attempt bundles everything one dispatch attempt persists atomically.
// Decision is nil for attempts that never matched (unroutable, early cancel).
type Attempt struct {
	Decision *RoutingDecision
	Evidence []EvidenceRecord
	Outcome  Outcome
}
