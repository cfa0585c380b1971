package ports

import (
	"context"
	"time"

	"archeli/contexts/audit-ledger/evidence-ledger/domain/entities"
	"archeli/internal/shared/events"
)

type EventEnvelope = events.Envelope

// Repository is the durable store behind the ledger. CommitAttempt must be
// atomic: either the decision, every non-duplicate evidence record, the
// outcome, and the outbox row are all visible, or none are.
type Repository interface {
	CommitAttempt(ctx context.Context, attempt entities.Attempt, outbox OutboxMessage) error
	AppendEvidence(ctx context.Context, record entities.EvidenceRecord) error
	ListEvidenceByItem(ctx context.Context, itemID string) ([]entities.EvidenceRecord, error)
	ListEvidenceByRange(ctx context.Context, from, to time.Time, limit int) ([]entities.EvidenceRecord, error)
	ListDecisions(ctx context.Context, itemID string) ([]entities.RoutingDecision, error)
	LatestOutcome(ctx context.Context, itemID string) (entities.Outcome, error)
	ListRecentOutcomes(ctx context.Context, limit int) ([]entities.Outcome, error)
	CountEvidence(ctx context.Context) (int64, error)
}

type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// AuditTrail mirrors committed evidence to the evidence directory as JSONL.
// Best-effort: trail failures never fail a commit.
type AuditTrail interface {
	Append(record entities.EvidenceRecord) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
