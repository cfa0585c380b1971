package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"archeli/contexts/audit-ledger/evidence-ledger/domain/entities"
	domainerrors "archeli/contexts/audit-ledger/evidence-ledger/domain/errors"
	"archeli/contexts/audit-ledger/evidence-ledger/ports"
	"archeli/internal/shared/events"
)

type Service struct {
	Repo          ports.Repository
	Trail         ports.AuditTrail
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	SourceService string
	Logger        *slog.Logger
}

// CommitAttempt persists one dispatch attempt as a single atomic unit and
// enqueues the terminal outcome for the outbox relay. Duplicate evidence
// fingerprints inside the attempt are dropped by the repository, not errors.
func (s Service) CommitAttempt(ctx context.Context, attempt entities.Attempt) (entities.Attempt, error) {
	if strings.TrimSpace(attempt.Outcome.ItemID) == "" {
		return entities.Attempt{}, domainerrors.ErrInvalidRecord
	}

	now := s.now()
	if attempt.Outcome.OutcomeID == "" {
		id, err := s.newID(ctx)
		if err != nil {
			return entities.Attempt{}, err
		}
		attempt.Outcome.OutcomeID = id
	}
	if attempt.Outcome.CompletedAt.IsZero() {
		attempt.Outcome.CompletedAt = now
	}
	if attempt.Decision != nil {
		if attempt.Decision.ItemID == "" {
			attempt.Decision.ItemID = attempt.Outcome.ItemID
		}
		if attempt.Decision.DecisionID == "" {
			id, err := s.newID(ctx)
			if err != nil {
				return entities.Attempt{}, err
			}
			attempt.Decision.DecisionID = id
		}
		if attempt.Decision.DecidedAt.IsZero() {
			attempt.Decision.DecidedAt = now
		}
		attempt.Decision.Attempt = attempt.Outcome.Attempt
	}
	for i := range attempt.Evidence {
		record := &attempt.Evidence[i]
		record.ItemID = attempt.Outcome.ItemID
		if record.EvidenceID == "" {
			id, err := s.newID(ctx)
			if err != nil {
				return entities.Attempt{}, err
			}
			record.EvidenceID = id
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
		if record.Fingerprint == "" {
			var payload map[string]any
			_ = json.Unmarshal(record.Payload, &payload)
			record.Fingerprint = Fingerprint(record.Kind, payload)
		}
	}

	outbox, err := s.buildOutbox(ctx, attempt.Outcome)
	if err != nil {
		return entities.Attempt{}, err
	}

	if err := s.Repo.CommitAttempt(ctx, attempt, outbox); err != nil {
		return entities.Attempt{}, fmt.Errorf("commit attempt for item %s: %w", attempt.Outcome.ItemID, err)
	}

	if s.Trail != nil {
		for _, record := range attempt.Evidence {
			if err := s.Trail.Append(record); err != nil {
				s.logger().Warn("evidence trail append failed",
					"event", "evidence_ledger_trail_failed",
					"module", "audit-ledger/evidence-ledger",
					"layer", "application",
					"item_id", record.ItemID,
					"error", err.Error(),
				)
			}
		}
	}
	return attempt, nil
}

// AppendEvidence records a standalone artifact. Re-appending an identical
// (itemID, fingerprint) pair succeeds without changing the store.
func (s Service) AppendEvidence(
	ctx context.Context,
	itemID string,
	skillID string,
	kind string,
	payload map[string]any,
) (entities.EvidenceRecord, error) {
	if strings.TrimSpace(itemID) == "" || strings.TrimSpace(kind) == "" {
		return entities.EvidenceRecord{}, domainerrors.ErrInvalidRecord
	}
	id, err := s.newID(ctx)
	if err != nil {
		return entities.EvidenceRecord{}, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return entities.EvidenceRecord{}, fmt.Errorf("%w: encode payload: %v", domainerrors.ErrInvalidRecord, err)
	}
	record := entities.EvidenceRecord{
		EvidenceID:  id,
		ItemID:      strings.TrimSpace(itemID),
		SkillID:     strings.TrimSpace(skillID),
		Kind:        strings.TrimSpace(kind),
		Payload:     raw,
		Fingerprint: Fingerprint(kind, payload),
		CreatedAt:   s.now(),
	}
	if err := s.Repo.AppendEvidence(ctx, record); err != nil {
		return entities.EvidenceRecord{}, err
	}
	return record, nil
}

func (s Service) EvidenceByItem(ctx context.Context, itemID string) ([]entities.EvidenceRecord, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, domainerrors.ErrInvalidRecord
	}
	return s.Repo.ListEvidenceByItem(ctx, itemID)
}

func (s Service) EvidenceByRange(ctx context.Context, from, to time.Time, limit int) ([]entities.EvidenceRecord, error) {
	if !to.IsZero() && to.Before(from) {
		return nil, domainerrors.ErrInvalidRecord
	}
	if limit <= 0 {
		limit = 100
	}
	return s.Repo.ListEvidenceByRange(ctx, from, to, limit)
}

func (s Service) Decisions(ctx context.Context, itemID string) ([]entities.RoutingDecision, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, domainerrors.ErrInvalidRecord
	}
	return s.Repo.ListDecisions(ctx, itemID)
}

func (s Service) LatestOutcome(ctx context.Context, itemID string) (entities.Outcome, error) {
	if strings.TrimSpace(itemID) == "" {
		return entities.Outcome{}, domainerrors.ErrInvalidRecord
	}
	return s.Repo.LatestOutcome(ctx, itemID)
}

func (s Service) RecentOutcomes(ctx context.Context, limit int) ([]entities.Outcome, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.Repo.ListRecentOutcomes(ctx, limit)
}

func (s Service) buildOutbox(ctx context.Context, outcome entities.Outcome) (ports.OutboxMessage, error) {
	eventType := events.EventTypeWorkItemCompleted
	if outcome.Status == entities.OutcomeFailed {
		eventType = events.EventTypeWorkItemFailed
	}
	eventID, err := s.newID(ctx)
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	envelope := events.Envelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  s.SourceService,
		OccurredAtUTC:  outcome.CompletedAt.UTC(),
		CorrelationID:  outcome.ItemID,
		EntityType:     events.EntityTypeWorkItem,
		EntityID:       outcome.ItemID,
		PayloadVersion: 1,
		Payload: map[string]any{
			"item_id":      outcome.ItemID,
			"attempt":      outcome.Attempt,
			"status":       string(outcome.Status),
			"skill_id":     outcome.SkillID,
			"error_code":   outcome.ErrorCode,
			"error_detail": outcome.ErrorDetail,
			"retryable":    outcome.Retryable,
		},
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return ports.OutboxMessage{}, fmt.Errorf("encode outcome envelope: %w", err)
	}
	outboxID, err := s.newID(ctx)
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	return ports.OutboxMessage{
		OutboxID:  outboxID,
		EventType: eventType,
		Payload:   payload,
		CreatedAt: s.now(),
	}, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) newID(ctx context.Context) (string, error) {
	if s.IDGen == nil {
		return "", fmt.Errorf("id generator is not configured")
	}
	return s.IDGen.NewID(ctx)
}

func (s Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
