package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"archeli/contexts/audit-ledger/evidence-ledger/domain/entities"
	domainerrors "archeli/contexts/audit-ledger/evidence-ledger/domain/errors"
	"archeli/contexts/audit-ledger/evidence-ledger/ports"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

// Store is the in-memory ledger used by tests and by processes running
// without a database file. One lock covers a whole attempt commit, which
// gives the same all-or-nothing visibility as the sqlite transaction.
type Store struct {
	mu sync.RWMutex

	decisions    []entities.RoutingDecision
	evidence     []entities.EvidenceRecord
	outcomes     []entities.Outcome
	fingerprints map[string]bool
	outbox       []outboxRecord
}

func NewStore() *Store {
	return &Store{
		fingerprints: make(map[string]bool),
	}
}

func (s *Store) CommitAttempt(_ context.Context, attempt entities.Attempt, outbox ports.OutboxMessage) error {
	if strings.TrimSpace(attempt.Outcome.ItemID) == "" {
		return domainerrors.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if attempt.Decision != nil {
		s.decisions = append(s.decisions, *attempt.Decision)
	}
	for _, record := range attempt.Evidence {
		key := fingerprintKey(record.ItemID, record.Fingerprint)
		if s.fingerprints[key] {
			continue
		}
		s.fingerprints[key] = true
		s.evidence = append(s.evidence, record)
	}
	s.outcomes = append(s.outcomes, attempt.Outcome)
	s.outbox = append(s.outbox, outboxRecord{Message: outbox, Status: outboxStatusPending})
	return nil
}

func (s *Store) AppendEvidence(_ context.Context, record entities.EvidenceRecord) error {
	if strings.TrimSpace(record.ItemID) == "" || strings.TrimSpace(record.Fingerprint) == "" {
		return domainerrors.ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := fingerprintKey(record.ItemID, record.Fingerprint)
	if s.fingerprints[key] {
		return nil // idempotent re-submission
	}
	s.fingerprints[key] = true
	s.evidence = append(s.evidence, record)
	return nil
}

func (s *Store) ListEvidenceByItem(_ context.Context, itemID string) ([]entities.EvidenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.EvidenceRecord, 0)
	for _, record := range s.evidence {
		if record.ItemID == itemID {
			items = append(items, record)
		}
	}
	return items, nil
}

func (s *Store) ListEvidenceByRange(_ context.Context, from, to time.Time, limit int) ([]entities.EvidenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]entities.EvidenceRecord, 0)
	for _, record := range s.evidence {
		if record.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !record.CreatedAt.Before(to) {
			continue
		}
		items = append(items, record)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) ListDecisions(_ context.Context, itemID string) ([]entities.RoutingDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.RoutingDecision, 0)
	for _, decision := range s.decisions {
		if decision.ItemID == itemID {
			items = append(items, decision)
		}
	}
	return items, nil
}

func (s *Store) LatestOutcome(_ context.Context, itemID string) (entities.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.outcomes) - 1; i >= 0; i-- {
		if s.outcomes[i].ItemID == itemID {
			return s.outcomes[i], nil
		}
	}
	return entities.Outcome{}, domainerrors.ErrOutcomeNotFound
}

// ListRecentOutcomes returns the newest outcomes first, one row per attempt.
func (s *Store) ListRecentOutcomes(_ context.Context, limit int) ([]entities.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	recent := make([]entities.Outcome, 0)
	for i := len(s.outcomes) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, s.outcomes[i])
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CompletedAt.After(recent[j].CompletedAt)
	})
	return recent, nil
}

func (s *Store) CountEvidence(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.evidence)), nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	pending := make([]ports.OutboxMessage, 0)
	for _, record := range s.outbox {
		if record.Status != outboxStatusPending {
			continue
		}
		pending = append(pending, record.Message)
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].Message.OutboxID == outboxID {
			s.outbox[i].Status = outboxStatusPublished
			s.outbox[i].PublishedAt = &publishedAt
			return nil
		}
	}
	return domainerrors.ErrInvalidRecord
}

func fingerprintKey(itemID, fingerprint string) string {
	return itemID + "\x00" + fingerprint
}
