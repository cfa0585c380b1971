package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"archeli/contexts/audit-ledger/evidence-ledger/adapters/memory"
	"archeli/contexts/audit-ledger/evidence-ledger/domain/entities"
	domainerrors "archeli/contexts/audit-ledger/evidence-ledger/domain/errors"
	"archeli/internal/shared/events"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type sequenceIDs struct{ next int }

func (g *sequenceIDs) NewID(context.Context) (string, error) {
	g.next++
	return fmt.Sprintf("id-%d", g.next), nil
}

type recordingTrail struct {
	records []entities.EvidenceRecord
	err     error
}

func (t *recordingTrail) Append(record entities.EvidenceRecord) error {
	if t.err != nil {
		return t.err
	}
	t.records = append(t.records, record)
	return nil
}

func newService(store *memory.Store, trail *recordingTrail) Service {
	service := Service{
		Repo:          store,
		Clock:         fixedClock{now: time.Unix(1000, 0).UTC()},
		IDGen:         &sequenceIDs{},
		SourceService: "archeli-test",
	}
	// Assigning a nil *recordingTrail directly would make the interface
	// field non-nil and crash the trail guard.
	if trail != nil {
		service.Trail = trail
	}
	return service
}

func TestCommitAttemptFillsIDsAndTimestamps(t *testing.T) {
	store := memory.NewStore()
	service := newService(store, nil)
	ctx := context.Background()

	committed, err := service.CommitAttempt(ctx, entities.Attempt{
		Decision: &entities.RoutingDecision{RuleID: "r-1", SkillID: "skill-a", Score: 3},
		Evidence: []entities.EvidenceRecord{
			{Kind: "log", Payload: []byte(`{"line":"ok"}`)},
		},
		Outcome: entities.Outcome{ItemID: "item-1", Attempt: 1, Status: entities.OutcomeCompleted, SkillID: "skill-a"},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if committed.Outcome.OutcomeID == "" || committed.Outcome.CompletedAt.IsZero() {
		t.Fatalf("outcome identity not filled: %+v", committed.Outcome)
	}
	if committed.Decision.DecisionID == "" || committed.Decision.ItemID != "item-1" {
		t.Fatalf("decision identity not filled: %+v", committed.Decision)
	}
	if committed.Decision.Attempt != 1 {
		t.Fatalf("decision must carry the attempt number, got %d", committed.Decision.Attempt)
	}
	record := committed.Evidence[0]
	if record.EvidenceID == "" || record.ItemID != "item-1" || record.Fingerprint == "" {
		t.Fatalf("evidence identity not filled: %+v", record)
	}

	outcome, err := store.LatestOutcome(ctx, "item-1")
	if err != nil {
		t.Fatalf("latest outcome: %v", err)
	}
	if outcome.Status != entities.OutcomeCompleted {
		t.Fatalf("unexpected persisted status %q", outcome.Status)
	}
}

func TestCommitAttemptEnqueuesTerminalEvent(t *testing.T) {
	store := memory.NewStore()
	service := newService(store, nil)
	ctx := context.Background()

	if _, err := service.CommitAttempt(ctx, entities.Attempt{
		Outcome: entities.Outcome{
			ItemID: "item-1", Attempt: 2, Status: entities.OutcomeFailed,
			ErrorCode: "handler_timeout", Retryable: true,
		},
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one outbox row, got %d", len(pending))
	}
	if pending[0].EventType != events.EventTypeWorkItemFailed {
		t.Fatalf("failed outcome must produce %q, got %q", events.EventTypeWorkItemFailed, pending[0].EventType)
	}
}

func TestCommitAttemptWithoutItemIDRejected(t *testing.T) {
	service := newService(memory.NewStore(), nil)
	_, err := service.CommitAttempt(context.Background(), entities.Attempt{})
	if !errors.Is(err, domainerrors.ErrInvalidRecord) {
		t.Fatalf("expected invalid record, got %v", err)
	}
}

func TestCommitAttemptTrailFailureDoesNotFailCommit(t *testing.T) {
	store := memory.NewStore()
	trail := &recordingTrail{err: errors.New("disk full")}
	service := newService(store, trail)

	if _, err := service.CommitAttempt(context.Background(), entities.Attempt{
		Evidence: []entities.EvidenceRecord{{Kind: "log", Payload: []byte(`{}`)}},
		Outcome:  entities.Outcome{ItemID: "item-1", Attempt: 1, Status: entities.OutcomeCompleted},
	}); err != nil {
		t.Fatalf("trail failure must be best-effort, got %v", err)
	}
	count, _ := store.CountEvidence(context.Background())
	if count != 1 {
		t.Fatalf("evidence not persisted despite trail failure")
	}
}

func TestAppendEvidenceIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	service := newService(store, nil)
	ctx := context.Background()
	payload := map[string]any{"hash": "abc"}

	first, err := service.AppendEvidence(ctx, "item-1", "skill-a", "artifact", payload)
	if err != nil {
		t.Fatalf("first append: %v", err)
	}
	second, err := service.AppendEvidence(ctx, "item-1", "skill-a", "artifact", payload)
	if err != nil {
		t.Fatalf("duplicate append must succeed: %v", err)
	}
	if first.Fingerprint != second.Fingerprint {
		t.Fatalf("identical payloads must fingerprint identically")
	}
	count, _ := store.CountEvidence(ctx)
	if count != 1 {
		t.Fatalf("duplicate append changed the store, count=%d", count)
	}
}

func TestFingerprintIsKeyOrderIndependent(t *testing.T) {
	a := Fingerprint("log", map[string]any{"a": 1, "b": "x"})
	b := Fingerprint("log", map[string]any{"b": "x", "a": 1})
	if a != b {
		t.Fatalf("fingerprint depends on map iteration order: %q vs %q", a, b)
	}
	if a == Fingerprint("artifact", map[string]any{"a": 1, "b": "x"}) {
		t.Fatalf("kind must participate in the fingerprint")
	}
}

func TestEvidenceByRangeRejectsInvertedWindow(t *testing.T) {
	service := newService(memory.NewStore(), nil)
	_, err := service.EvidenceByRange(context.Background(), time.Unix(100, 0), time.Unix(50, 0), 10)
	if !errors.Is(err, domainerrors.ErrInvalidRecord) {
		t.Fatalf("expected invalid record for inverted window, got %v", err)
	}
}
