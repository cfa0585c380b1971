package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"archeli/contexts/routing-core/work-orchestrator/domain/entities"
	domainerrors "archeli/contexts/routing-core/work-orchestrator/domain/errors"
	"archeli/contexts/routing-core/work-orchestrator/ports"
)

type fakeMatcher struct {
	candidates []ports.Candidate
	err        error
}

func (m fakeMatcher) Match(ports.WorkItem) ([]ports.Candidate, error) {
	return m.candidates, m.err
}

type fakeDispatcher struct {
	mu         sync.Mutex
	calls      int
	gate       chan struct{}
	waitCancel bool
	outcome    ports.Outcome
	err        error
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, item ports.WorkItem, _ []ports.Candidate) (ports.Outcome, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.gate != nil {
		<-d.gate
	}
	if d.waitCancel {
		<-ctx.Done()
		return ports.Outcome{
			ItemID: item.ID, Attempt: item.Attempt,
			Status: string(entities.StateFailed), ErrorCode: entities.CodeCancelled,
		}, nil
	}
	if d.err != nil {
		return ports.Outcome{}, d.err
	}
	outcome := d.outcome
	outcome.ItemID = item.ID
	outcome.Attempt = item.Attempt
	return outcome, nil
}

func (d *fakeDispatcher) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type fakeLedger struct {
	mu       sync.Mutex
	recorded []ports.Outcome
	latest   map[string]ports.Outcome
}

func (l *fakeLedger) RecordOutcome(_ context.Context, outcome ports.Outcome) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recorded = append(l.recorded, outcome)
	return nil
}

func (l *fakeLedger) LatestOutcome(_ context.Context, itemID string) (ports.Outcome, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	outcome, ok := l.latest[itemID]
	return outcome, ok, nil
}

func (l *fakeLedger) recordedOutcomes() []ports.Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.Outcome(nil), l.recorded...)
}

type sequenceIDs struct {
	mu   sync.Mutex
	next int
}

func (g *sequenceIDs) NewID(context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("item-%d", g.next), nil
}

func matched(skill string) []ports.Candidate {
	return []ports.Candidate{{RuleID: "r-" + skill, SkillID: skill, Priority: 1, Score: 1}}
}

func completedVia(skill string) ports.Outcome {
	return ports.Outcome{
		Status:  string(entities.StateCompleted),
		SkillID: skill,
		Output:  map[string]any{"ok": true},
	}
}

func newTestService(matcher ports.Matcher, dispatcher ports.Dispatcher, ledger ports.Ledger) *Service {
	return NewService(matcher, dispatcher, ledger, nil, &sequenceIDs{}, nil)
}

func waitForState(t *testing.T, service *Service, itemID string, want entities.State) entities.WorkItem {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		item, err := service.GetStatus(context.Background(), itemID)
		if err == nil && item.State == want {
			return item
		}
		if time.Now().After(deadline) {
			t.Fatalf("item %s never reached state %s (last: %+v, err: %v)", itemID, want, item, err)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestSubmitRunsToCompletion(t *testing.T) {
	dispatcher := &fakeDispatcher{outcome: completedVia("skill-a")}
	service := newTestService(fakeMatcher{candidates: matched("skill-a")}, dispatcher, &fakeLedger{})

	ticket, err := service.Submit(context.Background(), SubmitRequest{Kind: "scan"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ticket.ItemID == "" || ticket.Attempt != 1 {
		t.Fatalf("unexpected ticket %+v", ticket)
	}

	item := waitForState(t, service, ticket.ItemID, entities.StateCompleted)
	if item.SkillID != "skill-a" || item.ErrorCode != "" {
		t.Fatalf("unexpected terminal item %+v", item)
	}
}

func TestSubmitRequiresKind(t *testing.T) {
	service := newTestService(fakeMatcher{}, &fakeDispatcher{}, &fakeLedger{})
	if _, err := service.Submit(context.Background(), SubmitRequest{}); !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUnroutableItemFailsWithoutDispatch(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	ledger := &fakeLedger{}
	service := newTestService(fakeMatcher{}, dispatcher, ledger)

	ticket, err := service.Submit(context.Background(), SubmitRequest{Kind: "scan"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	item := waitForState(t, service, ticket.ItemID, entities.StateFailed)
	if item.ErrorCode != entities.CodeUnroutable || item.Retryable {
		t.Fatalf("expected permanent unroutable failure, got %+v", item)
	}
	if dispatcher.callCount() != 0 {
		t.Fatalf("unroutable item must never reach the dispatcher")
	}
	recorded := ledger.recordedOutcomes()
	if len(recorded) != 1 || recorded[0].ErrorCode != entities.CodeUnroutable {
		t.Fatalf("expected exactly one recorded unroutable outcome, got %+v", recorded)
	}
}

func TestMissingSnapshotFailsRetryable(t *testing.T) {
	service := newTestService(
		fakeMatcher{err: domainerrors.ErrRoutingNotConfigured},
		&fakeDispatcher{},
		&fakeLedger{},
	)

	ticket, _ := service.Submit(context.Background(), SubmitRequest{Kind: "scan"})
	item := waitForState(t, service, ticket.ItemID, entities.StateFailed)
	if item.ErrorCode != entities.CodeNotConfigured || !item.Retryable {
		t.Fatalf("expected retryable not-configured failure, got %+v", item)
	}
}

func TestDuplicateSubmitNeverDoubleDispatches(t *testing.T) {
	gate := make(chan struct{})
	dispatcher := &fakeDispatcher{gate: gate, outcome: completedVia("skill-a")}
	service := newTestService(fakeMatcher{candidates: matched("skill-a")}, dispatcher, &fakeLedger{})

	first, err := service.Submit(context.Background(), SubmitRequest{ItemID: "item-x", Kind: "scan"})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := service.Submit(context.Background(), SubmitRequest{ItemID: "item-x", Kind: "scan"})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.ItemID != first.ItemID {
		t.Fatalf("same identifier must map to the same ticket")
	}

	close(gate)
	waitForState(t, service, "item-x", entities.StateCompleted)
	if dispatcher.callCount() != 1 {
		t.Fatalf("same identifier dispatched %d times", dispatcher.callCount())
	}
}

func TestCancelInFlightItem(t *testing.T) {
	dispatcher := &fakeDispatcher{waitCancel: true}
	service := newTestService(fakeMatcher{candidates: matched("skill-a")}, dispatcher, &fakeLedger{})

	ticket, _ := service.Submit(context.Background(), SubmitRequest{ItemID: "item-c", Kind: "scan"})
	waitForState(t, service, ticket.ItemID, entities.StateDispatched)

	if err := service.Cancel(ticket.ItemID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	item := waitForState(t, service, ticket.ItemID, entities.StateFailed)
	if item.ErrorCode != entities.CodeCancelled {
		t.Fatalf("expected cancelled item, got %+v", item)
	}
	if err := service.Cancel(ticket.ItemID); !errors.Is(err, domainerrors.ErrAlreadyTerminal) {
		t.Fatalf("cancel after terminal must be rejected, got %v", err)
	}
}

func TestRetryStartsFreshAttempt(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("disk full")}
	service := newTestService(fakeMatcher{candidates: matched("skill-a")}, dispatcher, &fakeLedger{})

	ticket, _ := service.Submit(context.Background(), SubmitRequest{ItemID: "item-r", Kind: "scan"})
	item := waitForState(t, service, ticket.ItemID, entities.StateFailed)
	if item.ErrorCode != entities.CodeStorage || !item.Retryable {
		t.Fatalf("expected retryable storage failure, got %+v", item)
	}

	dispatcher.mu.Lock()
	dispatcher.err = nil
	dispatcher.outcome = completedVia("skill-a")
	dispatcher.mu.Unlock()

	retry, err := service.Retry(context.Background(), ticket.ItemID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retry.Attempt != 2 {
		t.Fatalf("retry must bump the attempt, got %d", retry.Attempt)
	}
	item = waitForState(t, service, ticket.ItemID, entities.StateCompleted)
	if item.Attempt != 2 {
		t.Fatalf("terminal attempt mismatch: %+v", item)
	}
}

func TestRetryRejectedWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	dispatcher := &fakeDispatcher{gate: gate, outcome: completedVia("skill-a")}
	service := newTestService(fakeMatcher{candidates: matched("skill-a")}, dispatcher, &fakeLedger{})

	ticket, _ := service.Submit(context.Background(), SubmitRequest{ItemID: "item-f", Kind: "scan"})
	if _, err := service.Retry(context.Background(), ticket.ItemID); !errors.Is(err, domainerrors.ErrNotTerminal) {
		t.Fatalf("retry of in-flight item must be rejected, got %v", err)
	}
	close(gate)
	waitForState(t, service, ticket.ItemID, entities.StateCompleted)
}

func TestGetStatusFallsBackToLedger(t *testing.T) {
	ledger := &fakeLedger{latest: map[string]ports.Outcome{
		"old-item": {
			ItemID: "old-item", Attempt: 3, Status: string(entities.StateFailed),
			ErrorCode: entities.CodeUnroutable, CompletedAt: time.Unix(500, 0).UTC(),
		},
	}}
	service := newTestService(fakeMatcher{}, &fakeDispatcher{}, ledger)

	item, err := service.GetStatus(context.Background(), "old-item")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if item.State != entities.StateFailed || item.Attempt != 3 {
		t.Fatalf("unexpected reconstructed item %+v", item)
	}

	if _, err := service.GetStatus(context.Background(), "ghost"); !errors.Is(err, domainerrors.ErrItemNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
