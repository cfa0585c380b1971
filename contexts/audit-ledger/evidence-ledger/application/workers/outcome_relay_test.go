package workers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"archeli/contexts/audit-ledger/evidence-ledger/ports"
	"archeli/internal/shared/events"
)

type fakeOutbox struct {
	pending   []ports.OutboxMessage
	published map[string]time.Time
	listErr   error
}

func (f *fakeOutbox) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutbox) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	if f.published == nil {
		f.published = make(map[string]time.Time)
	}
	f.published[outboxID] = publishedAt
	return nil
}

type fakePublisher struct {
	topics    []string
	envelopes []ports.EventEnvelope
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, envelope ports.EventEnvelope) error {
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	f.envelopes = append(f.envelopes, envelope)
	return nil
}

func outboxMessage(t *testing.T, id, itemID string) ports.OutboxMessage {
	t.Helper()
	payload, err := json.Marshal(events.Envelope{
		EventID:   id,
		EventType: events.EventTypeWorkItemCompleted,
		EntityID:  itemID,
	})
	if err != nil {
		t.Fatalf("encode envelope: %v", err)
	}
	return ports.OutboxMessage{OutboxID: id, EventType: events.EventTypeWorkItemCompleted, Payload: payload}
}

func TestRunOncePublishesAndMarksPending(t *testing.T) {
	outbox := &fakeOutbox{pending: []ports.OutboxMessage{
		outboxMessage(t, "ob-1", "item-1"),
		outboxMessage(t, "ob-2", "item-2"),
	}}
	publisher := &fakePublisher{}
	relay := OutcomeRelay{Outbox: outbox, Publisher: publisher, BatchSize: 10}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(publisher.envelopes) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.envelopes))
	}
	for _, topic := range publisher.topics {
		if topic != terminalTopic {
			t.Fatalf("published to wrong topic %q", topic)
		}
	}
	if len(outbox.published) != 2 {
		t.Fatalf("expected both rows marked published, got %d", len(outbox.published))
	}
}

func TestRunOncePublishFailureLeavesRowPending(t *testing.T) {
	outbox := &fakeOutbox{pending: []ports.OutboxMessage{outboxMessage(t, "ob-1", "item-1")}}
	publisher := &fakePublisher{err: errors.New("bus down")}
	relay := OutcomeRelay{Outbox: outbox, Publisher: publisher}

	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected publish error to surface")
	}
	if len(outbox.published) != 0 {
		t.Fatalf("failed publish must not mark the row published")
	}
}

func TestRunOnceRespectsBatchSize(t *testing.T) {
	outbox := &fakeOutbox{pending: []ports.OutboxMessage{
		outboxMessage(t, "ob-1", "item-1"),
		outboxMessage(t, "ob-2", "item-2"),
		outboxMessage(t, "ob-3", "item-3"),
	}}
	publisher := &fakePublisher{}
	relay := OutcomeRelay{Outbox: outbox, Publisher: publisher, BatchSize: 2}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(publisher.envelopes) != 2 {
		t.Fatalf("batch size not respected, published %d", len(publisher.envelopes))
	}
}
