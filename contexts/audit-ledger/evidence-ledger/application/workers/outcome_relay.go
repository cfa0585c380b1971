package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"archeli/contexts/audit-ledger/evidence-ledger/ports"
)

const terminalTopic = "workitem.terminal"

// OutcomeRelay drains the ledger outbox and publishes terminal work item
// events to the bus. Rows stay pending until publish succeeds, so the relay
// is restart-safe at the cost of possible duplicate delivery.
type OutcomeRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutcomeRelay) RunOnce(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("outbox list pending failed",
			"event", "evidence_ledger_outbox_list_failed",
			"module", "audit-ledger/evidence-ledger",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, message := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			logger.Error("outbox payload decode failed",
				"event", "evidence_ledger_outbox_decode_failed",
				"module", "audit-ledger/evidence-ledger",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Publisher.Publish(ctx, terminalTopic, envelope); err != nil {
			logger.Error("outbox publish failed",
				"event", "evidence_ledger_outbox_publish_failed",
				"module", "audit-ledger/evidence-ledger",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, message.OutboxID, now); err != nil {
			return err
		}
	}
	return nil
}
