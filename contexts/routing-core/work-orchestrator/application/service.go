package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"archeli/contexts/routing-core/work-orchestrator/domain/entities"
	domainerrors "archeli/contexts/routing-core/work-orchestrator/domain/errors"
	"archeli/contexts/routing-core/work-orchestrator/ports"
)

type SubmitRequest struct {
	ItemID  string
	Kind    string
	Payload map[string]any
}

type Ticket struct {
	ItemID  string
	State   entities.State
	Attempt int
}

type itemRecord struct {
	entity entities.WorkItem
	cancel context.CancelFunc
}

type Service struct {
	Matcher    ports.Matcher
	Dispatcher ports.Dispatcher
	Ledger     ports.Ledger
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger

	mu    sync.Mutex
	items map[string]*itemRecord
}

func NewService(
	matcher ports.Matcher,
	dispatcher ports.Dispatcher,
	ledger ports.Ledger,
	clock ports.Clock,
	idGen ports.IDGenerator,
	logger *slog.Logger,
) *Service {
	return &Service{
		Matcher:    matcher,
		Dispatcher: dispatcher,
		Ledger:     ledger,
		Clock:      clock,
		IDGen:      idGen,
		Logger:     logger,
		items:      make(map[string]*itemRecord),
	}
}

// Submit registers a work item and starts its first attempt. Submitting an
// identifier that is already in flight returns the existing ticket without
// starting a second dispatch; an item holds at most one attempt at a time.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (Ticket, error) {
	if strings.TrimSpace(req.Kind) == "" {
		return Ticket{}, fmt.Errorf("%w: kind is required", domainerrors.ErrValidation)
	}
	id := strings.TrimSpace(req.ItemID)
	if id == "" {
		generated, err := s.IDGen.NewID(ctx)
		if err != nil {
			return Ticket{}, fmt.Errorf("generate item id: %w", err)
		}
		id = generated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[id]; ok {
		return Ticket{ItemID: id, State: existing.entity.State, Attempt: existing.entity.Attempt}, nil
	}

	now := s.now()
	record := &itemRecord{entity: entities.WorkItem{
		ID:          id,
		Kind:        req.Kind,
		Payload:     req.Payload,
		Attempt:     1,
		State:       entities.StateReceived,
		SubmittedAt: now,
		UpdatedAt:   now,
	}}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	record.cancel = cancel
	s.items[id] = record

	s.logger().Info("work item accepted",
		"event", "orchestrator_item_accepted",
		"module", "routing-core/work-orchestrator",
		"layer", "application",
		"item_id", id,
		"kind", req.Kind,
	)
	go s.process(runCtx, ports.WorkItem{ID: id, Kind: req.Kind, Payload: req.Payload, Attempt: 1})

	return Ticket{ItemID: id, State: entities.StateReceived, Attempt: 1}, nil
}

// Cancel flags an in-flight item. The flag is observed at the next
// suspension point; a running handler is only ever stopped by its timeout.
func (s *Service) Cancel(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.items[itemID]
	if !ok {
		return domainerrors.ErrItemNotFound
	}
	if record.entity.State.Terminal() {
		return domainerrors.ErrAlreadyTerminal
	}
	record.cancel()
	return nil
}

// Retry starts a fresh attempt for an item that already reached a terminal
// state, keeping the same identity. Evidence from earlier attempts stays
// deduplicated by fingerprint, so a retried handler re-emitting the same
// artifacts is harmless.
func (s *Service) Retry(ctx context.Context, itemID string) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.items[itemID]
	if !ok {
		return Ticket{}, domainerrors.ErrItemNotFound
	}
	if !record.entity.State.Terminal() {
		return Ticket{}, domainerrors.ErrNotTerminal
	}

	attempt := record.entity.Attempt + 1
	record.entity.Attempt = attempt
	record.entity.State = entities.StateReceived
	record.entity.SkillID = ""
	record.entity.Output = nil
	record.entity.ErrorCode = ""
	record.entity.ErrorDetail = ""
	record.entity.Retryable = false
	record.entity.UpdatedAt = s.now()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	record.cancel = cancel

	s.logger().Info("work item retry started",
		"event", "orchestrator_item_retry",
		"module", "routing-core/work-orchestrator",
		"layer", "application",
		"item_id", itemID,
		"attempt", attempt,
	)
	go s.process(runCtx, ports.WorkItem{
		ID:      itemID,
		Kind:    record.entity.Kind,
		Payload: record.entity.Payload,
		Attempt: attempt,
	})

	return Ticket{ItemID: itemID, State: entities.StateReceived, Attempt: attempt}, nil
}

// GetStatus returns the current in-memory state, falling back to the
// ledger's latest outcome for items this process no longer tracks.
func (s *Service) GetStatus(ctx context.Context, itemID string) (entities.WorkItem, error) {
	s.mu.Lock()
	if record, ok := s.items[itemID]; ok {
		entity := record.entity
		s.mu.Unlock()
		return entity, nil
	}
	s.mu.Unlock()

	outcome, found, err := s.Ledger.LatestOutcome(ctx, itemID)
	if err != nil {
		return entities.WorkItem{}, err
	}
	if !found {
		return entities.WorkItem{}, domainerrors.ErrItemNotFound
	}
	state := entities.StateCompleted
	if outcome.Status != string(entities.StateCompleted) {
		state = entities.StateFailed
	}
	return entities.WorkItem{
		ID:          itemID,
		Attempt:     outcome.Attempt,
		State:       state,
		SkillID:     outcome.SkillID,
		Output:      outcome.Output,
		ErrorCode:   outcome.ErrorCode,
		ErrorDetail: outcome.ErrorDetail,
		Retryable:   outcome.Retryable,
		UpdatedAt:   outcome.CompletedAt,
	}, nil
}

func (s *Service) process(ctx context.Context, item ports.WorkItem) {
	s.setState(item.ID, entities.StateRouting)

	if ctx.Err() != nil {
		s.finishWithout(ctx, item, entities.CodeCancelled, "cancelled before matching", false)
		return
	}

	candidates, err := s.Matcher.Match(item)
	switch {
	case errors.Is(err, domainerrors.ErrRoutingNotConfigured):
		s.finishWithout(ctx, item, entities.CodeNotConfigured, "no rule snapshot loaded", true)
		return
	case err != nil:
		s.finishWithout(ctx, item, entities.CodeValidation, err.Error(), false)
		return
	case len(candidates) == 0:
		s.finishWithout(ctx, item, entities.CodeUnroutable, "no rule fired for kind "+item.Kind, false)
		return
	}

	if ctx.Err() != nil {
		s.finishWithout(ctx, item, entities.CodeCancelled, "cancelled before dispatch", false)
		return
	}

	s.setState(item.ID, entities.StateDispatched)

	outcome, err := s.Dispatcher.Dispatch(ctx, item, candidates)
	if err != nil {
		// The dispatcher failed to persist the attempt; nothing durable
		// exists for it, so only the in-memory state can carry the error.
		s.logger().Error("dispatch attempt could not be committed",
			"event", "orchestrator_dispatch_storage_failed",
			"module", "routing-core/work-orchestrator",
			"layer", "application",
			"item_id", item.ID,
			"attempt", item.Attempt,
			"error", err.Error(),
		)
		s.markTerminal(item.ID, entities.WorkItem{
			State:       entities.StateFailed,
			ErrorCode:   entities.CodeStorage,
			ErrorDetail: err.Error(),
			Retryable:   true,
		})
		return
	}
	s.applyOutcome(item.ID, outcome)
}

// finishWithout ends an attempt that never reached the dispatcher. The
// recorded outcome carries no routing decision: an unroutable or early
// cancelled item leaves zero decisions behind.
func (s *Service) finishWithout(ctx context.Context, item ports.WorkItem, code, detail string, retryable bool) {
	outcome := ports.Outcome{
		ItemID:      item.ID,
		Attempt:     item.Attempt,
		Status:      string(entities.StateFailed),
		ErrorCode:   code,
		ErrorDetail: detail,
		Retryable:   retryable,
		CompletedAt: s.now(),
	}
	if err := s.Ledger.RecordOutcome(context.WithoutCancel(ctx), outcome); err != nil {
		s.logger().Error("terminal outcome record failed",
			"event", "orchestrator_outcome_record_failed",
			"module", "routing-core/work-orchestrator",
			"layer", "application",
			"item_id", item.ID,
			"error_code", code,
			"error", err.Error(),
		)
	}
	s.markTerminal(item.ID, entities.WorkItem{
		State:       entities.StateFailed,
		ErrorCode:   code,
		ErrorDetail: detail,
		Retryable:   retryable,
	})
}

func (s *Service) applyOutcome(itemID string, outcome ports.Outcome) {
	update := entities.WorkItem{
		State:       entities.StateFailed,
		SkillID:     outcome.SkillID,
		Output:      outcome.Output,
		ErrorCode:   outcome.ErrorCode,
		ErrorDetail: outcome.ErrorDetail,
		Retryable:   outcome.Retryable,
	}
	if outcome.Status == string(entities.StateCompleted) {
		update.State = entities.StateCompleted
	}
	s.markTerminal(itemID, update)
}

func (s *Service) setState(itemID string, state entities.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.items[itemID]
	if !ok || record.entity.State.Terminal() {
		return
	}
	record.entity.State = state
	record.entity.UpdatedAt = s.now()
}

func (s *Service) markTerminal(itemID string, update entities.WorkItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.items[itemID]
	if !ok || record.entity.State.Terminal() {
		return
	}
	record.entity.State = update.State
	record.entity.SkillID = update.SkillID
	record.entity.Output = update.Output
	record.entity.ErrorCode = update.ErrorCode
	record.entity.ErrorDetail = update.ErrorDetail
	record.entity.Retryable = update.Retryable
	record.entity.UpdatedAt = s.now()

	s.logger().Info("work item reached terminal state",
		"event", "orchestrator_item_terminal",
		"module", "routing-core/work-orchestrator",
		"layer", "application",
		"item_id", itemID,
		"attempt", record.entity.Attempt,
		"state", string(update.State),
		"error_code", update.ErrorCode,
	)
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
