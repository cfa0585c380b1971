package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"archeli/contexts/routing-core/dispatch-engine/domain/entities"
	domainerrors "archeli/contexts/routing-core/dispatch-engine/domain/errors"
	"archeli/contexts/routing-core/dispatch-engine/ports"
)

const (
	defaultHandlerTimeout = 30 * time.Second
	commitTimeout         = 5 * time.Second
)

type Service struct {
	Skills         ports.SkillDirectory
	Ledger         ports.Ledger
	Clock          ports.Clock
	HandlerTimeout time.Duration
	Logger         *slog.Logger
}

// Dispatch walks the candidates in match order and invokes the first one
// that resolves, reports available, and passes admission. A handler failure
// or timeout exhausts that candidate and the walk continues; success commits
// the attempt to the ledger and stops. The committed decision always names
// the first candidate in the list, the result names the skill that actually
// produced it.
func (s Service) Dispatch(ctx context.Context, item ports.WorkItem, candidates []ports.Candidate) (entities.Result, error) {
	if len(candidates) == 0 {
		return entities.Result{}, domainerrors.ErrNoCandidates
	}

	decision := &ports.Decision{
		RuleID:  candidates[0].RuleID,
		SkillID: candidates[0].SkillID,
		Score:   candidates[0].Score,
		Attempt: item.Attempt,
	}

	var notes []string
	transient := false

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return s.commit(ctx, decision, nil, s.cancelledResult(item, candidate.SkillID))
		}

		handler, err := s.Skills.Resolve(candidate.SkillID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrUnknownSkill) {
				notes = append(notes, candidate.SkillID+": not registered")
			} else {
				notes = append(notes, fmt.Sprintf("%s: resolve: %v", candidate.SkillID, err))
			}
			continue
		}
		if !s.Skills.IsAvailable(candidate.SkillID) {
			notes = append(notes, candidate.SkillID+": unavailable")
			continue
		}

		release, err := s.Skills.Admit(ctx, candidate.SkillID)
		if err != nil {
			switch {
			case errors.Is(err, domainerrors.ErrSkillBusy):
				transient = true
				notes = append(notes, candidate.SkillID+": busy")
			case ctx.Err() != nil:
				return s.commit(ctx, decision, nil, s.cancelledResult(item, candidate.SkillID))
			default:
				notes = append(notes, fmt.Sprintf("%s: admit: %v", candidate.SkillID, err))
			}
			continue
		}

		invocation, err := s.invoke(ctx, handler, item.Payload, release)
		if err == nil {
			result := entities.Result{
				ItemID:  item.ID,
				Attempt: item.Attempt,
				Status:  entities.StatusCompleted,
				SkillID: candidate.SkillID,
				Output:  invocation.Output,
			}
			return s.commit(ctx, decision, evidenceEntries(candidate.SkillID, invocation.Evidence), result)
		}

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			transient = true
			notes = append(notes, candidate.SkillID+": handler timeout")
			s.logger().Warn("handler timed out, trying next candidate",
				"event", "dispatch_handler_timeout",
				"module", "routing-core/dispatch-engine",
				"layer", "application",
				"item_id", item.ID,
				"skill_id", candidate.SkillID,
			)
		case errors.Is(err, context.Canceled):
			return s.commit(ctx, decision, nil, s.cancelledResult(item, candidate.SkillID))
		default:
			notes = append(notes, fmt.Sprintf("%s: %v", candidate.SkillID, err))
		}
	}

	result := entities.Result{
		ItemID:      item.ID,
		Attempt:     item.Attempt,
		Status:      entities.StatusFailed,
		ErrorCode:   entities.CodeAllCandidatesExhausted,
		ErrorDetail: strings.Join(notes, "; "),
		Retryable:   transient,
	}
	return s.commit(ctx, decision, nil, result)
}

// invoke runs the handler under the configured time budget. The admission
// slot is released only when the handler actually returns; a result arriving
// after the budget elapsed is discarded and never reaches the ledger.
func (s Service) invoke(
	ctx context.Context,
	handler ports.Handler,
	payload map[string]any,
	release func(),
) (ports.InvocationResult, error) {
	budget := s.HandlerTimeout
	if budget <= 0 {
		budget = defaultHandlerTimeout
	}
	invokeCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	type reply struct {
		result ports.InvocationResult
		err    error
	}
	done := make(chan reply, 1)
	go func() {
		defer release()
		result, err := handler.Invoke(invokeCtx, payload)
		done <- reply{result: result, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return ports.InvocationResult{}, r.err
		}
		return r.result, nil
	case <-invokeCtx.Done():
		return ports.InvocationResult{}, invokeCtx.Err()
	}
}

// commit persists the attempt on a detached context so terminal results
// survive caller cancellation.
func (s Service) commit(
	ctx context.Context,
	decision *ports.Decision,
	evidence []ports.EvidenceEntry,
	result entities.Result,
) (entities.Result, error) {
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()

	record := ports.AttemptRecord{Decision: decision, Evidence: evidence, Result: result}
	if err := s.Ledger.CommitAttempt(commitCtx, record); err != nil {
		s.logger().Error("attempt commit failed",
			"event", "dispatch_commit_failed",
			"module", "routing-core/dispatch-engine",
			"layer", "application",
			"item_id", result.ItemID,
			"error", err.Error(),
		)
		return entities.Result{}, fmt.Errorf("commit dispatch attempt for item %s: %w", result.ItemID, err)
	}
	return result, nil
}

func (s Service) cancelledResult(item ports.WorkItem, nextSkill string) entities.Result {
	return entities.Result{
		ItemID:      item.ID,
		Attempt:     item.Attempt,
		Status:      entities.StatusFailed,
		ErrorCode:   entities.CodeCancelled,
		ErrorDetail: "cancelled before invoking " + nextSkill,
	}
}

func evidenceEntries(skillID string, payloads []ports.EvidencePayload) []ports.EvidenceEntry {
	if len(payloads) == 0 {
		return nil
	}
	entries := make([]ports.EvidenceEntry, 0, len(payloads))
	for _, payload := range payloads {
		entries = append(entries, ports.EvidenceEntry{
			SkillID: skillID,
			Kind:    payload.Kind,
			Payload: payload.Payload,
		})
	}
	return entries
}

func (s Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
