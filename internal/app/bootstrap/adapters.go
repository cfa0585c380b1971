package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	ledgerapp "archeli/contexts/audit-ledger/evidence-ledger/application"
	ledgerentities "archeli/contexts/audit-ledger/evidence-ledger/domain/entities"
	ledgererrors "archeli/contexts/audit-ledger/evidence-ledger/domain/errors"
	skillapp "archeli/contexts/capability-runtime/skill-registry/application"
	skillerrors "archeli/contexts/capability-runtime/skill-registry/domain/errors"
	skillports "archeli/contexts/capability-runtime/skill-registry/ports"
	dispatchapp "archeli/contexts/routing-core/dispatch-engine/application"
	dispatchentities "archeli/contexts/routing-core/dispatch-engine/domain/entities"
	dispatcherrors "archeli/contexts/routing-core/dispatch-engine/domain/errors"
	dispatchports "archeli/contexts/routing-core/dispatch-engine/ports"
	ruleapp "archeli/contexts/routing-core/rule-engine/application"
	ruleerrors "archeli/contexts/routing-core/rule-engine/domain/errors"
	ruleports "archeli/contexts/routing-core/rule-engine/ports"
	orcherrors "archeli/contexts/routing-core/work-orchestrator/domain/errors"
	orchports "archeli/contexts/routing-core/work-orchestrator/ports"
)

// The modules each define their own port structs; these adapters are the
// only place the shapes are converted between contexts.

type ruleMatcher struct {
	rules *ruleapp.Service
}

func (m ruleMatcher) Match(item orchports.WorkItem) ([]orchports.Candidate, error) {
	matched, err := m.rules.Match(ruleports.WorkItem{ID: item.ID, Kind: item.Kind, Payload: item.Payload})
	if err != nil {
		if errors.Is(err, ruleerrors.ErrNotConfigured) {
			return nil, orcherrors.ErrRoutingNotConfigured
		}
		return nil, err
	}
	candidates := make([]orchports.Candidate, 0, len(matched))
	for _, candidate := range matched {
		candidates = append(candidates, orchports.Candidate{
			RuleID:   candidate.RuleID,
			SkillID:  candidate.SkillID,
			Priority: candidate.Priority,
			Score:    candidate.Score,
		})
	}
	return candidates, nil
}

type skillDirectory struct {
	registry *skillapp.Service
}

func (d skillDirectory) Resolve(id string) (dispatchports.Handler, error) {
	handler, err := d.registry.Resolve(id)
	if err != nil {
		if errors.Is(err, skillerrors.ErrUnknownSkill) {
			return nil, dispatcherrors.ErrUnknownSkill
		}
		return nil, err
	}
	return skillHandler{handler: handler}, nil
}

func (d skillDirectory) IsAvailable(id string) bool {
	return d.registry.IsAvailable(id)
}

func (d skillDirectory) Admit(ctx context.Context, id string) (func(), error) {
	release, err := d.registry.Admit(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, skillerrors.ErrSkillBusy):
			return nil, dispatcherrors.ErrSkillBusy
		case errors.Is(err, skillerrors.ErrUnknownSkill):
			return nil, dispatcherrors.ErrUnknownSkill
		}
		return nil, err
	}
	return release, nil
}

type skillHandler struct {
	handler skillports.Handler
}

func (h skillHandler) Invoke(ctx context.Context, payload map[string]any) (dispatchports.InvocationResult, error) {
	result, err := h.handler.Invoke(ctx, payload)
	if err != nil {
		return dispatchports.InvocationResult{}, err
	}
	evidence := make([]dispatchports.EvidencePayload, 0, len(result.Evidence))
	for _, artifact := range result.Evidence {
		evidence = append(evidence, dispatchports.EvidencePayload{
			Kind:    artifact.Kind,
			Payload: artifact.Payload,
		})
	}
	return dispatchports.InvocationResult{Output: result.Output, Evidence: evidence}, nil
}

type dispatchRunner struct {
	service dispatchapp.Service
}

func (d dispatchRunner) Dispatch(
	ctx context.Context,
	item orchports.WorkItem,
	candidates []orchports.Candidate,
) (orchports.Outcome, error) {
	converted := make([]dispatchports.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		converted = append(converted, dispatchports.Candidate{
			RuleID:   candidate.RuleID,
			SkillID:  candidate.SkillID,
			Priority: candidate.Priority,
			Score:    candidate.Score,
		})
	}
	result, err := d.service.Dispatch(ctx, dispatchports.WorkItem{
		ID:      item.ID,
		Kind:    item.Kind,
		Payload: item.Payload,
		Attempt: item.Attempt,
	}, converted)
	if err != nil {
		return orchports.Outcome{}, err
	}
	return orchports.Outcome{
		ItemID:      result.ItemID,
		Attempt:     result.Attempt,
		Status:      string(result.Status),
		SkillID:     result.SkillID,
		Output:      result.Output,
		ErrorCode:   result.ErrorCode,
		ErrorDetail: result.ErrorDetail,
		Retryable:   result.Retryable,
	}, nil
}

type attemptLedger struct {
	ledger ledgerapp.Service
}

func (l attemptLedger) CommitAttempt(ctx context.Context, record dispatchports.AttemptRecord) error {
	attempt := ledgerentities.Attempt{
		Outcome: ledgerentities.Outcome{
			ItemID:      record.Result.ItemID,
			Attempt:     record.Result.Attempt,
			Status:      outcomeStatus(string(record.Result.Status)),
			SkillID:     record.Result.SkillID,
			ErrorCode:   record.Result.ErrorCode,
			ErrorDetail: record.Result.ErrorDetail,
			Retryable:   record.Result.Retryable,
		},
	}
	if record.Decision != nil {
		attempt.Decision = &ledgerentities.RoutingDecision{
			RuleID:  record.Decision.RuleID,
			SkillID: record.Decision.SkillID,
			Score:   record.Decision.Score,
		}
	}
	for _, entry := range record.Evidence {
		payload, err := json.Marshal(entry.Payload)
		if err != nil {
			return fmt.Errorf("%w: encode evidence payload: %v", ledgererrors.ErrInvalidRecord, err)
		}
		attempt.Evidence = append(attempt.Evidence, ledgerentities.EvidenceRecord{
			SkillID:     entry.SkillID,
			Kind:        entry.Kind,
			Payload:     payload,
			Fingerprint: ledgerapp.Fingerprint(entry.Kind, entry.Payload),
		})
	}
	_, err := l.ledger.CommitAttempt(ctx, attempt)
	return err
}

type outcomeLedger struct {
	ledger ledgerapp.Service
}

func (l outcomeLedger) RecordOutcome(ctx context.Context, outcome orchports.Outcome) error {
	_, err := l.ledger.CommitAttempt(ctx, ledgerentities.Attempt{
		Outcome: ledgerentities.Outcome{
			ItemID:      outcome.ItemID,
			Attempt:     outcome.Attempt,
			Status:      outcomeStatus(outcome.Status),
			SkillID:     outcome.SkillID,
			ErrorCode:   outcome.ErrorCode,
			ErrorDetail: outcome.ErrorDetail,
			Retryable:   outcome.Retryable,
			CompletedAt: outcome.CompletedAt,
		},
	})
	return err
}

func (l outcomeLedger) LatestOutcome(ctx context.Context, itemID string) (orchports.Outcome, bool, error) {
	outcome, err := l.ledger.LatestOutcome(ctx, itemID)
	if errors.Is(err, ledgererrors.ErrOutcomeNotFound) {
		return orchports.Outcome{}, false, nil
	}
	if err != nil {
		return orchports.Outcome{}, false, err
	}
	return orchports.Outcome{
		ItemID:      outcome.ItemID,
		Attempt:     outcome.Attempt,
		Status:      string(outcome.Status),
		SkillID:     outcome.SkillID,
		ErrorCode:   outcome.ErrorCode,
		ErrorDetail: outcome.ErrorDetail,
		Retryable:   outcome.Retryable,
		CompletedAt: outcome.CompletedAt,
	}, true, nil
}

func outcomeStatus(status string) ledgerentities.OutcomeStatus {
	if status == string(dispatchentities.StatusCompleted) {
		return ledgerentities.OutcomeCompleted
	}
	return ledgerentities.OutcomeFailed
}

type snapshotReloader struct {
	rules *ruleapp.Service
}

func (r snapshotReloader) Reload() error {
	_, err := r.rules.Reload()
	return err
}
