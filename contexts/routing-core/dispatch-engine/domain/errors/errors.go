package errors

import "errors"

var (
	// ErrNoCandidates means dispatch was invoked with an empty candidate
	// list. The orchestrator treats that as unroutable before calling here.
	ErrNoCandidates = errors.New("candidate list is empty")

	// ErrUnknownSkill marks a candidate whose target is not registered.
	ErrUnknownSkill = errors.New("skill is not registered")

	// ErrSkillBusy marks a candidate whose concurrency budget is exhausted
	// under the reject admission policy.
	ErrSkillBusy = errors.New("skill concurrency budget exhausted")
)
