package entities

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Stable error codes carried on terminal results. Codes name the condition,
// the free-form detail names the specifics.
const (
	CodeValidation             = "validation"
	CodeNotConfigured          = "not_configured"
	CodeUnknownSkill           = "unknown_skill"
	CodeUnroutable             = "unroutable"
	CodeHandlerTimeout         = "handler_timeout"
	CodeHandlerFailure         = "handler_failure"
	CodeAllCandidatesExhausted = "all_candidates_exhausted"
	CodeCancelled              = "cancelled"
	CodeStorage                = "storage"
)

// Result is the terminal outcome of one dispatch attempt. SkillID names the
// handler that actually produced the result, which may differ from the
// routing decision's target when a fallback candidate succeeded.
type Result struct {
	ItemID      string
	Attempt     int
	Status      Status
	SkillID     string
	Output      map[string]any
	ErrorCode   string
	ErrorDetail string
	Retryable   bool
}
