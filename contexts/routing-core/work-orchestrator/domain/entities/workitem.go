package entities

import "time"

type State string

const (
	StateReceived   State = "received"
	StateRouting    State = "routing"
	StateDispatched State = "dispatched"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Error codes the orchestrator itself stamps on terminal items. Codes
// produced inside the dispatcher's candidate loop pass through unchanged.
const (
	CodeValidation    = "validation"
	CodeNotConfigured = "not_configured"
	CodeUnroutable    = "unroutable"
	CodeCancelled     = "cancelled"
	CodeStorage       = "storage"
)

// WorkItem is the orchestrator's record of one item, mutated in place as the
// state machine advances. SkillID and Output are set only on completion.
type WorkItem struct {
	ID          string
	Kind        string
	Payload     map[string]any
	Attempt     int
	State       State
	SkillID     string
	Output      map[string]any
	ErrorCode   string
	ErrorDetail string
	Retryable   bool
	SubmittedAt time.Time
	UpdatedAt   time.Time
}
