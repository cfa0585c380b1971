package ports

import (
	"context"
	"time"
)

// EvidencePayload is one artifact produced by a handler invocation.
type EvidencePayload struct {
	Kind    string
	Payload map[string]any
}

// InvocationResult is what a handler returns on success.
type InvocationResult struct {
	Output   map[string]any
	Evidence []EvidencePayload
}

// Handler is the single invocation contract every skill implements.
// The context carries the dispatcher's time budget; handlers are expected to
// honor cancellation cooperatively.
type Handler interface {
	Invoke(ctx context.Context, payload map[string]any) (InvocationResult, error)
}

// HandlerFunc adapts a function to the Handler contract.
type HandlerFunc func(ctx context.Context, payload map[string]any) (InvocationResult, error)

func (f HandlerFunc) Invoke(ctx context.Context, payload map[string]any) (InvocationResult, error) {
	return f(ctx, payload)
}

type Clock interface {
	Now() time.Time
}
