package builtin

import (
	"context"
	"errors"

	"archeli/contexts/capability-runtime/skill-registry/domain/entities"
	"archeli/contexts/capability-runtime/skill-registry/ports"
)

// Handlers returns the builtin skills compiled into the binary.
// Script manifests with kind "builtin" resolve their entry through this map.
func Handlers() map[string]ports.Handler {
	return map[string]ports.Handler{
		"echo": ports.HandlerFunc(echo),
		"noop": ports.HandlerFunc(noop),
	}
}

// Descriptors returns default descriptors for builtins registered without a
// manifest, so a bare skills directory still yields a working process.
func Descriptors() []entities.Descriptor {
	return []entities.Descriptor{
		{
			ID:           "echo",
			Version:      "1.0",
			Description:  "returns the payload unchanged and records it as evidence",
			Capabilities: []string{"diagnostic"},
			Source:       entities.SourceBuiltin,
			Concurrency:  4,
		},
		{
			ID:           "noop",
			Version:      "1.0",
			Description:  "accepts any payload and produces no evidence",
			Capabilities: []string{"diagnostic"},
			Source:       entities.SourceBuiltin,
			Concurrency:  4,
		},
	}
}

func echo(ctx context.Context, payload map[string]any) (ports.InvocationResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.InvocationResult{}, err
	}
	if payload == nil {
		return ports.InvocationResult{}, errors.New("echo requires a payload")
	}
	return ports.InvocationResult{
		Output: payload,
		Evidence: []ports.EvidencePayload{
			{Kind: "echo", Payload: payload},
		},
	}, nil
}

func noop(ctx context.Context, _ map[string]any) (ports.InvocationResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.InvocationResult{}, err
	}
	return ports.InvocationResult{Output: map[string]any{"ok": true}}, nil
}
