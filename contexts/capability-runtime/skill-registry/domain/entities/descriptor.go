package entities

import "time"

type Health string

const (
	HealthAvailable   Health = "available"
	HealthUnavailable Health = "unavailable"
)

type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceScript  Source = "script"
)

// Descriptor identifies a registered skill and its declared capabilities.
// Health is advisory: an unavailable skill stays registered and is only
// skipped when the dispatcher walks fallback candidates.
type Descriptor struct {
	ID           string
	Version      string
	Description  string
	Capabilities []string
	Source       Source
	Concurrency  int
	Health       Health
	RegisteredAt time.Time
}

// EffectiveConcurrency normalizes the invocation cap; descriptors that do not
// declare one get a single slot.
func (d Descriptor) EffectiveConcurrency() int {
	if d.Concurrency <= 0 {
		return 1
	}
	return d.Concurrency
}
