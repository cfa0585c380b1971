package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"archeli/contexts/capability-runtime/skill-registry/domain/entities"
	domainerrors "archeli/contexts/capability-runtime/skill-registry/domain/errors"
	"archeli/contexts/capability-runtime/skill-registry/ports"
)

const (
	AdmissionPolicyReject = "reject"
	AdmissionPolicyQueue  = "queue"
)

// Service is the skill registry. It resolves handlers by id and enforces the
// per-skill concurrency limit through a weighted semaphore per entry.
type Service struct {
	Clock      ports.Clock
	Logger     *slog.Logger
	Policy     string
	QueueDepth int

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	descriptor entities.Descriptor
	handler    ports.Handler
	slots      *semaphore.Weighted
	waiters    atomic.Int64
}

func NewService(clock ports.Clock, logger *slog.Logger, policy string, queueDepth int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if policy != AdmissionPolicyQueue {
		policy = AdmissionPolicyReject
	}
	if queueDepth <= 0 {
		queueDepth = 16
	}
	return &Service{
		Clock:      clock,
		Logger:     logger,
		Policy:     policy,
		QueueDepth: queueDepth,
		entries:    make(map[string]*entry),
	}
}

func (s *Service) Register(descriptor entities.Descriptor, handler ports.Handler) error {
	id := strings.TrimSpace(descriptor.ID)
	if id == "" || handler == nil {
		return domainerrors.ErrInvalidManifest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; exists {
		return domainerrors.ErrDuplicateSkill
	}

	descriptor.ID = id
	if descriptor.Health == "" {
		descriptor.Health = entities.HealthAvailable
	}
	if descriptor.RegisteredAt.IsZero() {
		descriptor.RegisteredAt = s.now()
	}
	s.entries[id] = &entry{
		descriptor: descriptor,
		handler:    handler,
		slots:      semaphore.NewWeighted(int64(descriptor.EffectiveConcurrency())),
	}

	s.Logger.Info("skill registered",
		"event", "skill_registry_registered",
		"module", "capability-runtime/skill-registry",
		"layer", "application",
		"skill_id", id,
		"source", string(descriptor.Source),
		"concurrency", descriptor.EffectiveConcurrency(),
	)
	return nil
}

func (s *Service) Deregister(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; !exists {
		return domainerrors.ErrUnknownSkill
	}
	delete(s.entries, id)
	return nil
}

func (s *Service) Resolve(id string) (ports.Handler, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.entries[id]
	if !ok {
		return nil, domainerrors.ErrUnknownSkill
	}
	return item.handler, nil
}

func (s *Service) IsAvailable(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.entries[id]
	return ok && item.descriptor.Health == entities.HealthAvailable
}

// SetHealth flips advisory health without removing the registration.
func (s *Service) SetHealth(id string, health entities.Health) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.entries[id]
	if !ok {
		return domainerrors.ErrUnknownSkill
	}
	item.descriptor.Health = health
	return nil
}

func (s *Service) List() []entities.Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Descriptor, 0, len(s.entries))
	for _, item := range s.entries {
		out = append(out, item.descriptor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Admit claims one invocation slot for the skill and returns its release.
// Reject policy fails immediately with ErrSkillBusy when the limit is hit;
// queue policy waits FIFO up to QueueDepth waiters. A queued invocation counts
// toward the limit only once the slot is actually acquired.
func (s *Service) Admit(ctx context.Context, id string) (func(), error) {
	s.mu.RLock()
	item, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domainerrors.ErrUnknownSkill
	}

	if s.Policy == AdmissionPolicyQueue {
		if item.waiters.Load() >= int64(s.QueueDepth) {
			return nil, domainerrors.ErrSkillBusy
		}
		item.waiters.Add(1)
		defer item.waiters.Add(-1)
		if err := item.slots.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		return func() { item.slots.Release(1) }, nil
	}

	if !item.slots.TryAcquire(1) {
		return nil, domainerrors.ErrSkillBusy
	}
	return func() { item.slots.Release(1) }, nil
}

// Invoke runs a registered handler directly, outside the routing path.
// Direct calls claim an admission slot like dispatched work, so both paths
// share the skill's concurrency limit.
func (s *Service) Invoke(ctx context.Context, id string, payload map[string]any) (ports.InvocationResult, error) {
	handler, err := s.Resolve(id)
	if err != nil {
		return ports.InvocationResult{}, err
	}
	if !s.IsAvailable(id) {
		return ports.InvocationResult{}, domainerrors.ErrSkillUnavailable
	}
	release, err := s.Admit(ctx, id)
	if err != nil {
		return ports.InvocationResult{}, err
	}
	defer release()
	return handler.Invoke(ctx, payload)
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
