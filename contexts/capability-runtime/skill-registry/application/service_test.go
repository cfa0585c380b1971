package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"archeli/contexts/capability-runtime/skill-registry/domain/entities"
	domainerrors "archeli/contexts/capability-runtime/skill-registry/domain/errors"
	"archeli/contexts/capability-runtime/skill-registry/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func okHandler() ports.Handler {
	return ports.HandlerFunc(func(context.Context, map[string]any) (ports.InvocationResult, error) {
		return ports.InvocationResult{}, nil
	})
}

func newTestService(policy string, depth int) *Service {
	return NewService(fixedClock{now: time.Unix(1000, 0)}, nil, policy, depth)
}

func TestRegisterResolveDeregister(t *testing.T) {
	service := newTestService(AdmissionPolicyReject, 1)
	descriptor := entities.Descriptor{ID: "summarize", Concurrency: 2}
	if err := service.Register(descriptor, okHandler()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := service.Register(descriptor, okHandler()); !errors.Is(err, domainerrors.ErrDuplicateSkill) {
		t.Fatalf("expected duplicate skill error, got %v", err)
	}
	if _, err := service.Resolve("summarize"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := service.Resolve("absent"); !errors.Is(err, domainerrors.ErrUnknownSkill) {
		t.Fatalf("expected unknown skill error, got %v", err)
	}
	if err := service.Deregister("summarize"); err != nil {
		t.Fatalf("deregister: %v", err)
	}
	if _, err := service.Resolve("summarize"); !errors.Is(err, domainerrors.ErrUnknownSkill) {
		t.Fatalf("expected unknown skill after deregister, got %v", err)
	}
}

func TestHealthIsAdvisoryAndKeepsRegistration(t *testing.T) {
	service := newTestService(AdmissionPolicyReject, 1)
	if err := service.Register(entities.Descriptor{ID: "s1"}, okHandler()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !service.IsAvailable("s1") {
		t.Fatalf("fresh registration must be available")
	}
	if err := service.SetHealth("s1", entities.HealthUnavailable); err != nil {
		t.Fatalf("set health: %v", err)
	}
	if service.IsAvailable("s1") {
		t.Fatalf("expected unavailable after health flip")
	}
	if _, err := service.Resolve("s1"); err != nil {
		t.Fatalf("unavailable skill must stay registered: %v", err)
	}
}

func TestAdmitRejectPolicyCapsInFlight(t *testing.T) {
	service := newTestService(AdmissionPolicyReject, 1)
	if err := service.Register(entities.Descriptor{ID: "s1", Concurrency: 1}, okHandler()); err != nil {
		t.Fatalf("register: %v", err)
	}

	release, err := service.Admit(context.Background(), "s1")
	if err != nil {
		t.Fatalf("first admit: %v", err)
	}
	if _, err := service.Admit(context.Background(), "s1"); !errors.Is(err, domainerrors.ErrSkillBusy) {
		t.Fatalf("expected busy at limit, got %v", err)
	}

	release()
	release2, err := service.Admit(context.Background(), "s1")
	if err != nil {
		t.Fatalf("admit after release: %v", err)
	}
	release2()
}

func TestAdmitQueuePolicyWaitsForSlot(t *testing.T) {
	service := newTestService(AdmissionPolicyQueue, 2)
	if err := service.Register(entities.Descriptor{ID: "s1", Concurrency: 1}, okHandler()); err != nil {
		t.Fatalf("register: %v", err)
	}

	release, err := service.Admit(context.Background(), "s1")
	if err != nil {
		t.Fatalf("first admit: %v", err)
	}

	admitted := make(chan struct{})
	go func() {
		waited, err := service.Admit(context.Background(), "s1")
		if err != nil {
			t.Errorf("queued admit: %v", err)
			close(admitted)
			return
		}
		waited()
		close(admitted)
	}()

	select {
	case <-admitted:
		t.Fatalf("queued admit must block while the slot is held")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	select {
	case <-admitted:
	case <-time.After(time.Second):
		t.Fatalf("queued admit never acquired the released slot")
	}
}

func TestAdmitQueuePolicyBoundsWaiters(t *testing.T) {
	service := newTestService(AdmissionPolicyQueue, 1)
	if err := service.Register(entities.Descriptor{ID: "s1", Concurrency: 1}, okHandler()); err != nil {
		t.Fatalf("register: %v", err)
	}

	release, err := service.Admit(context.Background(), "s1")
	if err != nil {
		t.Fatalf("first admit: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	waiting := make(chan error, 1)
	go func() {
		_, err := service.Admit(ctx, "s1")
		waiting <- err
	}()
	time.Sleep(20 * time.Millisecond) // let the waiter enter the queue

	if _, err := service.Admit(context.Background(), "s1"); !errors.Is(err, domainerrors.ErrSkillBusy) {
		t.Fatalf("expected busy once the queue is full, got %v", err)
	}

	cancel()
	if err := <-waiting; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled waiter, got %v", err)
	}
}

func TestAdmitUnknownSkill(t *testing.T) {
	service := newTestService(AdmissionPolicyReject, 1)
	if _, err := service.Admit(context.Background(), "ghost"); !errors.Is(err, domainerrors.ErrUnknownSkill) {
		t.Fatalf("expected unknown skill, got %v", err)
	}
}

func TestInvokeRunsHandlerAndReleasesSlot(t *testing.T) {
	service := newTestService(AdmissionPolicyReject, 1)
	handler := ports.HandlerFunc(func(_ context.Context, payload map[string]any) (ports.InvocationResult, error) {
		return ports.InvocationResult{
			Output:   payload,
			Evidence: []ports.EvidencePayload{{Kind: "trace", Payload: payload}},
		}, nil
	})
	if err := service.Register(entities.Descriptor{ID: "s1", Concurrency: 1}, handler); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 2; i++ {
		result, err := service.Invoke(context.Background(), "s1", map[string]any{"n": i})
		if err != nil {
			t.Fatalf("invoke %d must reuse the released slot: %v", i, err)
		}
		if result.Output["n"] != i || len(result.Evidence) != 1 {
			t.Fatalf("unexpected invocation result: %+v", result)
		}
	}
}

func TestInvokeRejectsUnknownUnavailableAndBusy(t *testing.T) {
	service := newTestService(AdmissionPolicyReject, 1)
	if err := service.Register(entities.Descriptor{ID: "s1", Concurrency: 1}, okHandler()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := service.Invoke(context.Background(), "ghost", nil); !errors.Is(err, domainerrors.ErrUnknownSkill) {
		t.Fatalf("expected unknown skill, got %v", err)
	}

	release, err := service.Admit(context.Background(), "s1")
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if _, err := service.Invoke(context.Background(), "s1", nil); !errors.Is(err, domainerrors.ErrSkillBusy) {
		t.Fatalf("direct invoke must share the concurrency limit, got %v", err)
	}
	release()

	if err := service.SetHealth("s1", entities.HealthUnavailable); err != nil {
		t.Fatalf("set health: %v", err)
	}
	if _, err := service.Invoke(context.Background(), "s1", nil); !errors.Is(err, domainerrors.ErrSkillUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
