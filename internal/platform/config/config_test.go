package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "archeli" {
		t.Fatalf("expected default service name, got %q", cfg.ServiceName)
	}
	if cfg.AdmissionPolicy != AdmissionPolicyReject {
		t.Fatalf("expected reject admission policy default, got %q", cfg.AdmissionPolicy)
	}
	if cfg.HandlerTimeout != 30*time.Second {
		t.Fatalf("expected 30s handler timeout default, got %s", cfg.HandlerTimeout)
	}
}

func TestLoadAdmissionPolicyQueue(t *testing.T) {
	t.Setenv("DISPATCH_ADMISSION_POLICY", "QUEUE")
	t.Setenv("DISPATCH_QUEUE_DEPTH", "4")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AdmissionPolicy != AdmissionPolicyQueue {
		t.Fatalf("expected queue policy, got %q", cfg.AdmissionPolicy)
	}
	if cfg.AdmissionQueueDepth != 4 {
		t.Fatalf("expected queue depth 4, got %d", cfg.AdmissionQueueDepth)
	}
}

func TestEnvDurationRejectsGarbage(t *testing.T) {
	t.Setenv("HANDLER_TIMEOUT_MS", "soon")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HandlerTimeout != 30*time.Second {
		t.Fatalf("expected fallback timeout, got %s", cfg.HandlerTimeout)
	}
}
