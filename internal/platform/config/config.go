package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	APIKey      string

	DBPath           string
	RoutingRulesPath string
	SkillsDir        string
	EvidenceDir      string

	HandlerTimeout      time.Duration
	AdmissionPolicy     string // reject | queue
	AdmissionQueueDepth int

	RuleReloadInterval time.Duration
	OutboxBatchSize    int
}

const (
	AdmissionPolicyReject = "reject"
	AdmissionPolicyQueue  = "queue"
)

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "archeli"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./archeli.db"
	}

	rulesPath := os.Getenv("ROUTING_RULES_PATH")
	if rulesPath == "" {
		rulesPath = "./configs/routing_rules.yaml"
	}

	skillsDir := os.Getenv("SKILLS_DIR")
	if skillsDir == "" {
		skillsDir = "./skills"
	}

	evidenceDir := os.Getenv("EVIDENCE_DIR")
	if evidenceDir == "" {
		evidenceDir = "./evidence"
	}

	policy := strings.TrimSpace(strings.ToLower(os.Getenv("DISPATCH_ADMISSION_POLICY")))
	if policy != AdmissionPolicyQueue {
		policy = AdmissionPolicyReject
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		APIKey:      strings.TrimSpace(os.Getenv("API_KEY")),

		DBPath:           dbPath,
		RoutingRulesPath: rulesPath,
		SkillsDir:        skillsDir,
		EvidenceDir:      evidenceDir,

		HandlerTimeout:      envDurationMS("HANDLER_TIMEOUT_MS", 30*time.Second),
		AdmissionPolicy:     policy,
		AdmissionQueueDepth: envInt("DISPATCH_QUEUE_DEPTH", 16),

		RuleReloadInterval: envDurationMS("RULE_RELOAD_INTERVAL_MS", 5*time.Second),
		OutboxBatchSize:    envInt("OUTBOX_BATCH_SIZE", 100),
	}, nil
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envDurationMS(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
