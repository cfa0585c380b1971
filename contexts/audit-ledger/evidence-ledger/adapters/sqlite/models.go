package sqliteadapter

import (
	"time"

	"archeli/contexts/audit-ledger/evidence-ledger/domain/entities"
)

type decisionModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	ItemID    string    `gorm:"column:item_id;index"`
	Attempt   int       `gorm:"column:attempt"`
	RuleID    string    `gorm:"column:rule_id"`
	SkillID   string    `gorm:"column:skill_id"`
	Score     float64   `gorm:"column:score"`
	DecidedAt time.Time `gorm:"column:decided_at;index"`
}

func (decisionModel) TableName() string { return "routing_decisions" }

type evidenceModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ItemID      string    `gorm:"column:item_id;uniqueIndex:idx_evidence_item_fingerprint;index"`
	Fingerprint string    `gorm:"column:fingerprint;uniqueIndex:idx_evidence_item_fingerprint"`
	SkillID     string    `gorm:"column:skill_id"`
	Kind        string    `gorm:"column:kind"`
	Payload     []byte    `gorm:"column:payload"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
}

func (evidenceModel) TableName() string { return "evidence_records" }

type outcomeModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ItemID      string    `gorm:"column:item_id;index"`
	Attempt     int       `gorm:"column:attempt"`
	Status      string    `gorm:"column:status"`
	SkillID     string    `gorm:"column:skill_id"`
	ErrorCode   string    `gorm:"column:error_code"`
	ErrorDetail string    `gorm:"column:error_detail"`
	Retryable   bool      `gorm:"column:retryable"`
	CompletedAt time.Time `gorm:"column:completed_at;index"`
}

func (outcomeModel) TableName() string { return "outcomes" }

type outboxModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "outbox_messages" }

func decisionModelFromEntity(decision entities.RoutingDecision) decisionModel {
	return decisionModel{
		ID:        decision.DecisionID,
		ItemID:    decision.ItemID,
		Attempt:   decision.Attempt,
		RuleID:    decision.RuleID,
		SkillID:   decision.SkillID,
		Score:     decision.Score,
		DecidedAt: decision.DecidedAt.UTC(),
	}
}

func (m decisionModel) toEntity() entities.RoutingDecision {
	return entities.RoutingDecision{
		DecisionID: m.ID,
		ItemID:     m.ItemID,
		Attempt:    m.Attempt,
		RuleID:     m.RuleID,
		SkillID:    m.SkillID,
		Score:      m.Score,
		DecidedAt:  m.DecidedAt,
	}
}

func evidenceModelFromEntity(record entities.EvidenceRecord) evidenceModel {
	return evidenceModel{
		ID:          record.EvidenceID,
		ItemID:      record.ItemID,
		Fingerprint: record.Fingerprint,
		SkillID:     record.SkillID,
		Kind:        record.Kind,
		Payload:     record.Payload,
		CreatedAt:   record.CreatedAt.UTC(),
	}
}

func (m evidenceModel) toEntity() entities.EvidenceRecord {
	return entities.EvidenceRecord{
		EvidenceID:  m.ID,
		ItemID:      m.ItemID,
		SkillID:     m.SkillID,
		Kind:        m.Kind,
		Payload:     m.Payload,
		Fingerprint: m.Fingerprint,
		CreatedAt:   m.CreatedAt,
	}
}

func outcomeModelFromEntity(outcome entities.Outcome) outcomeModel {
	return outcomeModel{
		ID:          outcome.OutcomeID,
		ItemID:      outcome.ItemID,
		Attempt:     outcome.Attempt,
		Status:      string(outcome.Status),
		SkillID:     outcome.SkillID,
		ErrorCode:   outcome.ErrorCode,
		ErrorDetail: outcome.ErrorDetail,
		Retryable:   outcome.Retryable,
		CompletedAt: outcome.CompletedAt.UTC(),
	}
}

func (m outcomeModel) toEntity() entities.Outcome {
	return entities.Outcome{
		OutcomeID:   m.ID,
		ItemID:      m.ItemID,
		Attempt:     m.Attempt,
		Status:      entities.OutcomeStatus(m.Status),
		SkillID:     m.SkillID,
		ErrorCode:   m.ErrorCode,
		ErrorDetail: m.ErrorDetail,
		Retryable:   m.Retryable,
		CompletedAt: m.CompletedAt,
	}
}
