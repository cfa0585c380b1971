package sqliteadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"archeli/contexts/audit-ledger/evidence-ledger/domain/entities"
	domainerrors "archeli/contexts/audit-ledger/evidence-ledger/domain/errors"
	"archeli/contexts/audit-ledger/evidence-ledger/ports"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// AutoMigrate creates the ledger tables on the embedded database file.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&decisionModel{},
		&evidenceModel{},
		&outcomeModel{},
		&outboxModel{},
	)
}

func (r *Repository) CommitAttempt(ctx context.Context, attempt entities.Attempt, outbox ports.OutboxMessage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if attempt.Decision != nil {
			row := decisionModelFromEntity(*attempt.Decision)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, record := range attempt.Evidence {
			row := evidenceModelFromEntity(record)
			// Duplicate (item_id, fingerprint) pairs are silently kept as-is.
			create := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "item_id"}, {Name: "fingerprint"}},
				DoNothing: true,
			}).Create(&row)
			if create.Error != nil {
				return create.Error
			}
		}
		outcomeRow := outcomeModelFromEntity(attempt.Outcome)
		if err := tx.Create(&outcomeRow).Error; err != nil {
			return err
		}
		outboxRow := outboxModel{
			ID:        outbox.OutboxID,
			EventType: outbox.EventType,
			Payload:   outbox.Payload,
			Status:    outboxStatusPending,
			CreatedAt: outbox.CreatedAt.UTC(),
		}
		return tx.Create(&outboxRow).Error
	})
	if err != nil {
		return r.logError("ledger_commit_attempt_failed", err,
			"item_id", attempt.Outcome.ItemID,
			"attempt", attempt.Outcome.Attempt,
		)
	}
	return nil
}

func (r *Repository) AppendEvidence(ctx context.Context, record entities.EvidenceRecord) error {
	row := evidenceModelFromEntity(record)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}, {Name: "fingerprint"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ledger_append_evidence_failed", create.Error,
			"item_id", record.ItemID,
			"fingerprint", record.Fingerprint,
		)
	}
	return nil
}

func (r *Repository) ListEvidenceByItem(ctx context.Context, itemID string) ([]entities.EvidenceRecord, error) {
	var rows []evidenceModel
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_list_evidence_by_item_failed", err, "item_id", itemID)
	}
	return toEvidenceEntities(rows), nil
}

func (r *Repository) ListEvidenceByRange(ctx context.Context, from, to time.Time, limit int) ([]entities.EvidenceRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	tx := r.db.WithContext(ctx).Model(&evidenceModel{}).
		Where("created_at >= ?", from.UTC())
	if !to.IsZero() {
		tx = tx.Where("created_at < ?", to.UTC())
	}
	var rows []evidenceModel
	if err := tx.Order("created_at ASC, id ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_list_evidence_by_range_failed", err)
	}
	return toEvidenceEntities(rows), nil
}

func (r *Repository) ListDecisions(ctx context.Context, itemID string) ([]entities.RoutingDecision, error) {
	var rows []decisionModel
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("decided_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_list_decisions_failed", err, "item_id", itemID)
	}
	decisions := make([]entities.RoutingDecision, 0, len(rows))
	for _, row := range rows {
		decisions = append(decisions, row.toEntity())
	}
	return decisions, nil
}

func (r *Repository) LatestOutcome(ctx context.Context, itemID string) (entities.Outcome, error) {
	var row outcomeModel
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("attempt DESC, completed_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Outcome{}, domainerrors.ErrOutcomeNotFound
		}
		return entities.Outcome{}, r.logError("ledger_latest_outcome_failed", err, "item_id", itemID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListRecentOutcomes(ctx context.Context, limit int) ([]entities.Outcome, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outcomeModel
	if err := r.db.WithContext(ctx).
		Order("completed_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_list_recent_outcomes_failed", err)
	}
	outcomes := make([]entities.Outcome, 0, len(rows))
	for _, row := range rows {
		outcomes = append(outcomes, row.toEntity())
	}
	return outcomes, nil
}

func (r *Repository) CountEvidence(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&evidenceModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("ledger_count_evidence_failed", err)
	}
	return count, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_list_pending_outbox_failed", err)
	}
	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.OutboxMessage{
			OutboxID:  row.ID,
			EventType: row.EventType,
			Payload:   row.Payload,
			CreatedAt: row.CreatedAt,
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	update := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if update.Error != nil {
		return r.logError("ledger_mark_outbox_published_failed", update.Error, "outbox_id", outboxID)
	}
	return nil
}

func toEvidenceEntities(rows []evidenceModel) []entities.EvidenceRecord {
	records := make([]entities.EvidenceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toEntity())
	}
	return records
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "audit-ledger/evidence-ledger",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("ledger repository operation failed", fields...)
	return err
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
