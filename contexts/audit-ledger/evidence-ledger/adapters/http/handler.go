package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"archeli/contexts/audit-ledger/evidence-ledger/application"
	"archeli/contexts/audit-ledger/evidence-ledger/domain/entities"
	httptransport "archeli/contexts/audit-ledger/evidence-ledger/transport/http"
)

type Handler struct {
	Ledger application.Service
	Logger *slog.Logger
}

// ListItemEvidenceHandler godoc
// @Summary Evidence for one work item
// @Description Returns the item's evidence records in creation order.
// @Tags evidence-ledger
// @Produce json
// @Param item_id path string true "Work item id"
// @Success 200 {object} httptransport.ListEvidenceResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /v1/items/{item_id}/evidence [get]
func (h Handler) ListItemEvidenceHandler(ctx context.Context, itemID string) (httptransport.ListEvidenceResponse, error) {
	records, err := h.Ledger.EvidenceByItem(ctx, itemID)
	if err != nil {
		return httptransport.ListEvidenceResponse{}, err
	}
	return httptransport.ListEvidenceResponse{Items: mapEvidence(records)}, nil
}

// ListEvidenceRangeHandler godoc
// @Summary Evidence in a time range
// @Description Returns evidence created in [from, to), oldest first.
// @Tags evidence-ledger
// @Produce json
// @Param from query string false "RFC3339 lower bound (inclusive)"
// @Param to query string false "RFC3339 upper bound (exclusive)"
// @Param limit query int false "Page size (default 100)"
// @Success 200 {object} httptransport.ListEvidenceResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /v1/evidence [get]
func (h Handler) ListEvidenceRangeHandler(ctx context.Context, from, to time.Time, limit int) (httptransport.ListEvidenceResponse, error) {
	records, err := h.Ledger.EvidenceByRange(ctx, from, to, limit)
	if err != nil {
		return httptransport.ListEvidenceResponse{}, err
	}
	return httptransport.ListEvidenceResponse{Items: mapEvidence(records)}, nil
}

// ListRecentItemsHandler godoc
// @Summary Recently completed work items
// @Description Returns the most recent terminal outcomes, newest first.
// @Tags evidence-ledger
// @Produce json
// @Param limit query int false "Page size (default 100)"
// @Success 200 {object} httptransport.ListItemsResponse
// @Router /v1/items [get]
func (h Handler) ListRecentItemsHandler(ctx context.Context, limit int) (httptransport.ListItemsResponse, error) {
	outcomes, err := h.Ledger.RecentOutcomes(ctx, limit)
	if err != nil {
		return httptransport.ListItemsResponse{}, err
	}
	items := make([]httptransport.OutcomeDTO, 0, len(outcomes))
	for _, outcome := range outcomes {
		items = append(items, httptransport.OutcomeDTO{
			ItemID:      outcome.ItemID,
			Attempt:     outcome.Attempt,
			Status:      string(outcome.Status),
			SkillID:     outcome.SkillID,
			ErrorCode:   outcome.ErrorCode,
			ErrorDetail: outcome.ErrorDetail,
			Retryable:   outcome.Retryable,
			CompletedAt: outcome.CompletedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return httptransport.ListItemsResponse{Items: items}, nil
}

func mapEvidence(records []entities.EvidenceRecord) []httptransport.EvidenceDTO {
	items := make([]httptransport.EvidenceDTO, 0, len(records))
	for _, record := range records {
		payload := record.Payload
		if len(payload) == 0 {
			payload = []byte("{}")
		}
		items = append(items, httptransport.EvidenceDTO{
			EvidenceID:  record.EvidenceID,
			ItemID:      record.ItemID,
			SkillID:     record.SkillID,
			Kind:        record.Kind,
			Fingerprint: record.Fingerprint,
			CreatedAt:   record.CreatedAt.UTC().Format(time.RFC3339Nano),
			Payload:     json.RawMessage(payload),
		})
	}
	return items
}
