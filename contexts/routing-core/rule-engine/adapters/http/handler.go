package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"archeli/contexts/routing-core/rule-engine/application"
	httptransport "archeli/contexts/routing-core/rule-engine/transport/http"
)

type Handler struct {
	Rules  *application.Service
	Logger *slog.Logger
}

// SnapshotHandler godoc
// @Summary Current rule snapshot
// @Description Returns version and counts of the active routing rule snapshot.
// @Tags rule-engine
// @Produce json
// @Success 200 {object} httptransport.SnapshotResponse
// @Failure 503 {object} httptransport.ErrorResponse
// @Router /v1/rules [get]
func (h Handler) SnapshotHandler(_ context.Context) (httptransport.SnapshotResponse, error) {
	info, err := h.Rules.Info()
	if err != nil {
		return httptransport.SnapshotResponse{}, err
	}
	return httptransport.SnapshotResponse{
		Version:   info.Version,
		LoadedAt:  info.LoadedAt.UTC().Format(time.RFC3339),
		RuleCount: info.RuleCount,
		Enabled:   info.Enabled,
	}, nil
}

// ReloadHandler godoc
// @Summary Reload routing rules
// @Description Reloads the rule file through the atomic publish path. A failed
// @Description reload keeps the previous snapshot active.
// @Tags rule-engine
// @Produce json
// @Success 200 {object} httptransport.ReloadResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /v1/rules/reload [post]
func (h Handler) ReloadHandler(_ context.Context) (httptransport.ReloadResponse, error) {
	info, err := h.Rules.Reload()
	if err != nil {
		return httptransport.ReloadResponse{}, err
	}
	return httptransport.ReloadResponse{
		Snapshot: httptransport.SnapshotResponse{
			Version:   info.Version,
			LoadedAt:  info.LoadedAt.UTC().Format(time.RFC3339),
			RuleCount: info.RuleCount,
			Enabled:   info.Enabled,
		},
	}, nil
}
