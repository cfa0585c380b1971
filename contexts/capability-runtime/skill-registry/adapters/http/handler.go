package httpadapter

import (
	"context"
	"log/slog"

	"archeli/contexts/capability-runtime/skill-registry/application"
	httptransport "archeli/contexts/capability-runtime/skill-registry/transport/http"
)

type Handler struct {
	Registry *application.Service
	Logger   *slog.Logger
}

// ListSkillsHandler godoc
// @Summary List registered skills
// @Description Returns descriptors, health, and concurrency limits for every registered skill.
// @Tags skill-registry
// @Produce json
// @Success 200 {object} httptransport.ListSkillsResponse
// @Router /v1/skills [get]
func (h Handler) ListSkillsHandler(_ context.Context) (httptransport.ListSkillsResponse, error) {
	descriptors := h.Registry.List()
	items := make([]httptransport.SkillDTO, 0, len(descriptors))
	for _, d := range descriptors {
		items = append(items, httptransport.SkillDTO{
			ID:           d.ID,
			Version:      d.Version,
			Description:  d.Description,
			Capabilities: d.Capabilities,
			Source:       string(d.Source),
			Concurrency:  d.EffectiveConcurrency(),
			Health:       string(d.Health),
		})
	}
	return httptransport.ListSkillsResponse{Items: items}, nil
}

// InvokeSkillHandler godoc
// @Summary Invoke a skill directly
// @Description Runs a registered handler with the given payload, bypassing rule matching. The call counts against the skill's concurrency limit; its result is returned to the caller and not recorded in the ledger.
// @Tags skill-registry
// @Accept json
// @Produce json
// @Param request body httptransport.InvokeSkillRequest true "Skill id and payload"
// @Success 200 {object} httptransport.InvokeSkillResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/skills/invoke [post]
func (h Handler) InvokeSkillHandler(ctx context.Context, req httptransport.InvokeSkillRequest) (httptransport.InvokeSkillResponse, error) {
	result, err := h.Registry.Invoke(ctx, req.SkillID, req.Payload)
	if err != nil {
		return httptransport.InvokeSkillResponse{}, err
	}
	evidence := make([]httptransport.InvokeEvidenceDTO, 0, len(result.Evidence))
	for _, artifact := range result.Evidence {
		evidence = append(evidence, httptransport.InvokeEvidenceDTO{
			Kind:    artifact.Kind,
			Payload: artifact.Payload,
		})
	}
	return httptransport.InvokeSkillResponse{
		SkillID:  req.SkillID,
		Output:   result.Output,
		Evidence: evidence,
	}, nil
}
