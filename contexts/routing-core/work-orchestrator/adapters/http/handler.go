package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"archeli/contexts/routing-core/work-orchestrator/application"
	httptransport "archeli/contexts/routing-core/work-orchestrator/transport/http"
)

type Handler struct {
	Orchestrator *application.Service
	Logger       *slog.Logger
}

// SubmitHandler godoc
// @Summary Submit a work item
// @Description Accepts a work item and starts routing it. Submitting an id that is already in flight returns the existing ticket.
// @Tags work-orchestrator
// @Accept json
// @Produce json
// @Param request body httptransport.SubmitItemRequest true "Work item"
// @Success 202 {object} httptransport.TicketResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /v1/items [post]
func (h Handler) SubmitHandler(ctx context.Context, req httptransport.SubmitItemRequest) (httptransport.TicketResponse, error) {
	ticket, err := h.Orchestrator.Submit(ctx, application.SubmitRequest{
		ItemID:  req.ItemID,
		Kind:    req.Kind,
		Payload: req.Payload,
	})
	if err != nil {
		return httptransport.TicketResponse{}, err
	}
	return ticketResponse(ticket), nil
}

// StatusHandler godoc
// @Summary Work item status
// @Description Returns the item's current state and, once terminal, its outcome.
// @Tags work-orchestrator
// @Produce json
// @Param item_id path string true "Work item id"
// @Success 200 {object} httptransport.StatusResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/items/{item_id} [get]
func (h Handler) StatusHandler(ctx context.Context, itemID string) (httptransport.StatusResponse, error) {
	item, err := h.Orchestrator.GetStatus(ctx, itemID)
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{
		ItemID:      item.ID,
		State:       string(item.State),
		Attempt:     item.Attempt,
		SkillID:     item.SkillID,
		Output:      item.Output,
		ErrorCode:   item.ErrorCode,
		ErrorDetail: item.ErrorDetail,
		Retryable:   item.Retryable,
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

// CancelHandler godoc
// @Summary Cancel a work item
// @Description Flags an in-flight item for cancellation, observed at the next suspension point.
// @Tags work-orchestrator
// @Produce json
// @Param item_id path string true "Work item id"
// @Success 202 {object} httptransport.TicketResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/items/{item_id}/cancel [post]
func (h Handler) CancelHandler(ctx context.Context, itemID string) (httptransport.TicketResponse, error) {
	if err := h.Orchestrator.Cancel(itemID); err != nil {
		return httptransport.TicketResponse{}, err
	}
	item, err := h.Orchestrator.GetStatus(ctx, itemID)
	if err != nil {
		return httptransport.TicketResponse{}, err
	}
	return httptransport.TicketResponse{ItemID: item.ID, State: string(item.State), Attempt: item.Attempt}, nil
}

// RetryHandler godoc
// @Summary Retry a terminal work item
// @Description Starts a fresh attempt for an item that already reached a terminal state.
// @Tags work-orchestrator
// @Produce json
// @Param item_id path string true "Work item id"
// @Success 202 {object} httptransport.TicketResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/items/{item_id}/retry [post]
func (h Handler) RetryHandler(ctx context.Context, itemID string) (httptransport.TicketResponse, error) {
	ticket, err := h.Orchestrator.Retry(ctx, itemID)
	if err != nil {
		return httptransport.TicketResponse{}, err
	}
	return ticketResponse(ticket), nil
}

func ticketResponse(ticket application.Ticket) httptransport.TicketResponse {
	return httptransport.TicketResponse{
		ItemID:  ticket.ItemID,
		State:   string(ticket.State),
		Attempt: ticket.Attempt,
	}
}
