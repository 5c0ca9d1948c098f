package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glowlab/backend/internal/domain/tracking"
	"github.com/glowlab/backend/internal/interfaces/http/dto"
	"github.com/glowlab/backend/internal/interfaces/http/middleware"
)

// TrackingSyncService is the application surface the tracking endpoints call.
type TrackingSyncService interface {
	ListPending(ctx context.Context, now time.Time) (*tracking.ListResult, error)
	ApplyTracking(ctx context.Context, orderNumber, trackingNumber, carrier string) (tracking.Outcome, error)
	UndoTracking(ctx context.Context, orderNumber string) (tracking.Outcome, error)
}

// TrackingHandler exposes the mailbox/platform reconciliation endpoints the
// dashboard uses.
type TrackingHandler struct {
	BaseHandler
	service TrackingSyncService
	logger  *zap.Logger
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(service TrackingSyncService, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the tracking routes on the API group.
func (h *TrackingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/fetch-korealy-emails", h.FetchKorealyEmails)
	rg.POST("/update-shopify-tracking", h.UpdateShopifyTracking)
	rg.POST("/remove-shopify-tracking", h.RemoveShopifyTracking)
}

// FetchEmailsResponse is the merged mailbox/platform view the dashboard renders.
type FetchEmailsResponse struct {
	Pending      []tracking.ReconciledRow `json:"pending"`
	All          []tracking.ReconciledRow `json:"all"`
	GmailAccount string                   `json:"gmailAccount"`
}

// ApplyTrackingRequest carries an operator's apply request. All three fields
// are required; sentinel "unknown" values are rejected by the service.
type ApplyTrackingRequest struct {
	OrderNumber    string `json:"orderNumber" binding:"required"`
	TrackingNumber string `json:"trackingNumber" binding:"required"`
	Carrier        string `json:"carrier" binding:"required"`
}

// RemoveTrackingRequest carries an operator's undo request.
type RemoveTrackingRequest struct {
	OrderNumber string `json:"orderNumber" binding:"required"`
}

// FetchKorealyEmails returns the reconciled view of recent partner
// notifications, split into pending and historical rows.
func (h *TrackingHandler) FetchKorealyEmails(c *gin.Context) {
	result, err := h.service.ListPending(c.Request.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Warn("listing failed", zap.Error(err))
		h.HandleError(c, err)
		return
	}

	h.Success(c, FetchEmailsResponse{
		Pending:      result.Pending,
		All:          result.All,
		GmailAccount: result.MailboxLabel,
	})
}

// UpdateShopifyTracking attaches tracking to an order. Applying to an already
// fulfilled order is reported as success without a second customer email.
func (h *TrackingHandler) UpdateShopifyTracking(c *gin.Context) {
	var req ApplyTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.ValidationMessage(err))
		return
	}

	outcome, err := h.service.ApplyTracking(c.Request.Context(), req.OrderNumber, req.TrackingNumber, req.Carrier)
	if err != nil {
		h.logger.Warn("apply tracking failed",
			zap.String("order_number", req.OrderNumber),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}

	switch outcome.Kind {
	case tracking.OutcomeOrderNotFound:
		h.Error(c, dto.KindOrderNotFound, "order "+req.OrderNumber+" not found")
	default:
		h.Success(c, dto.OKResponse{OK: true, FulfillmentID: outcome.FulfillmentID})
	}
}

// RemoveShopifyTracking cancels the order's active fulfillment.
func (h *TrackingHandler) RemoveShopifyTracking(c *gin.Context) {
	var req RemoveTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.ValidationMessage(err))
		return
	}

	outcome, err := h.service.UndoTracking(c.Request.Context(), req.OrderNumber)
	if err != nil {
		h.logger.Warn("undo tracking failed",
			zap.String("order_number", req.OrderNumber),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}

	switch outcome.Kind {
	case tracking.OutcomeOrderNotFound:
		h.Error(c, dto.KindOrderNotFound, "order "+req.OrderNumber+" not found")
	case tracking.OutcomeNothingToDo:
		h.Error(c, dto.KindNothingToDo, "order "+req.OrderNumber+" has no fulfillment to remove")
	default:
		h.Success(c, dto.OKResponse{OK: true})
	}
}
