package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

type SyncService interface {
	Status(ctx context.Context) (*model.SyncStatusSummary, error)
	ListEvents(ctx context.Context, params model.SyncEventQueryParams) (*model.SyncEventPage, error)
	RetryFailed(ctx context.Context) (*model.RetryFailedResult, error)
	FullSync(ctx context.Context) (*model.FullSyncResult, error)
}

// syncStatusResponse prefixes the summary with a liveness marker.
type syncStatusResponse struct {
	Status string `json:"status"`
	*model.SyncStatusSummary
}

type SyncHandler struct {
	log *zap.Logger
	svc SyncService
}

func NewSyncHandler(log *zap.Logger, svc SyncService) *SyncHandler {
	return &SyncHandler{
		log: log,
		svc: svc,
	}
}

func (h *SyncHandler) Status(c *gin.Context) {
	summary, err := h.svc.Status(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, syncStatusResponse{
		Status:            "ok",
		SyncStatusSummary: summary,
	})
}

// Events lists event summaries; stored payloads are never returned.
func (h *SyncHandler) Events(c *gin.Context) {
	var params model.SyncEventQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)

		return
	}

	page, err := h.svc.ListEvents(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, page)
}

// RetryFailed answers 409 while another bulk operation holds the lock.
func (h *SyncHandler) RetryFailed(c *gin.Context) {
	result, err := h.svc.RetryFailed(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SyncHandler) FullSync(c *gin.Context) {
	result, err := h.svc.FullSync(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, model.FullSyncResponse{
		Success: true,
		Synced:  *result,
	})
}
