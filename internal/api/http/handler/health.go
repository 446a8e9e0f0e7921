package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

type HealthService interface {
	Info() model.ServiceInfo
	Check(ctx context.Context) (model.HealthStatus, bool)
}

type HealthHandler struct {
	log *zap.Logger
	svc HealthService
}

func NewHealthHandler(log *zap.Logger, svc HealthService) *HealthHandler {
	return &HealthHandler{
		log: log,
		svc: svc,
	}
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Info())
}

// Health answers 503 when the database is unreachable.
func (h *HealthHandler) Health(c *gin.Context) {
	status, ok := h.svc.Check(c.Request.Context())
	if !ok {
		c.JSON(http.StatusServiceUnavailable, status)

		return
	}

	c.JSON(http.StatusOK, status)
}
