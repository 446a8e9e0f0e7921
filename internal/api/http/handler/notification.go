package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

type NotificationService interface {
	List(ctx context.Context, params model.NotificationQueryParams) (*model.NotificationPage, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	Create(ctx context.Context, createdBy *uuid.UUID, req model.NotificationCreateRequest) (*model.Notification, error)
	Update(ctx context.Context, id uuid.UUID, req model.NotificationUpdateRequest) (*model.Notification, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*model.NotificationStats, error)
}

type NotificationHandler struct {
	BaseHandler

	log *zap.Logger
	svc NotificationService
}

func NewNotificationHandler(log *zap.Logger, svc NotificationService) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler: BaseHandler{},
		log:         log,
		svc:         svc,
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	var params model.NotificationQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)

		return
	}

	page, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *NotificationHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *NotificationHandler) Get(c *gin.Context) {
	var path model.NotificationIDPathParam
	if err := c.ShouldBindUri(&path); err != nil {
		badRequest(c, err)

		return
	}

	n, err := h.svc.Get(c.Request.Context(), mustParseUUID(path.ID))
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, n)
}

// Create records the calling admin as the author when the token carries a valid id.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req model.NotificationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	var createdBy *uuid.UUID
	if adminID, err := h.GetUserID(c); err == nil {
		createdBy = &adminID
	}

	n, err := h.svc.Create(c.Request.Context(), createdBy, req)
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusCreated, n)
}

func (h *NotificationHandler) Update(c *gin.Context) {
	var path model.NotificationIDPathParam
	if err := c.ShouldBindUri(&path); err != nil {
		badRequest(c, err)

		return
	}

	var req model.NotificationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	n, err := h.svc.Update(c.Request.Context(), mustParseUUID(path.ID), req)
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	var path model.NotificationIDPathParam
	if err := c.ShouldBindUri(&path); err != nil {
		badRequest(c, err)

		return
	}

	if err := h.svc.Delete(c.Request.Context(), mustParseUUID(path.ID)); err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "Notification deleted successfully",
	})
}
