package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

type OrganizationService interface {
	List(ctx context.Context, params model.OrganizationQueryParams) (*model.OrganizationPage, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Organization, error)
	Create(ctx context.Context, req model.OrganizationCreateRequest) (*model.Organization, error)
	Update(ctx context.Context, id uuid.UUID, req model.OrganizationUpdateRequest) (*model.Organization, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) (*model.Organization, error)
}

type OrganizationHandler struct {
	log *zap.Logger
	svc OrganizationService
}

func NewOrganizationHandler(log *zap.Logger, svc OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		log: log,
		svc: svc,
	}
}

func (h *OrganizationHandler) List(c *gin.Context) {
	var params model.OrganizationQueryParams
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

func (h *OrganizationHandler) Get(c *gin.Context) {
	var path model.OrganizationIDPathParam
	if err := c.ShouldBindUri(&path); err != nil {
		badRequest(c, err)

		return
	}

	org, err := h.svc.Get(c.Request.Context(), mustParseUUID(path.ID))
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandler) Create(c *gin.Context) {
	var req model.OrganizationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	org, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusCreated, org)
}

func (h *OrganizationHandler) Update(c *gin.Context) {
	var path model.OrganizationIDPathParam
	if err := c.ShouldBindUri(&path); err != nil {
		badRequest(c, err)

		return
	}

	var req model.OrganizationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	org, err := h.svc.Update(c.Request.Context(), mustParseUUID(path.ID), req)
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandler) Delete(c *gin.Context) {
	var path model.OrganizationIDPathParam
	if err := c.ShouldBindUri(&path); err != nil {
		badRequest(c, err)

		return
	}

	if err := h.svc.Deactivate(c.Request.Context(), mustParseUUID(path.ID)); err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "Organization deactivated successfully",
	})
}

func (h *OrganizationHandler) Reactivate(c *gin.Context) {
	var path model.OrganizationIDPathParam
	if err := c.ShouldBindUri(&path); err != nil {
		badRequest(c, err)

		return
	}

	org, err := h.svc.Reactivate(c.Request.Context(), mustParseUUID(path.ID))
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   org,
	})
}
