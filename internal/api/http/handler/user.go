package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

type UserService interface {
	List(ctx context.Context, params model.UserQueryParams) (*model.UserPage, error)
	Get(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
	Create(ctx context.Context, req model.UserCreateRequest) (*model.UserResponse, error)
	Update(ctx context.Context, id uuid.UUID, req model.UserUpdateRequest) (*model.UserResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
}

type UserHandler struct {
	log *zap.Logger
	svc UserService
}

func NewUserHandler(log *zap.Logger, svc UserService) *UserHandler {
	return &UserHandler{
		log: log,
		svc: svc,
	}
}

func (h *UserHandler) List(c *gin.Context) {
	var params model.UserQueryParams
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

func (h *UserHandler) Get(c *gin.Context) {
	var path model.UserIDPathParam
	if err := c.ShouldBindUri(&path); err != nil {
		badRequest(c, err)

		return
	}

	user, err := h.svc.Get(c.Request.Context(), mustParseUUID(path.ID))
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req model.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	user, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	var path model.UserIDPathParam
	if err := c.ShouldBindUri(&path); err != nil {
		badRequest(c, err)

		return
	}

	var req model.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	user, err := h.svc.Update(c.Request.Context(), mustParseUUID(path.ID), req)
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	var path model.UserIDPathParam
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
		Message: "User deactivated successfully",
	})
}

func (h *UserHandler) Reactivate(c *gin.Context) {
	var path model.UserIDPathParam
	if err := c.ShouldBindUri(&path); err != nil {
		badRequest(c, err)

		return
	}

	user, err := h.svc.Reactivate(c.Request.Context(), mustParseUUID(path.ID))
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   user,
	})
}
