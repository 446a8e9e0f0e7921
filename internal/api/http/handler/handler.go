package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

const (
	StatusErr           = "error"
	StatusSuccess       = "success"
	StatusNotAvailable  = "not available"
	StatusNotPermitted  = "not permitted"
	StatusForbidden     = "forbidden"
	StatusOK            = "ok"
	StatusInvalidInput  = "invalid_input"
	StatusInternalError = "internal_error"
)

const internalErrorMessage = "internal server error"

type BaseHandler struct{}

func (h *BaseHandler) GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDValue, exists := c.Get(model.UserUIDKey)
	if !exists {
		return uuid.Nil, apperrors.ErrContextValueDoesNotExist
	}

	userID, ok := userIDValue.(string)
	if !ok {
		return uuid.Nil, apperrors.ErrContextValueInvalidType
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, apperrors.ErrContextValueInvalidType
	}

	return uid, nil
}

// ResponseWithData wraps an arbitrary payload.
type ResponseWithData struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// ResponseWithMessage carries only a human-readable message.
type ResponseWithMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NoMethod(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, ResponseWithMessage{
		Status:  StatusNotAvailable,
		Message: "method not allowed on this endpoint",
	})
}

func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, ResponseWithMessage{
		Status:  StatusNotAvailable,
		Message: "page not found",
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ResponseWithMessage{
		Status:  StatusInvalidInput,
		Message: err.Error(),
	})
}

// respondError maps domain errors to a status code. Unknown errors are logged
// and answered with a generic 500.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	code := errorStatus(err)

	if code == http.StatusInternalServerError {
		log.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		)

		c.JSON(code, ResponseWithMessage{
			Status:  StatusInternalError,
			Message: internalErrorMessage,
		})

		return
	}

	status := StatusErr
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		status = StatusNotPermitted
	}

	c.JSON(code, ResponseWithMessage{
		Status:  status,
		Message: err.Error(),
	})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrOrganizationNotFound),
		errors.Is(err, apperrors.ErrUserDoesNotExist),
		errors.Is(err, apperrors.ErrNotificationNotFound),
		errors.Is(err, apperrors.ErrSyncEventNotFound):
		return http.StatusNotFound

	case errors.Is(err, apperrors.ErrOrganizationURLExists),
		errors.Is(err, apperrors.ErrOrganizationActive),
		errors.Is(err, apperrors.ErrOrganizationInactive),
		errors.Is(err, apperrors.ErrUserAlreadyExists),
		errors.Is(err, apperrors.ErrUserAlreadyActive),
		errors.Is(err, apperrors.ErrPasswordTooShort),
		errors.Is(err, apperrors.ErrPasswordMismatch),
		errors.Is(err, apperrors.ErrInvalidNotificationType):
		return http.StatusBadRequest

	case errors.Is(err, apperrors.ErrMembershipExists),
		errors.Is(err, apperrors.ErrSyncOperationInProgress):
		return http.StatusConflict

	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrRefreshTokenExpired):
		return http.StatusUnauthorized

	case errors.Is(err, apperrors.ErrAdminAccessDenied):
		return http.StatusForbidden

	default:
		return http.StatusInternalServerError
	}
}

// mustParseUUID is only called on path params bound with the uuid tag.
func mustParseUUID(s string) uuid.UUID {
	return uuid.MustParse(s)
}
