package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

const (
	accessCookie  = "access"
	refreshCookie = "refresh"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
}

type AuthHandler struct {
	log             *zap.Logger
	svc             AuthService
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthHandler(log *zap.Logger, svc AuthService, accessTokenTTL, refreshTokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		log:             log,
		svc:             svc,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// Login authenticates an admin. Tokens are returned in the body and also set as cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	resp, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	h.setCookies(c, resp.AccessToken, resp.RefreshToken)

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	refreshToken, ok := h.refreshToken(c)
	if !ok {
		return
	}

	if refreshToken != "" {
		if err := h.svc.Logout(ctx, refreshToken); err != nil {
			h.log.Error("Failed to delete refresh token from redis", zap.Error(err))
		}
	}

	h.clearCookies(c)

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "Logged out",
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	refreshToken, ok := h.refreshToken(c)
	if !ok {
		return
	}

	if refreshToken == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ResponseWithMessage{
			Status:  StatusNotPermitted,
			Message: "Missing refresh token",
		})

		return
	}

	tokens, err := h.svc.Refresh(ctx, refreshToken)
	if err != nil {
		respondError(c, h.log, err)

		return
	}

	h.setCookies(c, tokens.AccessToken, tokens.RefreshToken)

	c.JSON(http.StatusOK, tokens)
}

// refreshToken reads the refresh cookie, falling back to the JSON body.
// ok is false when a response has already been written.
func (h *AuthHandler) refreshToken(c *gin.Context) (string, bool) {
	if cookie, err := c.Cookie(refreshCookie); err == nil && cookie != "" {
		return cookie, true
	}

	if c.Request.ContentLength == 0 {
		return "", true
	}

	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return "", false
	}

	return req.RefreshToken, true
}

func (h *AuthHandler) setCookies(c *gin.Context, accessToken, refreshToken string) {
	c.SetCookie(accessCookie, accessToken, int(h.accessTokenTTL.Seconds()), "/", "", true, true)
	c.SetCookie(refreshCookie, refreshToken, int(h.refreshTokenTTL.Seconds()), "/", "", true, true)
}

func (h *AuthHandler) clearCookies(c *gin.Context) {
	c.SetCookie(accessCookie, "", -1, "/", "", true, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", true, true)
}
