package middleware

import (
	"crypto/ecdsa"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/api/http/handler"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
	"github.com/CyberXLTR/CyberXLTR-Admin/pkg/jwt"
)

// JWTAuth accepts the access token from the "access" cookie or a Bearer header.
func JWTAuth(publicKey *ecdsa.PublicKey, issuer, audience string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		if cookie, err := c.Cookie("access"); err == nil {
			tokenStr = cookie
		}

		if tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.ResponseWithMessage{
				Status:  handler.StatusNotPermitted,
				Message: "Missing access token",
			})

			return
		}

		claims, err := jwt.ValidateToken(tokenStr, publicKey, issuer, audience)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.ResponseWithMessage{
				Status:  handler.StatusNotPermitted,
				Message: "invalid or expired token",
			})

			return
		}

		if claims[model.TokenTypeKey] != model.TokenTypeAccess {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.ResponseWithMessage{
				Status:  handler.StatusNotPermitted,
				Message: "invalid token type",
			})

			return
		}

		c.Set(model.UserUIDKey, claims[model.UserUIDKey])
		c.Set(model.UserEmailKey, claims[model.UserEmailKey])
		c.Set(model.ScopeKey, claims[model.ScopeKey])

		c.Next()
	}
}
