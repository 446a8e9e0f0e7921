package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/api/http/handler"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

// RequireScope must run after JWTAuth.
func RequireScope(allowedScopes ...string) gin.HandlerFunc {
	scopeSet := make(map[string]struct{}, len(allowedScopes))

	for _, scope := range allowedScopes {
		scopeSet[scope] = struct{}{}
	}

	return func(c *gin.Context) {
		scopeVal, exists := c.Get(model.ScopeKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, handler.ResponseWithMessage{
				Status:  handler.StatusNotPermitted,
				Message: "no data about the token scope",
			})

			return
		}

		scope, ok := scopeVal.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, handler.ResponseWithMessage{
				Status:  handler.StatusNotPermitted,
				Message: "invalid scope format",
			})

			return
		}

		if _, ok := scopeSet[scope]; ok {
			c.Next()

			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, handler.ResponseWithMessage{
			Status:  handler.StatusForbidden,
			Message: "admin privileges required",
		})
	}
}
