package route

import (
	"github.com/gin-gonic/gin"
)

type HealthHandler interface {
	Root(c *gin.Context)
	Health(c *gin.Context)
}

func RegisterHealth(g *gin.RouterGroup, h HealthHandler) {
	g.GET("/", h.Root)
	g.GET("/health", h.Health)
}
