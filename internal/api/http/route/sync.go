package route

import (
	"github.com/gin-gonic/gin"
)

type SyncHandler interface {
	Status(c *gin.Context)
	Events(c *gin.Context)
	RetryFailed(c *gin.Context)
	FullSync(c *gin.Context)
}

func RegisterSyncRoutes(g *gin.RouterGroup, h SyncHandler) {
	g.GET("/status", h.Status)
	g.GET("/events", h.Events)
	g.POST("/retry-failed", h.RetryFailed)
	g.POST("/full-sync", h.FullSync)
}
