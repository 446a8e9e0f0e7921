package route

import (
	"github.com/gin-gonic/gin"
)

type NotificationHandler interface {
	List(c *gin.Context)
	Stats(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

func RegisterNotificationRoutes(g *gin.RouterGroup, h NotificationHandler) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/stats/overview", h.Stats)
	g.GET("/:notification_id", h.Get)
	g.PUT("/:notification_id", h.Update)
	g.DELETE("/:notification_id", h.Delete)
}
