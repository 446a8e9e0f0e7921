package route

import (
	"github.com/gin-gonic/gin"
)

type UserHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Reactivate(c *gin.Context)
}

func RegisterUserRoutes(g *gin.RouterGroup, h UserHandler) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:user_id", h.Get)
	g.PUT("/:user_id", h.Update)
	g.DELETE("/:user_id", h.Delete)
	g.POST("/:user_id/reactivate", h.Reactivate)
}
