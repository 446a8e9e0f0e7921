package route

import (
	"github.com/gin-gonic/gin"
)

type OrganizationHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Reactivate(c *gin.Context)
}

func RegisterOrganizationRoutes(g *gin.RouterGroup, h OrganizationHandler) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:organization_id", h.Get)
	g.PUT("/:organization_id", h.Update)
	g.DELETE("/:organization_id", h.Delete)
	g.POST("/:organization_id/reactivate", h.Reactivate)
}
