package route

import (
	"crypto/ecdsa"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/api/http/handler"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/api/http/middleware"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/config"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
)

type Handlers struct {
	Health       HealthHandler
	Auth         AuthHandler
	Organization OrganizationHandler
	User         UserHandler
	Notification NotificationHandler
	Sync         SyncHandler
}

func SetupRouter(
	log *zap.Logger,
	cfg *config.Config,
	publicKey *ecdsa.PublicKey,
	h Handlers,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	router := gin.New()
	router.Use(gin.Recovery())

	// middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.RequestTimeout(cfg.HTTPServer.Timeout.Request))
	router.Use(middleware.CORS(cfg.HTTPServer.CORS))

	jwtAuthMiddleware := middleware.JWTAuth(publicKey, cfg.HTTPServer.JWT.Issuer, cfg.HTTPServer.JWT.Audience)
	adminMiddleware := middleware.RequireScope(model.ScopeAdmin)

	router.HandleMethodNotAllowed = true
	router.NoMethod(handler.NoMethod)
	router.NoRoute(handler.NoRoute)

	RegisterHealth(router.Group(""), h.Health)

	basePath := router.Group(cfg.HTTPServer.BasePath)

	RegisterAuth(basePath.Group("/auth"), h.Auth)

	admin := basePath.Group("", jwtAuthMiddleware, adminMiddleware)

	RegisterOrganizationRoutes(admin.Group("/organizations"), h.Organization)
	RegisterUserRoutes(admin.Group("/users"), h.User)
	RegisterNotificationRoutes(admin.Group("/notifications"), h.Notification)
	RegisterSyncRoutes(admin.Group("/sync"), h.Sync)

	return router
}
