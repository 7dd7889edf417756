// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/app"
	appctx "backoffice/internal/core/context"
	"backoffice/internal/domain/audit"
	"backoffice/internal/infrastructure/http/v1/handlers"
	"backoffice/internal/infrastructure/http/v1/middleware"
	"backoffice/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Services *app.Services

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// APIKeyVerifier guards the integration endpoints
	APIKeyVerifier middleware.APIKeyVerifier

	// AuditRecorder stores mutating requests. Nil disables the audit trail.
	AuditRecorder audit.Recorder

	// ReadinessChecks are reported by /health/ready
	ReadinessChecks map[string]handlers.ReadinessChecker
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!). ErrorHandler wraps Recovery so a
	// recovered panic is rendered like any other error.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(cfg.ReadinessChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Document printer access, API key instead of a user token
		if cfg.APIKeyVerifier != nil {
			integration := v1.Group("/integration")
			integration.Use(middleware.APIKey(cfg.APIKeyVerifier))
			registerIntegrationRoutes(integration, base, cfg)
		}

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		if cfg.AuditRecorder != nil {
			protected.Use(middleware.Audit(cfg.AuditRecorder))
		}

		registerCatalogRoutes(protected, base, cfg)
		registerDocumentRoutes(protected, base, cfg)
		registerBalanceRoutes(protected, base, cfg)
		registerRegisterRoutes(protected, base, cfg)
	}

	return router
}

// registerCatalogRoutes registers offer and user endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	svc := cfg.Services

	offerHandler := handlers.NewOfferHandler(base, svc.Offers, svc.Stock)
	offers := catalogs.Group("/offers")
	RegisterCatalogRoutes(offers, offerHandler)
	offers.PUT("/:id", offerHandler.Update)
	offers.GET("/:id/movements", offerHandler.Movements)

	userHandler := handlers.NewUserHandler(base, svc.Users)
	users := catalogs.Group("/users")
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
}

// registerDocumentRoutes registers waybill endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	svc := cfg.Services
	handler := handlers.NewWaybillHandler(base, svc.Waybills, svc.Engine, svc.Stock)
	RegisterDocumentRoutes(rg.Group("/document/waybills"), handler)
}

// registerBalanceRoutes registers balance endpoints. Adjustments need the admin role.
func registerBalanceRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewBalanceHandler(base, cfg.Services.Balances)
	balances := rg.Group("/balance")
	balances.GET("/history/:userId", handler.History)
	balances.POST("/adjust/:userId", middleware.RequireRole(appctx.RoleAdmin), handler.Adjust)
}

// registerRegisterRoutes registers stock register reports.
func registerRegisterRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewStockHandler(base, cfg.Services.Stock)
	rg.GET("/register/stock/turnover", handler.Turnover)
}

// registerIntegrationRoutes registers machine-to-machine endpoints.
func registerIntegrationRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewIntegrationHandler(base, cfg.Services.Waybills, cfg.Services.Users)
	rg.GET("/waybills/:id", handler.Waybill)
}
