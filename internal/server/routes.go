// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/stylist-service/internal/config"
	"github.com/fleveque/stylist-service/internal/handler"
	"github.com/fleveque/stylist-service/internal/metrics"
	"github.com/fleveque/stylist-service/internal/middleware"
	"github.com/fleveque/stylist-service/internal/storage"
)

// Deps are the pipeline pieces the routes need. DB and LLMCallRepo are nil
// when call auditing is turned off.
type Deps struct {
	Search      handler.Searcher
	Advice      handler.Advisor
	LLMCallRepo storage.LLMCallRepository
	DB          handler.Pinger
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
// Dependencies are passed explicitly; each handler gets exactly what it needs.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler(deps.DB, logger)
	searchHandler := handler.NewSearchHandler(deps.Search, logger)
	adviceHandler := handler.NewAdviceHandler(deps.Advice, logger)
	adminHandler := handler.NewAdminHandler(deps.LLMCallRepo, logger)

	// Public endpoints (no auth)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	authed := api.Group("")
	authed.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	authed.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		authed.POST("/search", searchHandler.Search)
		authed.POST("/advice", adviceHandler.Advise)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyAuth(cfg.Auth.AdminKeys))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/calls", adminHandler.RecentCalls)
	}
}
