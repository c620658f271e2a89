// Package handler contains the HTTP handlers of the stylist API.
// Each handler is a struct holding its dependencies, with one method per
// route.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db     Pinger
	logger *zap.Logger
}

// NewHealthHandler creates a HealthHandler. db is nil when call auditing is
// off; the check then only reports the process as up.
func NewHealthHandler(db Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Healthz responds with service status. It never calls a model, so a down
// model provider does not fail the check.
func (h *HealthHandler) Healthz(c *gin.Context) {
	database := "disabled"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error("health check: database unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "degraded",
				"service":  "stylist-service",
				"database": "unreachable",
			})
			return
		}
		database = "ok"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "stylist-service",
		"database": database,
	})
}
