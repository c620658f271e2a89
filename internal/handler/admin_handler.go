package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/stylist-service/internal/model"
	"github.com/fleveque/stylist-service/internal/storage"
)

const (
	defaultStatsWindow = 24 * time.Hour
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// AdminHandler handles administrative endpoints.
type AdminHandler struct {
	llmCallRepo storage.LLMCallRepository
	logger      *zap.Logger
}

// NewAdminHandler creates a new AdminHandler. llmCallRepo may be nil when call
// auditing is turned off; the endpoints then answer 503.
func NewAdminHandler(llmCallRepo storage.LLMCallRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		llmCallRepo: llmCallRepo,
		logger:      logger,
	}
}

// Stats returns model call counts per pipeline step.
// Route: GET /api/v1/admin/stats?window=24h
func (h *AdminHandler) Stats(c *gin.Context) {
	if h.llmCallRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "call auditing is disabled"})
		return
	}
	ctx := c.Request.Context()

	window := defaultStatsWindow
	if raw := c.Query("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window: use a positive duration like 1h or 30m"})
			return
		}
		window = d
	}

	total, err := h.llmCallRepo.Count(ctx)
	if err != nil {
		h.logger.Error("counting llm calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	byStep, err := h.llmCallRepo.StatsByStep(ctx, time.Now().Add(-window))
	if err != nil {
		h.logger.Error("aggregating llm calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if byStep == nil {
		byStep = []model.LLMCallStats{}
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   total,
		"window":  window.String(),
		"by_step": byStep,
	})
}

// RecentCalls lists the latest model calls, newest first.
// Route: GET /api/v1/admin/calls?limit=20
func (h *AdminHandler) RecentCalls(c *gin.Context) {
	if h.llmCallRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "call auditing is disabled"})
		return
	}

	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(n, maxRecentLimit)
	}

	calls, err := h.llmCallRepo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("listing llm calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if calls == nil {
		calls = []model.LLMCall{}
	}

	c.JSON(http.StatusOK, gin.H{"calls": calls})
}
