package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/stylist-service/internal/middleware"
	"github.com/fleveque/stylist-service/internal/model"
	"github.com/fleveque/stylist-service/internal/service"
)

// Advisor runs the styling advice pipeline.
type Advisor interface {
	Advise(ctx context.Context, req model.AdviceRequest) (*model.AdviceResult, error)
}

// AdviceHandler serves styling advice for a chosen product.
type AdviceHandler struct {
	advice Advisor
	logger *zap.Logger
}

func NewAdviceHandler(advice Advisor, logger *zap.Logger) *AdviceHandler {
	return &AdviceHandler{advice: advice, logger: logger}
}

// Advise returns styling advice and a generated outfit image.
// Route: POST /api/v1/advice
func (h *AdviceHandler) Advise(c *gin.Context) {
	var req model.AdviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":    "invalid_request",
			"message": "Invalid advice request: expected a JSON body with the product details.",
		})
		return
	}

	result, err := h.advice.Advise(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("advice failed",
			zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)),
			zap.String("clothing_item", req.ClothingItem),
			zap.String("kind", service.Kind(err)),
			zap.Error(err),
		)
		if reportable(err) {
			captureError(c, err)
		}
		c.JSON(statusFor(err), gin.H{
			"kind":    service.Kind(err),
			"message": service.UserMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
