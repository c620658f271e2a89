package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fleveque/stylist-service/internal/middleware"
	"github.com/fleveque/stylist-service/internal/model"
	"github.com/fleveque/stylist-service/internal/service"
)

// Searcher runs the product search pipeline.
type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest) (*service.SearchResult, error)
}

// SearchHandler serves product searches.
type SearchHandler struct {
	search Searcher
	logger *zap.Logger
}

func NewSearchHandler(search Searcher, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{search: search, logger: logger}
}

// Search extracts products for a clothing item from the shop's results page.
// Route: POST /api/v1/search
//
// Empty outcomes are not errors: they answer 200 with an empty product list,
// the terminal state and a message saying why nothing is shown.
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"state":    service.StateInvalidRequest,
			"kind":     "invalid_request",
			"message":  bindErrorMessage(err),
			"products": []model.Product{},
		})
		return
	}

	result, err := h.search.Search(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("search failed",
			zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)),
			zap.String("clothing_item", req.ClothingItem),
			zap.String("kind", service.Kind(err)),
			zap.Error(err),
		)
		if reportable(err) {
			captureError(c, err)
		}

		state := service.StateInvalidRequest
		if result != nil {
			state = result.State
		}
		c.JSON(statusFor(err), gin.H{
			"state":    state,
			"kind":     service.Kind(err),
			"message":  service.UserMessage(err),
			"products": []model.Product{},
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// bindErrorMessage tells field limit violations apart from bodies that could
// not be decoded at all.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return "Invalid search request: the clothing item must be at most 50 characters and the color at most 30."
	}
	return "Invalid search request: expected a JSON body with a clothing item."
}
