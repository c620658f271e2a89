package handler

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/fleveque/stylist-service/internal/middleware"
	"github.com/fleveque/stylist-service/internal/service"
)

// statusFor maps a pipeline error to its HTTP status. Model-side failures are
// 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUpstream),
		errors.Is(err, service.ErrStructural),
		errors.Is(err, service.ErrAdviceGeneration),
		errors.Is(err, service.ErrImageGeneration),
		errors.Is(err, service.ErrMalformedOutput):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// reportable reports whether err should reach Sentry. Invalid requests are
// only logged.
func reportable(err error) bool {
	return !errors.Is(err, service.ErrInvalidRequest)
}

func captureError(c *gin.Context, err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("kind", service.Kind(err))
		scope.SetTag("route", c.FullPath())
		if id := c.GetString(middleware.ContextKeyRequestID); id != "" {
			scope.SetTag("request_id", id)
		}
		sentry.CaptureException(err)
	})
}
