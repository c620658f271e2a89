// Package metrics exposes Prometheus counters for pipeline outcomes and model
// call latency.
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stylist_search_outcomes_total",
			Help: "Total number of searches by terminal state",
		},
		[]string{"state"},
	)

	AdviceOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stylist_advice_outcomes_total",
			Help: "Total number of advice requests by outcome",
		},
		[]string{"outcome"},
	)

	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stylist_model_call_duration_seconds",
			Help:    "Duration of model calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"step", "provider", "success"},
	)

	ContentFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stylist_content_fetches_total",
			Help: "Total number of content source lookups by source and result",
		},
		[]string{"source", "result"},
	)
)

// ObserveModelCall records the latency of one model call.
func ObserveModelCall(step, provider string, success bool, d time.Duration) {
	ok := "false"
	if success {
		ok = "true"
	}
	ModelCallDuration.WithLabelValues(step, provider, ok).Observe(d.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
