package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/stylist-service/internal/llm"
	"github.com/fleveque/stylist-service/internal/metrics"
	"github.com/fleveque/stylist-service/internal/model"
	"github.com/fleveque/stylist-service/internal/storage"
)

// CallTracker records every model call in the ledger and in metrics. A nil
// repository disables the ledger; metrics are always recorded.
type CallTracker struct {
	repo   storage.LLMCallRepository
	logger *zap.Logger
}

// NewCallTracker creates a tracker. repo may be nil.
func NewCallTracker(repo storage.LLMCallRepository, logger *zap.Logger) *CallTracker {
	return &CallTracker{repo: repo, logger: logger}
}

// Record stores one call. Ledger failures are logged and never fail the
// request that made the call.
func (t *CallTracker) Record(ctx context.Context, step model.CallStep, clothingItem string, client llm.Named, callErr error, duration time.Duration) {
	if t == nil {
		return
	}

	metrics.ObserveModelCall(string(step), client.ProviderName(), callErr == nil, duration)

	if t.repo == nil {
		return
	}

	durationMs := duration.Milliseconds()
	call := &model.LLMCall{
		Step:         step,
		ClothingItem: clothingItem,
		Provider:     client.ProviderName(),
		Model:        client.ModelName(),
		Success:      callErr == nil,
		DurationMs:   &durationMs,
	}
	if callErr != nil {
		msg := callErr.Error()
		call.ErrorMessage = &msg
	}

	if err := t.repo.Create(ctx, call); err != nil {
		t.logger.Error("recording LLM call", zap.String("step", string(step)), zap.Error(err))
	}
}
