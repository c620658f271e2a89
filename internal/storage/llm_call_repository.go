package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fleveque/stylist-service/internal/model"
)

// LLMCallRepository persists the model-call ledger used for cost monitoring
// and the admin stats endpoint.
type LLMCallRepository interface {
	Create(ctx context.Context, call *model.LLMCall) error
	Count(ctx context.Context) (int64, error)
	StatsByStep(ctx context.Context, since time.Time) ([]model.LLMCallStats, error)
	ListRecent(ctx context.Context, limit int) ([]model.LLMCall, error)
}

type sqliteLLMCallRepository struct {
	db *sqlx.DB
}

// NewLLMCallRepository creates a new SQLite-backed LLMCallRepository.
func NewLLMCallRepository(db *sqlx.DB) LLMCallRepository {
	return &sqliteLLMCallRepository{db: db}
}

func (r *sqliteLLMCallRepository) Create(ctx context.Context, call *model.LLMCall) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO llm_calls (step, clothing_item, provider, model, success, duration_ms, error_message)
		VALUES (:step, :clothing_item, :provider, :model, :success, :duration_ms, :error_message)
	`, call)
	if err != nil {
		return fmt.Errorf("creating llm call record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	call.ID = id
	return nil
}

func (r *sqliteLLMCallRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM llm_calls"); err != nil {
		return 0, fmt.Errorf("counting llm calls: %w", err)
	}
	return count, nil
}

// StatsByStep aggregates calls made at or after since, one row per step.
// A zero since covers the whole ledger.
func (r *sqliteLLMCallRepository) StatsByStep(ctx context.Context, since time.Time) ([]model.LLMCallStats, error) {
	var stats []model.LLMCallStats
	err := r.db.SelectContext(ctx, &stats, `
		SELECT step,
		       COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) AS succeeded,
		       COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0) AS failed
		FROM llm_calls
		WHERE created_at >= ?
		GROUP BY step
		ORDER BY step
	`, since.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, fmt.Errorf("aggregating llm calls: %w", err)
	}
	return stats, nil
}

func (r *sqliteLLMCallRepository) ListRecent(ctx context.Context, limit int) ([]model.LLMCall, error) {
	var calls []model.LLMCall
	err := r.db.SelectContext(ctx, &calls,
		"SELECT * FROM llm_calls ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent llm calls: %w", err)
	}
	return calls, nil
}
