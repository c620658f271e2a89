package model

import "time"

// CallStep identifies which model call of a pipeline an LLMCall belongs to.
type CallStep string

const (
	StepExtract CallStep = "extract"
	StepAdvice  CallStep = "advice"
	StepOutfit  CallStep = "outfit"
)

// LLMCall tracks one call to a model provider for cost monitoring.
// It records metadata only; extracted products and generated advice are never stored.
type LLMCall struct {
	ID           int64     `db:"id" json:"id"`
	Step         CallStep  `db:"step" json:"step"`
	ClothingItem string    `db:"clothing_item" json:"clothing_item"`
	Provider     string    `db:"provider" json:"provider"`
	Model        string    `db:"model" json:"model"`
	Success      bool      `db:"success" json:"success"`
	DurationMs   *int64    `db:"duration_ms" json:"duration_ms,omitempty"`
	ErrorMessage *string   `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// LLMCallStats aggregates calls for one step.
type LLMCallStats struct {
	Step      CallStep `db:"step" json:"step"`
	Total     int64    `db:"total" json:"total"`
	Succeeded int64    `db:"succeeded" json:"succeeded"`
	Failed    int64    `db:"failed" json:"failed"`
}
