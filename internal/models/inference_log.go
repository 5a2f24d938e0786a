package models

import "time"

// InferenceLog represents a single generative model API call made by the
// advice pipeline, recorded for audit and cost tracking.
type InferenceLog struct {
	ID           int       `json:"id"`
	Provider     string    `json:"provider"`  // 'openai'
	Model        string    `json:"model"`     // 'gpt-4o', 'gpt-4o-mini', etc.
	Operation    string    `json:"operation"` // 'negotiation_advice'
	TokensUsed   int       `json:"tokens_used"`
	InputTokens  *int      `json:"input_tokens"`
	OutputTokens *int      `json:"output_tokens"`
	LatencyMs    *int      `json:"latency_ms"`
	Status       string    `json:"status"` // 'success', 'error'
	ErrorMessage *string   `json:"error_message"`
	Metadata     string    `json:"metadata"` // JSONB metadata
	CreatedAt    time.Time `json:"created_at"`
}
