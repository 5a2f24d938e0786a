package models

import "time"

// ModelConfig holds the runtime configuration for the generative model
// backend, editable through the admin API.
type ModelConfig struct {
	ID          int       `json:"id"`
	Model       string    `json:"model"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Enabled     bool      `json:"enabled"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ModelConfigUpdate represents fields that can be updated.
type ModelConfigUpdate struct {
	Model       *string  `json:"model,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Enabled     *bool    `json:"enabled,omitempty"`
}
