package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rentpilot/rentpilot/internal/models"
)

// ModelConfigRepository stores the generative model configuration. The table
// holds a single row.
type ModelConfigRepository struct {
	db *sql.DB
}

// NewModelConfigRepository constructs a ModelConfigRepository.
func NewModelConfigRepository(db *sql.DB) *ModelConfigRepository {
	return &ModelConfigRepository{db: db}
}

// Get returns the current model configuration, or nil when none is stored.
func (r *ModelConfigRepository) Get(ctx context.Context) (*models.ModelConfig, error) {
	query := `
		SELECT id, model, temperature, max_tokens, enabled, updated_at, created_at
		FROM model_config
		ORDER BY id
		LIMIT 1
	`
	var cfg models.ModelConfig
	err := r.db.QueryRowContext(ctx, query).Scan(
		&cfg.ID, &cfg.Model, &cfg.Temperature, &cfg.MaxTokens, &cfg.Enabled,
		&cfg.UpdatedAt, &cfg.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model config: %w", err)
	}
	return &cfg, nil
}

// Update applies the non-nil fields of the update to the stored configuration,
// inserting the row if it does not exist yet.
func (r *ModelConfigRepository) Update(ctx context.Context, update models.ModelConfigUpdate) (*models.ModelConfig, error) {
	current, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		current = &models.ModelConfig{}
		err = r.db.QueryRowContext(ctx, `
			INSERT INTO model_config (model, temperature, max_tokens, enabled)
			VALUES ('', 0, 0, false)
			RETURNING id, model, temperature, max_tokens, enabled, updated_at, created_at
		`).Scan(&current.ID, &current.Model, &current.Temperature, &current.MaxTokens,
			&current.Enabled, &current.UpdatedAt, &current.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to seed model config: %w", err)
		}
	}

	if update.Model != nil {
		current.Model = *update.Model
	}
	if update.Temperature != nil {
		current.Temperature = *update.Temperature
	}
	if update.MaxTokens != nil {
		current.MaxTokens = *update.MaxTokens
	}
	if update.Enabled != nil {
		current.Enabled = *update.Enabled
	}

	err = r.db.QueryRowContext(ctx, `
		UPDATE model_config
		SET model = $1, temperature = $2, max_tokens = $3, enabled = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`, current.Model, current.Temperature, current.MaxTokens, current.Enabled, current.ID).
		Scan(&current.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update model config: %w", err)
	}
	return current, nil
}
