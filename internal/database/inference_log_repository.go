package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rentpilot/rentpilot/internal/models"
)

// InferenceLogRepository stores audit records for model API calls.
type InferenceLogRepository struct {
	db *sql.DB
}

// NewInferenceLogRepository constructs an InferenceLogRepository.
func NewInferenceLogRepository(db *sql.DB) *InferenceLogRepository {
	return &InferenceLogRepository{db: db}
}

// Create inserts a single inference log row.
func (r *InferenceLogRepository) Create(ctx context.Context, log models.InferenceLog) error {
	query := `
		INSERT INTO inference_logs (
			provider, model, operation, tokens_used, input_tokens, output_tokens,
			latency_ms, status, error_message, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	metadata := log.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	_, err := r.db.ExecContext(ctx, query,
		log.Provider, log.Model, log.Operation, log.TokensUsed,
		log.InputTokens, log.OutputTokens, log.LatencyMs,
		log.Status, log.ErrorMessage, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to insert inference log: %w", err)
	}
	return nil
}

// CountByStatus returns the number of logged calls per status.
func (r *InferenceLogRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM inference_logs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count inference logs: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
