package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/rentpilot/rentpilot/internal/models"
)

// FeedbackRepository stores post-hoc negotiation feedback in Postgres.
type FeedbackRepository struct {
	db *sql.DB
}

// NewFeedbackRepository constructs a FeedbackRepository.
func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

var _ models.FeedbackRepository = (*FeedbackRepository)(nil)

// Create persists a feedback record, assigning it a fresh identifier.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	feedback.ID = uuid.New().String()

	query := `
		INSERT INTO user_feedback (id, session_id, outcome, actual_price, comment, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		feedback.ID,
		feedback.SessionID,
		string(feedback.Outcome),
		feedback.ActualPrice,
		feedback.Comment,
		feedback.Rating,
	).Scan(&feedback.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// ListBySession returns all feedback for a session, oldest first.
func (r *FeedbackRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Feedback, error) {
	query := `
		SELECT id, session_id, outcome, actual_price, comment, rating, created_at
		FROM user_feedback
		WHERE session_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var items []models.Feedback
	for rows.Next() {
		var (
			f       models.Feedback
			outcome string
		)
		if err := rows.Scan(&f.ID, &f.SessionID, &outcome, &f.ActualPrice, &f.Comment, &f.Rating, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Outcome = models.FeedbackOutcome(outcome)
		items = append(items, f)
	}
	return items, rows.Err()
}
