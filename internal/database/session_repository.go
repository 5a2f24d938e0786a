package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rentpilot/rentpilot/internal/models"
)

// SessionRepository stores negotiation sessions in Postgres.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

var _ models.SessionRepository = (*SessionRepository)(nil)

// Create persists a session, assigning it a fresh identifier.
func (r *SessionRepository) Create(ctx context.Context, session *models.NegotiationSession) error {
	session.ID = uuid.New().String()

	query := `
		INSERT INTO negotiation_sessions (
			id, location, current_price, property_type, area, description, landlord_type,
			user_budget, urgency, additional_info,
			suggested_price, negotiation_strategy, talking_points, risk_assessment,
			success_probability, market_insights, strategy
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		session.ID,
		session.Context.Property.Location,
		session.Context.Property.CurrentPrice,
		session.Context.Property.PropertyType,
		session.Context.Property.Area,
		session.Context.Property.Description,
		session.Context.Property.LandlordType,
		session.Context.Budget,
		string(session.Context.Urgency),
		session.Context.AdditionalInfo,
		session.Advice.SuggestedPrice,
		session.Advice.NegotiationStrategy,
		pq.Array(session.Advice.TalkingPoints),
		session.Advice.RiskAssessment,
		session.Advice.SuccessProbability,
		session.Advice.MarketInsights,
		string(session.Advice.Strategy),
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create negotiation session: %w", err)
	}
	return nil
}

const sessionColumns = `
	id, location, current_price, property_type, area, description, landlord_type,
	user_budget, urgency, additional_info,
	suggested_price, negotiation_strategy, talking_points, risk_assessment,
	success_probability, market_insights, strategy, created_at, updated_at
`

// Get returns a session by id, or nil when none exists.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.NegotiationSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM negotiation_sessions WHERE id = $1`
	session, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get negotiation session: %w", err)
	}
	return session, nil
}

// List returns the most recent sessions, newest first.
func (r *SessionRepository) List(ctx context.Context, limit int) ([]models.NegotiationSession, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + sessionColumns + ` FROM negotiation_sessions ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list negotiation sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.NegotiationSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// Count returns the total number of stored sessions.
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM negotiation_sessions").Scan(&count)
	return count, err
}

// MarketAnalysis averages asking and suggested prices across sessions whose
// location matches the given substring.
func (r *SessionRepository) MarketAnalysis(ctx context.Context, location string) (*models.MarketAnalysis, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(AVG(current_price), 0),
		       COALESCE(AVG(suggested_price), 0)
		FROM negotiation_sessions
		WHERE location ILIKE '%' || $1 || '%'
	`
	analysis := &models.MarketAnalysis{Location: location}
	err := r.db.QueryRowContext(ctx, query, location).Scan(
		&analysis.SessionCount,
		&analysis.AverageCurrentPrice,
		&analysis.AverageSuggestedPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate market analysis: %w", err)
	}

	if analysis.AverageCurrentPrice > 0 {
		analysis.DiscountPercent = (analysis.AverageCurrentPrice - analysis.AverageSuggestedPrice) /
			analysis.AverageCurrentPrice * 100
	}
	return analysis, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.NegotiationSession, error) {
	var (
		s        models.NegotiationSession
		urgency  string
		strategy string
		points   []string
	)
	err := row.Scan(
		&s.ID,
		&s.Context.Property.Location,
		&s.Context.Property.CurrentPrice,
		&s.Context.Property.PropertyType,
		&s.Context.Property.Area,
		&s.Context.Property.Description,
		&s.Context.Property.LandlordType,
		&s.Context.Budget,
		&urgency,
		&s.Context.AdditionalInfo,
		&s.Advice.SuggestedPrice,
		&s.Advice.NegotiationStrategy,
		pq.Array(&points),
		&s.Advice.RiskAssessment,
		&s.Advice.SuccessProbability,
		&s.Advice.MarketInsights,
		&strategy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Context.Urgency = models.Urgency(urgency)
	s.Advice.TalkingPoints = points
	s.Advice.Strategy = models.ExtractionStrategy(strategy)
	return &s, nil
}

// Touch updates the session's updated_at timestamp.
func (r *SessionRepository) Touch(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE negotiation_sessions SET updated_at = $1 WHERE id = $2",
		time.Now(), id,
	)
	return err
}
