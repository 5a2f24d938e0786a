package models

import "context"

// SessionRepository persists negotiation sessions and answers aggregate
// market queries over them.
type SessionRepository interface {
	Create(ctx context.Context, session *NegotiationSession) error
	Get(ctx context.Context, id string) (*NegotiationSession, error)
	List(ctx context.Context, limit int) ([]NegotiationSession, error)
	Count(ctx context.Context) (int, error)
	MarketAnalysis(ctx context.Context, location string) (*MarketAnalysis, error)
}

// FeedbackRepository persists post-hoc negotiation feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *Feedback) error
	ListBySession(ctx context.Context, sessionID string) ([]Feedback, error)
}
