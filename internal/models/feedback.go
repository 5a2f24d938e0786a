package models

import (
	"fmt"
	"time"
)

// FeedbackOutcome tags how the negotiation ended.
type FeedbackOutcome string

const (
	OutcomeSuccess FeedbackOutcome = "success"
	OutcomeFailed  FeedbackOutcome = "failed"
	OutcomePartial FeedbackOutcome = "partial"
)

// Feedback is an optional post-hoc report on how the advised negotiation
// actually went, keyed by session.
type Feedback struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Outcome     FeedbackOutcome `json:"outcome"`
	ActualPrice *int            `json:"actual_price,omitempty"`
	Comment     string          `json:"comment,omitempty"`
	Rating      *int            `json:"rating,omitempty"` // 1-5
	CreatedAt   time.Time       `json:"created_at"`
}

// Validate checks the outcome tag and rating bounds.
func (f Feedback) Validate() error {
	switch f.Outcome {
	case OutcomeSuccess, OutcomeFailed, OutcomePartial:
	default:
		return fmt.Errorf("unknown outcome %q: must be one of success, failed, partial", f.Outcome)
	}
	if f.Rating != nil && (*f.Rating < 1 || *f.Rating > 5) {
		return fmt.Errorf("rating must be between 1 and 5, got %d", *f.Rating)
	}
	if f.ActualPrice != nil && *f.ActualPrice < 0 {
		return fmt.Errorf("actual_price must be >= 0, got %d", *f.ActualPrice)
	}
	return nil
}
