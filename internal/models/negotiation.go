package models

import (
	"fmt"
	"time"
)

// Urgency describes how quickly the tenant needs to close.
type Urgency string

const (
	UrgencyUrgent   Urgency = "urgent"
	UrgencyNormal   Urgency = "normal"
	UrgencyFlexible Urgency = "flexible"
)

// ParseUrgency validates a raw urgency value. An empty value defaults to
// UrgencyNormal; anything else outside the enumerated set is rejected.
func ParseUrgency(raw string) (Urgency, error) {
	switch Urgency(raw) {
	case "":
		return UrgencyNormal, nil
	case UrgencyUrgent, UrgencyNormal, UrgencyFlexible:
		return Urgency(raw), nil
	default:
		return "", fmt.Errorf("unknown urgency %q: must be one of urgent, normal, flexible", raw)
	}
}

// PropertyDescription captures what is known about the rental listing.
// All fields except CurrentPrice and PropertyType are optional; the zero
// value means "unknown".
type PropertyDescription struct {
	Location     string `json:"location,omitempty"`
	CurrentPrice int    `json:"current_price"`
	PropertyType string `json:"property_type"`
	Area         int    `json:"area,omitempty"` // square meters
	Description  string `json:"description,omitempty"`
	LandlordType string `json:"landlord_type,omitempty"` // e.g. "individual", "agency"
}

// NegotiationContext is the full input to the advice pipeline: the property,
// the tenant's budget and urgency, and optional free-text supplementary info.
type NegotiationContext struct {
	Property       PropertyDescription `json:"property_info"`
	Budget         int                 `json:"user_budget"`
	Urgency        Urgency             `json:"urgency"`
	AdditionalInfo string              `json:"additional_info,omitempty"`
}

// Validate checks the numeric and enum invariants of the context.
func (c NegotiationContext) Validate() error {
	if c.Property.CurrentPrice < 0 {
		return fmt.Errorf("current_price must be >= 0, got %d", c.Property.CurrentPrice)
	}
	if c.Budget < 0 {
		return fmt.Errorf("user_budget must be >= 0, got %d", c.Budget)
	}
	if _, err := ParseUrgency(string(c.Urgency)); err != nil {
		return err
	}
	return nil
}

// ExtractionStrategy identifies which recovery path produced an AdviceRecord.
type ExtractionStrategy string

const (
	StrategyDirectJSON  ExtractionStrategy = "direct_json"
	StrategyCleanedJSON ExtractionStrategy = "cleaned_json"
	StrategyFencedJSON  ExtractionStrategy = "fenced_json"
	StrategyTextMining  ExtractionStrategy = "text_mining"
	StrategyTextSalvage ExtractionStrategy = "text_salvage"
	StrategyFallback    ExtractionStrategy = "fallback"
)

// AdviceRecord is the canonical normalized negotiation advice. It is
// constructed fresh per request and never mutated after being returned.
type AdviceRecord struct {
	SuggestedPrice      int                `json:"suggested_price"`
	NegotiationStrategy string             `json:"negotiation_strategy"`
	TalkingPoints       []string           `json:"talking_points"`
	RiskAssessment      string             `json:"risk_assessment"`
	SuccessProbability  float64            `json:"success_probability"` // always in [0,1]
	MarketInsights      string             `json:"market_insights"`
	Strategy            ExtractionStrategy `json:"strategy,omitempty"`
}

// NegotiationSession is a persisted negotiation request and its advice.
// The session identifier is assigned by the persistence layer.
type NegotiationSession struct {
	ID        string             `json:"id"`
	Context   NegotiationContext `json:"context"`
	Advice    AdviceRecord       `json:"advice"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// MarketAnalysis aggregates historical sessions matching a location.
type MarketAnalysis struct {
	Location              string  `json:"location"`
	SessionCount          int     `json:"session_count"`
	AverageCurrentPrice   float64 `json:"average_current_price"`
	AverageSuggestedPrice float64 `json:"average_suggested_price"`
	DiscountPercent       float64 `json:"discount_percent"`
}
