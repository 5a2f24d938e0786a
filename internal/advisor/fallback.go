package advisor

import (
	"fmt"

	"github.com/rentpilot/rentpilot/internal/models"
)

// defaultCurrentPrice substitutes for an unset (non-positive) asking price in
// the fallback path.
const defaultCurrentPrice = 5000

// maxFallbackCut bounds the discount the fallback advisor will suggest when
// the gap is large.
const maxFallbackCut = 1000

// FallbackAdvisor computes advice arithmetically from the input numbers. It
// is the availability floor of the pipeline: no external calls, no failure
// path.
type FallbackAdvisor struct{}

// Advise returns a deterministic advice record from the asking price and the
// tenant's budget.
func (FallbackAdvisor) Advise(property models.PropertyDescription, budget int) models.AdviceRecord {
	price := property.CurrentPrice
	if price <= 0 {
		price = defaultCurrentPrice
	}

	gap := price - budget
	var (
		suggested   int
		probability float64
	)
	switch {
	case gap <= 0:
		// Budget covers the asking price: no real negotiation needed.
		suggested = budget
		probability = 0.9
	case gap <= 500:
		suggested = price - int(float64(gap)*0.8)
		probability = 0.7
	default:
		cut := gap / 2
		if cut > maxFallbackCut {
			cut = maxFallbackCut
		}
		suggested = price - cut
		probability = 0.5
	}

	return models.AdviceRecord{
		SuggestedPrice: suggested,
		NegotiationStrategy: fmt.Sprintf(
			"The asking price is %d and your budget is %d. Open the conversation at %d and leave yourself room to meet in the middle.",
			price, budget, suggested),
		TalkingPoints: []string{
			"Hi, I'm really interested in this place.",
			"Is there any flexibility on the price?",
			"I can commit to a long lease, which cuts your vacancy risk.",
			fmt.Sprintf("If we can agree on %d, I'm ready to sign right away.", suggested),
			"That's the most I can stretch my budget.",
		},
		RiskAssessment:     "Read the landlord's reaction before pressing further; avoid hard ultimatums.",
		SuccessProbability: probability,
		MarketInsights:     "Check asking prices for comparable units nearby before the conversation.",
		Strategy:           models.StrategyFallback,
	}
}
