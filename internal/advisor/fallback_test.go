package advisor

import (
	"testing"

	"github.com/rentpilot/rentpilot/internal/models"
)

func TestFallbackBudgetCoversAsking(t *testing.T) {
	record := FallbackAdvisor{}.Advise(models.PropertyDescription{CurrentPrice: 5000}, 5200)

	if record.SuggestedPrice != 5200 {
		t.Errorf("expected suggested price 5200, got %d", record.SuggestedPrice)
	}
	if record.SuccessProbability != 0.9 {
		t.Errorf("expected probability 0.9, got %v", record.SuccessProbability)
	}
}

func TestFallbackSmallGap(t *testing.T) {
	// gap 300, suggested = 5000 - 240
	record := FallbackAdvisor{}.Advise(models.PropertyDescription{CurrentPrice: 5000}, 4700)

	if record.SuggestedPrice != 4760 {
		t.Errorf("expected suggested price 4760, got %d", record.SuggestedPrice)
	}
	if record.SuccessProbability != 0.7 {
		t.Errorf("expected probability 0.7, got %v", record.SuccessProbability)
	}
}

func TestFallbackLargeGapCutCapped(t *testing.T) {
	// gap 4000, half-gap 2000 capped at 1000
	record := FallbackAdvisor{}.Advise(models.PropertyDescription{CurrentPrice: 8000}, 4000)

	if record.SuggestedPrice != 7000 {
		t.Errorf("expected suggested price 7000, got %d", record.SuggestedPrice)
	}
	if record.SuccessProbability != 0.5 {
		t.Errorf("expected probability 0.5, got %v", record.SuccessProbability)
	}
}

func TestFallbackBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		price     int
		budget    int
		wantPrice int
		wantProb  float64
	}{
		{"equal price and budget", 5000, 5000, 5000, 0.9},
		{"budget above asking", 6000, 6200, 6200, 0.9},
		{"gap of 500 at higher price", 6000, 5500, 5600, 0.7},
		{"half-gap hits cap exactly", 5000, 3000, 4000, 0.5},
		{"gap exactly 500", 5000, 4500, 4600, 0.7},
		{"gap just above 500", 5000, 4499, 4750, 0.5},
		{"gap below cap", 5000, 4200, 4600, 0.5},
		{"zero budget", 3000, 0, 2000, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := FallbackAdvisor{}.Advise(models.PropertyDescription{CurrentPrice: tt.price}, tt.budget)
			if record.SuggestedPrice != tt.wantPrice {
				t.Errorf("suggested price = %d, want %d", record.SuggestedPrice, tt.wantPrice)
			}
			if record.SuccessProbability != tt.wantProb {
				t.Errorf("probability = %v, want %v", record.SuccessProbability, tt.wantProb)
			}
		})
	}
}

func TestFallbackUnsetAskingPrice(t *testing.T) {
	// Non-positive asking price is treated as 5000.
	record := FallbackAdvisor{}.Advise(models.PropertyDescription{}, 4500)

	if record.SuggestedPrice != 4600 {
		t.Errorf("expected suggested price 4600, got %d", record.SuggestedPrice)
	}
	if record.SuccessProbability != 0.7 {
		t.Errorf("expected probability 0.7, got %v", record.SuccessProbability)
	}
}

func TestFallbackRecordShape(t *testing.T) {
	record := FallbackAdvisor{}.Advise(models.PropertyDescription{CurrentPrice: 5000}, 4700)

	if record.Strategy != models.StrategyFallback {
		t.Errorf("expected fallback tag, got %q", record.Strategy)
	}
	if len(record.TalkingPoints) != 5 {
		t.Errorf("expected 5 talking points, got %d", len(record.TalkingPoints))
	}
	if record.NegotiationStrategy == "" || record.RiskAssessment == "" || record.MarketInsights == "" {
		t.Error("all narrative fields must be populated")
	}
	if record.SuccessProbability < 0 || record.SuccessProbability > 1 {
		t.Errorf("probability out of range: %v", record.SuccessProbability)
	}
}
