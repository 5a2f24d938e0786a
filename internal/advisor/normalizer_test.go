package advisor

import (
	"io"
	"math"
	"strings"
	"testing"

	"github.com/rentpilot/rentpilot/internal/models"
	"log/slog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const validResponse = `{
	"suggested_price": 4500,
	"negotiation_strategy": "Anchor low, concede slowly.",
	"talking_points": ["I can sign today.", "I found cheaper comparables."],
	"risk_assessment": "The landlord may hold firm.",
	"success_probability": 0.65,
	"market_insights": "Prices in the area are softening."
}`

func TestNormalizeDirectJSON(t *testing.T) {
	n := NewNormalizer(testLogger())

	record := n.Normalize(validResponse)

	if record.Strategy != models.StrategyDirectJSON {
		t.Fatalf("expected strategy %q, got %q", models.StrategyDirectJSON, record.Strategy)
	}
	if record.SuggestedPrice != 4500 {
		t.Errorf("expected suggested price 4500, got %d", record.SuggestedPrice)
	}
	if record.NegotiationStrategy != "Anchor low, concede slowly." {
		t.Errorf("unexpected negotiation strategy: %q", record.NegotiationStrategy)
	}
	if len(record.TalkingPoints) != 2 {
		t.Errorf("expected 2 talking points, got %d", len(record.TalkingPoints))
	}
	if record.SuccessProbability != 0.65 {
		t.Errorf("expected probability 0.65, got %v", record.SuccessProbability)
	}
}

func TestNormalizeStrategyOrder(t *testing.T) {
	n := NewNormalizer(testLogger())

	tests := []struct {
		name     string
		input    string
		strategy models.ExtractionStrategy
	}{
		{
			name:     "clean json with surrounding prose",
			input:    "Here is my analysis:\n" + validResponse + "\nGood luck!",
			strategy: models.StrategyDirectJSON,
		},
		{
			name: "raw newline inside string value",
			input: `{"suggested_price": 4400, "negotiation_strategy": "First meet in person.
Then talk price.", "talking_points": [], "risk_assessment": "", "success_probability": 0.6, "market_insights": ""}`,
			strategy: models.StrategyCleanedJSON,
		},
		{
			name: "fenced block with broken braces outside",
			input: "Notes { draft\n```json\n" + `{"suggested_price": 4300, "negotiation_strategy": "Go slow.", "talking_points": ["Point one"], "risk_assessment": "Low.", "success_probability": 0.7, "market_insights": "Stable."}` + "\n```",
			strategy: models.StrategyFencedJSON,
		},
		{
			name:     "labeled fields without braces",
			input:    "suggested_price: 4200\nnegotiation_strategy: Lead with comparables and stay friendly.",
			strategy: models.StrategyTextMining,
		},
		{
			name:     "free prose",
			input:    "I would suggest 4300 as a counter offer. Your success chance is around 70%.",
			strategy: models.StrategyTextSalvage,
		},
		{
			name:     "empty response text",
			input:    "",
			strategy: models.StrategyTextSalvage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := n.Normalize(tt.input)
			if record.Strategy != tt.strategy {
				t.Fatalf("expected strategy %q, got %q", tt.strategy, record.Strategy)
			}
		})
	}
}

func TestNormalizeCleanedJSONRecoversFields(t *testing.T) {
	n := NewNormalizer(testLogger())

	input := `{"suggested_price": 4400, "negotiation_strategy": "First line.
Second line.", "talking_points": ["One"], "risk_assessment": "Some risk.", "success_probability": 0.55, "market_insights": "Flat market."}`

	record := n.Normalize(input)

	if record.Strategy != models.StrategyCleanedJSON {
		t.Fatalf("expected cleaned_json, got %q", record.Strategy)
	}
	if record.SuggestedPrice != 4400 {
		t.Errorf("expected price 4400, got %d", record.SuggestedPrice)
	}
	if !strings.Contains(record.NegotiationStrategy, "Second line.") {
		t.Errorf("newline repair lost content: %q", record.NegotiationStrategy)
	}
}

func TestNormalizeTextMiningFillsDefaults(t *testing.T) {
	n := NewNormalizer(testLogger())

	record := n.Normalize("suggested_price: 4200")

	if record.Strategy != models.StrategyTextMining {
		t.Fatalf("expected text_mining, got %q", record.Strategy)
	}
	if record.SuggestedPrice != 4200 {
		t.Errorf("expected price 4200, got %d", record.SuggestedPrice)
	}
	if len(record.TalkingPoints) != len(defaultTalkingPoints) {
		t.Errorf("expected default talking points, got %v", record.TalkingPoints)
	}
	if record.NegotiationStrategy != salvageStrategyText {
		t.Errorf("expected default strategy text, got %q", record.NegotiationStrategy)
	}
	if record.SuccessProbability != defaultProbability {
		t.Errorf("expected default probability, got %v", record.SuccessProbability)
	}
}

func TestNormalizeTextMiningTalkingPoints(t *testing.T) {
	n := NewNormalizer(testLogger())

	input := `negotiation_strategy: Push on the vacancy angle,
talking_points: ["First point", "Second point", "Third point"]`

	record := n.Normalize(input)

	if record.Strategy != models.StrategyTextMining {
		t.Fatalf("expected text_mining, got %q", record.Strategy)
	}
	if len(record.TalkingPoints) != 3 {
		t.Fatalf("expected 3 talking points, got %v", record.TalkingPoints)
	}
	if record.TalkingPoints[0] != "First point" {
		t.Errorf("unexpected first talking point: %q", record.TalkingPoints[0])
	}
	if record.NegotiationStrategy != "Push on the vacancy angle" {
		t.Errorf("unexpected strategy text: %q", record.NegotiationStrategy)
	}
}

func TestNormalizeMinesRecommendedPriceFromProse(t *testing.T) {
	n := NewNormalizer(testLogger())

	record := n.Normalize("Overall I recommend 3900 per month. Success likelihood: roughly 45%.")

	if record.Strategy != models.StrategyTextMining {
		// "recommend 3900" matches a mining price pattern, so mining wins here.
		t.Fatalf("expected text_mining, got %q", record.Strategy)
	}
	if record.SuggestedPrice != 3900 {
		t.Errorf("expected price 3900, got %d", record.SuggestedPrice)
	}
}

func TestNormalizeSalvageDefaultsOnGarbage(t *testing.T) {
	n := NewNormalizer(testLogger())

	record := n.Normalize("no structure here whatsoever")

	if record.Strategy != models.StrategyTextSalvage {
		t.Fatalf("expected text_salvage, got %q", record.Strategy)
	}
	if record.SuggestedPrice != 0 {
		t.Errorf("expected price 0, got %d", record.SuggestedPrice)
	}
	if record.SuccessProbability != defaultProbability {
		t.Errorf("expected default probability, got %v", record.SuccessProbability)
	}
	if len(record.TalkingPoints) != len(defaultTalkingPoints) {
		t.Errorf("expected default talking points, got %v", record.TalkingPoints)
	}
}

func TestNormalizeEmptyTalkingPointsPreserved(t *testing.T) {
	n := NewNormalizer(testLogger())

	input := `{"suggested_price": 4500, "negotiation_strategy": "s", "talking_points": [], "risk_assessment": "r", "success_probability": 0.6, "market_insights": "m"}`
	record := n.Normalize(input)

	if record.Strategy != models.StrategyDirectJSON {
		t.Fatalf("expected direct_json, got %q", record.Strategy)
	}
	if record.TalkingPoints == nil {
		t.Fatal("talking points must be an empty list, not nil")
	}
	if len(record.TalkingPoints) != 0 {
		t.Errorf("expected empty talking points, got %v", record.TalkingPoints)
	}
}

func TestNormalizeTalkingPointsCapped(t *testing.T) {
	n := NewNormalizer(testLogger())

	input := `{"suggested_price": 4500, "negotiation_strategy": "s", "talking_points": ["1","2","3","4","5","6","7"], "risk_assessment": "r", "success_probability": 0.6, "market_insights": "m"}`
	record := n.Normalize(input)

	if len(record.TalkingPoints) != maxTalkingPoints {
		t.Fatalf("expected %d talking points, got %d", maxTalkingPoints, len(record.TalkingPoints))
	}
}

func TestNormalizeMissingFieldsGetDefaults(t *testing.T) {
	n := NewNormalizer(testLogger())

	record := n.Normalize(`{"suggested_price": 4100}`)

	if record.Strategy != models.StrategyDirectJSON {
		t.Fatalf("expected direct_json, got %q", record.Strategy)
	}
	if record.SuggestedPrice != 4100 {
		t.Errorf("expected price 4100, got %d", record.SuggestedPrice)
	}
	if record.NegotiationStrategy != "" {
		t.Errorf("expected empty strategy text, got %q", record.NegotiationStrategy)
	}
	if record.TalkingPoints == nil || len(record.TalkingPoints) != 0 {
		t.Errorf("expected empty talking points, got %v", record.TalkingPoints)
	}
	if record.SuccessProbability != defaultProbability {
		t.Errorf("expected default probability, got %v", record.SuccessProbability)
	}
}

func TestNormalizeSparseObjectWithTextualProbability(t *testing.T) {
	n := NewNormalizer(testLogger())

	record := n.Normalize(`{"suggested_price": 5200, "success_probability": "high"}`)

	if record.Strategy != models.StrategyDirectJSON {
		t.Fatalf("expected direct_json, got %q", record.Strategy)
	}
	if record.SuggestedPrice != 5200 {
		t.Errorf("expected price 5200, got %d", record.SuggestedPrice)
	}
	if record.SuccessProbability != 0.8 {
		t.Errorf("expected probability 0.8, got %v", record.SuccessProbability)
	}
	if record.NegotiationStrategy != "" || record.RiskAssessment != "" || record.MarketInsights != "" {
		t.Error("absent text fields must stay empty for structured strategies")
	}
	if record.TalkingPoints == nil || len(record.TalkingPoints) != 0 {
		t.Errorf("expected empty talking points, got %v", record.TalkingPoints)
	}
}

func TestCoercePrice(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"number", float64(4500), 4500},
		{"negative number", float64(-200), 0},
		{"numeric string", "4500", 4500},
		{"string with currency sign", "$4800", 4800},
		{"non numeric string", "a fair price", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coercePrice(tt.value); got != tt.want {
				t.Fatalf("coercePrice(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestCoerceProbability(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"in range", float64(0.65), 0.65},
		{"percentage scale", float64(75), 0.75},
		{"above percentage scale", float64(250), 1},
		{"negative", float64(-0.2), 0},
		{"numeric string", "0.8", 0.8},
		{"percent string", "85%", 0.85},
		{"high text", "high", 0.8},
		{"medium-high text", "medium to high", 0.7},
		{"medium text", "moderate", 0.6},
		{"low text", "low", 0.4},
		{"unknown text", "who knows", defaultProbability},
		{"nil", nil, defaultProbability},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := coerceProbability(tt.value)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("coerceProbability(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestNormalizeProbabilityBounds(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1, 1},
		{0.5, 0.5},
		{65, 0.65},
		{100, 1},
		{101, 1},
		{-5, 0},
	}

	for _, tt := range tests {
		if got := normalizeProbability(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("normalizeProbability(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCleanCandidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "raw newline inside string",
			in:   "{\"a\": \"x\ny\"}",
			want: `{"a": "x\ny"}`,
		},
		{
			name: "doubly escaped newline collapsed",
			in:   `{"a": "x\\ny"}`,
			want: `{"a": "x\ny"}`,
		},
		{
			name: "newline between tokens untouched",
			in:   "{\n\"a\": 1\n}",
			want: "{\n\"a\": 1\n}",
		},
		{
			name: "control character dropped",
			in:   "{\"a\": \"x\x01y\"}",
			want: `{"a": "xy"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanCandidate(tt.in); got != tt.want {
				t.Fatalf("cleanCandidate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOuterBraces(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`prefix {"a": 1} suffix`, `{"a": 1}`, true},
		{`{"a": {"b": 2}}`, `{"a": {"b": 2}}`, true},
		{"no braces", "", false},
		{"} reversed {", "", false},
	}

	for _, tt := range tests {
		got, ok := outerBraces(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("outerBraces(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
