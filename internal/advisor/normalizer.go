package advisor

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/rentpilot/rentpilot/internal/models"
)

// defaultProbability is used whenever no usable probability can be recovered.
const defaultProbability = 0.6

// maxTalkingPoints caps the talking point list everywhere.
const maxTalkingPoints = 5

// defaultTalkingPoints is substituted by the text-mining and salvage
// strategies when no list can be recovered from the response.
var defaultTalkingPoints = []string{
	"Hi, I really like this place. Is there any room on the price?",
	"I can commit to a longer lease, which cuts your vacancy risk.",
	"I'm ready to decide today if the price works.",
	"I'm a stable tenant and will take good care of the place.",
}

const (
	salvageStrategyText = "Anchor on comparable listings and negotiate from the asking price toward your budget."
	salvageRiskText     = "Watch the landlord's reaction and adjust before pushing further."
	salvageInsightsText = "Not enough market signal in the response; compare similar listings nearby before committing."
)

// strategy is one candidate algorithm for recovering an AdviceRecord from raw
// model text. It reports ok=false to pass control to the next strategy.
type strategy struct {
	tag models.ExtractionStrategy
	fn  func(text string) (*models.AdviceRecord, bool)
}

// Normalizer recovers a typed AdviceRecord from free-form model output by
// trying an ordered chain of extraction strategies. It never fails: the final
// salvage strategy is total.
type Normalizer struct {
	logger     *slog.Logger
	strategies []strategy
}

// NewNormalizer constructs a Normalizer with the standard strategy order.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	n := &Normalizer{logger: logger}
	n.strategies = []strategy{
		{models.StrategyDirectJSON, n.parseDirect},
		{models.StrategyCleanedJSON, n.parseCleaned},
		{models.StrategyFencedJSON, n.parseFenced},
		{models.StrategyTextMining, n.mineLabeledFields},
		{models.StrategyTextSalvage, n.salvagePlainText},
	}
	return n
}

// Normalize runs the strategy chain against raw response text. Each strategy
// is attempted only if the previous one failed; the record is tagged with the
// strategy that produced it.
func (n *Normalizer) Normalize(text string) models.AdviceRecord {
	for _, s := range n.strategies {
		record, ok := s.fn(text)
		if !ok {
			continue
		}
		record.Strategy = s.tag
		if s.tag != models.StrategyDirectJSON {
			n.logger.Debug("normalized degraded model response", "strategy", s.tag)
		}
		return *record
	}

	// Unreachable: salvage always succeeds. Kept as a hard floor.
	record := salvageDefaults()
	record.Strategy = models.StrategyTextSalvage
	return record
}

// --- strategy 1: direct extraction ---

// parseDirect locates the outermost brace-delimited substring and parses it
// as-is.
func (n *Normalizer) parseDirect(text string) (*models.AdviceRecord, bool) {
	candidate, ok := outerBraces(text)
	if !ok {
		return nil, false
	}
	return parseObject(candidate)
}

// --- strategy 2: cleaned extraction ---

// parseCleaned retries the same candidate after sanitizing common model
// output damage: stray control characters, raw newlines inside string
// values, doubly-escaped sequences and over-escaped quotes.
func (n *Normalizer) parseCleaned(text string) (*models.AdviceRecord, bool) {
	candidate, ok := outerBraces(text)
	if !ok {
		return nil, false
	}
	return parseObject(cleanCandidate(candidate))
}

// --- strategy 3: fenced-block extraction ---

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*({.+})\\s*```")

// parseFenced looks for a brace-delimited object inside a markdown code
// fence, then cleans and parses it.
func (n *Normalizer) parseFenced(text string) (*models.AdviceRecord, bool) {
	matches := fencedBlockRe.FindStringSubmatch(text)
	if len(matches) < 2 {
		return nil, false
	}
	return parseObject(cleanCandidate(matches[1]))
}

// --- strategy 4: structured text-mining ---

// Price labels in priority order: the first pattern that matches wins.
var priceLabelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)"?suggested_price"?\s*[:：]\s*"?(\d+)`),
	regexp.MustCompile(`(?i)suggested\s+price\s*(?:is|of)?\s*[:：]?\s*\$?(\d+)`),
	regexp.MustCompile(`(?i)recommend(?:ed)?\s+(?:a\s+)?(?:price\s+)?(?:of\s+)?\$?(\d+)`),
	regexp.MustCompile(`(?i)offer\s*[:：]?\s*\$?(\d+)`),
}

var (
	strategyLabelRe      = regexp.MustCompile(`(?i)"?negotiation_strategy"?\s*[:：]\s*"?([^"\n]+)`)
	talkingPointsBlockRe = regexp.MustCompile(`(?s)"?talking_points"?\s*[:：]\s*\[(.*?)\]`)
	quotedItemRe         = regexp.MustCompile(`"([^"]+)"`)
	probabilityLabelRe   = regexp.MustCompile(`(?i)"?success_probability"?\s*[:：]\s*"?([0-9]*\.?[0-9]+)`)
)

// mineLabeledFields scans the raw text with labeled-field patterns when no
// structured substring parsed. It succeeds as soon as any field is found;
// missing fields get the salvage defaults.
func (n *Normalizer) mineLabeledFields(text string) (*models.AdviceRecord, bool) {
	record := salvageDefaults()
	found := false

	for _, pattern := range priceLabelPatterns {
		if m := pattern.FindStringSubmatch(text); len(m) > 1 {
			if price, err := strconv.Atoi(m[1]); err == nil {
				record.SuggestedPrice = price
				found = true
				break
			}
		}
	}

	if m := strategyLabelRe.FindStringSubmatch(text); len(m) > 1 {
		record.NegotiationStrategy = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[1]), ","))
		found = true
	}

	if m := talkingPointsBlockRe.FindStringSubmatch(text); len(m) > 1 {
		var points []string
		for _, item := range quotedItemRe.FindAllStringSubmatch(m[1], maxTalkingPoints) {
			points = append(points, item[1])
		}
		if len(points) > 0 {
			record.TalkingPoints = points
			found = true
		}
	}

	if m := probabilityLabelRe.FindStringSubmatch(text); len(m) > 1 {
		if p, err := strconv.ParseFloat(m[1], 64); err == nil {
			record.SuccessProbability = normalizeProbability(p)
			found = true
		}
	}

	if !found {
		return nil, false
	}
	return &record, true
}

// --- strategy 5: plain-text salvage ---

var (
	salvagePriceRe       = regexp.MustCompile(`(?i)(?:suggest|recommend)\D{0,40}?(\d+)`)
	salvageProbabilityRe = regexp.MustCompile(`(?i)success\D{0,40}?(\d+(?:\.\d+)?)\s*%`)
)

// salvagePlainText is the terminal strategy: a regex-only pass that recovers
// at most a price and a probability and fills everything else with fixed
// defaults. It always succeeds.
func (n *Normalizer) salvagePlainText(text string) (*models.AdviceRecord, bool) {
	record := salvageDefaults()

	if m := salvagePriceRe.FindStringSubmatch(text); len(m) > 1 {
		if price, err := strconv.Atoi(m[1]); err == nil {
			record.SuggestedPrice = price
		}
	}

	if m := salvageProbabilityRe.FindStringSubmatch(text); len(m) > 1 {
		if p, err := strconv.ParseFloat(m[1], 64); err == nil {
			record.SuccessProbability = normalizeProbability(p / 100)
		}
	}

	return &record, true
}

func salvageDefaults() models.AdviceRecord {
	points := make([]string, len(defaultTalkingPoints))
	copy(points, defaultTalkingPoints)
	return models.AdviceRecord{
		SuggestedPrice:      0,
		NegotiationStrategy: salvageStrategyText,
		TalkingPoints:       points,
		RiskAssessment:      salvageRiskText,
		SuccessProbability:  defaultProbability,
		MarketInsights:      salvageInsightsText,
	}
}

// --- shared parsing helpers ---

// rawAdvice tolerates the type looseness of model output: prices may arrive
// as numbers or strings, probabilities as numbers or descriptive text.
type rawAdvice struct {
	SuggestedPrice      any      `json:"suggested_price"`
	NegotiationStrategy string   `json:"negotiation_strategy"`
	TalkingPoints       []string `json:"talking_points"`
	RiskAssessment      string   `json:"risk_assessment"`
	SuccessProbability  any      `json:"success_probability"`
	MarketInsights      string   `json:"market_insights"`
}

// parseObject parses a candidate JSON object into a normalized record.
// Fields missing from the object get deterministic defaults: 0 for the
// price, empty strings for text, an empty list for talking points and the
// default probability.
func parseObject(candidate string) (*models.AdviceRecord, bool) {
	var raw rawAdvice
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil, false
	}

	points := raw.TalkingPoints
	if points == nil {
		points = []string{}
	}
	if len(points) > maxTalkingPoints {
		points = points[:maxTalkingPoints]
	}

	record := &models.AdviceRecord{
		SuggestedPrice:      coercePrice(raw.SuggestedPrice),
		NegotiationStrategy: raw.NegotiationStrategy,
		TalkingPoints:       points,
		RiskAssessment:      raw.RiskAssessment,
		SuccessProbability:  coerceProbability(raw.SuccessProbability),
		MarketInsights:      raw.MarketInsights,
	}
	return record, true
}

// outerBraces returns the substring from the first '{' to the last '}'.
func outerBraces(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// cleanCandidate repairs a JSON candidate that fails to parse as-is.
// Doubly-escaped sequences and over-escaped quotes are collapsed first, then
// raw newlines/tabs/CR inside string values are re-escaped and all other
// control characters are dropped.
func cleanCandidate(s string) string {
	s = strings.ReplaceAll(s, `\\n`, `\n`)
	s = strings.ReplaceAll(s, `\\t`, `\t`)
	s = strings.ReplaceAll(s, `\\r`, `\r`)
	s = strings.ReplaceAll(s, `\\"`, `\"`)

	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		switch r {
		case '\\':
			b.WriteRune(r)
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
			b.WriteRune(r)
		case '\n':
			if inString {
				b.WriteString(`\n`)
			} else {
				b.WriteRune(r)
			}
		case '\t':
			if inString {
				b.WriteString(`\t`)
			} else {
				b.WriteRune(r)
			}
		case '\r':
			if inString {
				b.WriteString(`\r`)
			}
		default:
			if r < 0x20 {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

var digitsRe = regexp.MustCompile(`\d+`)

// coercePrice converts a loosely-typed price value to a non-negative integer.
func coercePrice(value any) int {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0
		}
		return int(v)
	case string:
		if m := digitsRe.FindString(v); m != "" {
			if price, err := strconv.Atoi(m); err == nil {
				return price
			}
		}
	}
	return 0
}

// coerceProbability converts a loosely-typed probability value into [0,1].
// Numeric values go through rescale-and-clamp; descriptive text is mapped by
// keyword; anything else yields the default.
func coerceProbability(value any) float64 {
	switch v := value.(type) {
	case float64:
		return normalizeProbability(v)
	case string:
		if p, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "%"), 64); err == nil {
			if strings.HasSuffix(strings.TrimSpace(v), "%") {
				return normalizeProbability(p / 100)
			}
			return normalizeProbability(p)
		}
		return mapProbabilityText(v)
	}
	return defaultProbability
}

// mapProbabilityText converts a qualitative probability descriptor to a
// numeric value.
func mapProbabilityText(text string) float64 {
	lower := strings.ToLower(text)
	high := strings.Contains(lower, "high")
	medium := strings.Contains(lower, "medium") || strings.Contains(lower, "moderate")
	switch {
	case high && medium:
		return 0.7
	case high:
		return 0.8
	case medium:
		return defaultProbability
	case strings.Contains(lower, "low"):
		return 0.4
	default:
		return defaultProbability
	}
}

// normalizeProbability maps out-of-range numeric probabilities into [0,1].
// Values in (1,100] are treated as percentages; the rest are clamped.
func normalizeProbability(p float64) float64 {
	if p > 1 && p <= 100 {
		p = p / 100
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
