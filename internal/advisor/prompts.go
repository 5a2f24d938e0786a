package advisor

import (
	"fmt"
	"strings"

	"github.com/rentpilot/rentpilot/internal/models"
)

// systemPrompt instructs the model on its role and the required output shape.
const systemPrompt = `CRITICAL: You MUST output ONLY valid JSON. Do not include any text before or after the JSON object. Do not wrap it in markdown code blocks. Output the raw JSON object directly.

You are a veteran rental negotiation coach with 15 years of field experience. You analyze each case individually and give deep, personalized advice rather than boilerplate.

Guidelines:
- Ground every recommendation in the specifics of the listing and the tenant's situation
- Talking points must be phrased as things the tenant can actually say
- The success probability must reflect how realistic the price gap is
- If the gap exceeds 20% of the asking price, propose a staged strategy

Output Format: Your response MUST be ONLY this exact JSON structure with no additional text:
{
  "suggested_price": <integer monthly price to open negotiation at>,
  "negotiation_strategy": "Deep strategy analysis: negotiation psychology, timing, leverage, expectation management",
  "talking_points": [
    "Opening line: how to build trust and signal sincerity",
    "Core argument: concrete evidence from the listing, market, or tenant situation",
    "Price anchor: how to put the target number on the table",
    "Value pitch: why this tenant is worth a discount",
    "Closer: the line that converts agreement into a signed lease"
  ],
  "risk_assessment": "Concrete risks and counters, considering how the landlord may react",
  "success_probability": <decimal between 0.0 and 1.0>,
  "market_insights": "Market analysis for this area and property type"
}`

// analysisTemplate is the user prompt skeleton. Slots are filled with
// strings.ReplaceAll; every slot is always rendered, with an explicit
// "unknown"/"unspecified" placeholder when the field is absent, so the model
// sees a stable frame regardless of input completeness.
const analysisTemplate = `Analyze this rental negotiation case and produce advice in the required JSON format.

CASE OVERVIEW:
- Asking price: {{.CurrentPrice}} per month
- Tenant budget: {{.Budget}} per month
- Price gap: {{.PriceGap}} per month ({{.GapPercent}}% of asking)
- Landlord type: {{.LandlordType}}
- Location: {{.Location}}
- Property: {{.PropertyType}}, {{.Area}}
- Listing description: {{.Description}}
- Urgency: {{.Urgency}}

TENANT BRIEFING:
- City: {{.City}}
- Comparable listings: {{.Comparables}}
- Property pros: {{.Pros}}
- Property cons: {{.Cons}}
- Current tenancy status: {{.Tenancy}}
- Rental history: {{.History}}
- Personal leverage: {{.Leverage}}
- Preferred channel: {{.Channel}}
- Raw notes: {{.AdditionalInfo}}

ANALYSIS REQUIREMENTS:
1. Price: is a gap of {{.PriceGap}} realistic to close? Under what conditions could the tenant land on budget?
2. Landlord psychology: how should the tenant approach a "{{.LandlordType}}" landlord?
3. Property angle: what strengths or weaknesses in the listing support the tenant's position?
4. Timing: given "{{.Urgency}}" urgency, when is the best moment to negotiate?
5. Leverage: what bargaining chips does the briefing reveal?`

const (
	unknownSlot     = "unknown"
	unspecifiedSlot = "unspecified"
)

// briefingSeparator splits additional_info into labeled segments.
const briefingSeparator = "|"

// Briefing holds the structured sub-fields recovered from the free-text
// additional info. Absent labels leave the field empty.
type Briefing struct {
	City        string
	Comparables string
	Pros        string
	Cons        string
	Tenancy     string
	History     string
	Leverage    string
	Channel     string
}

// ParseBriefing permissively extracts labeled sub-fields from free text.
// Segments are split on "|"; each segment with a recognized "label:" prefix
// populates the matching field. Unrecognized labels and unlabeled segments
// are ignored rather than rejected.
func ParseBriefing(raw string) Briefing {
	var b Briefing
	for _, segment := range strings.Split(raw, briefingSeparator) {
		label, value, ok := strings.Cut(segment, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "city":
			b.City = value
		case "comparables", "comparable listings":
			b.Comparables = value
		case "pros":
			b.Pros = value
		case "cons":
			b.Cons = value
		case "tenancy", "tenancy status":
			b.Tenancy = value
		case "history", "rental history":
			b.History = value
		case "leverage":
			b.Leverage = value
		case "channel", "preferred channel":
			b.Channel = value
		}
	}
	return b
}

// PromptBuilder assembles the analysis prompt for a negotiation context.
// Building is deterministic: identical context yields byte-identical output.
type PromptBuilder struct{}

// NewPromptBuilder constructs a PromptBuilder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// SystemPrompt returns the fixed system instruction for the model.
func (b *PromptBuilder) SystemPrompt() string {
	return systemPrompt
}

// Build renders the user prompt from a negotiation context.
func (b *PromptBuilder) Build(nc models.NegotiationContext) string {
	property := nc.Property
	gap := property.CurrentPrice - nc.Budget

	// Percentage of the asking price; zero-price listings report 0 rather
	// than dividing by zero.
	gapPercent := 0.0
	if property.CurrentPrice > 0 {
		gapPercent = float64(gap) / float64(property.CurrentPrice) * 100
	}

	area := unknownSlot
	if property.Area > 0 {
		area = fmt.Sprintf("%d sqm", property.Area)
	}

	urgency := nc.Urgency
	if urgency == "" {
		urgency = models.UrgencyNormal
	}

	briefing := ParseBriefing(nc.AdditionalInfo)

	prompt := analysisTemplate
	prompt = strings.ReplaceAll(prompt, "{{.CurrentPrice}}", fmt.Sprintf("%d", property.CurrentPrice))
	prompt = strings.ReplaceAll(prompt, "{{.Budget}}", fmt.Sprintf("%d", nc.Budget))
	prompt = strings.ReplaceAll(prompt, "{{.PriceGap}}", fmt.Sprintf("%d", gap))
	prompt = strings.ReplaceAll(prompt, "{{.GapPercent}}", fmt.Sprintf("%.1f", gapPercent))
	prompt = strings.ReplaceAll(prompt, "{{.LandlordType}}", orSlot(property.LandlordType, unknownSlot))
	prompt = strings.ReplaceAll(prompt, "{{.Location}}", orSlot(property.Location, unknownSlot))
	prompt = strings.ReplaceAll(prompt, "{{.PropertyType}}", orSlot(property.PropertyType, unknownSlot))
	prompt = strings.ReplaceAll(prompt, "{{.Area}}", area)
	prompt = strings.ReplaceAll(prompt, "{{.Description}}", orSlot(property.Description, unspecifiedSlot))
	prompt = strings.ReplaceAll(prompt, "{{.Urgency}}", string(urgency))
	prompt = strings.ReplaceAll(prompt, "{{.City}}", orSlot(briefing.City, unspecifiedSlot))
	prompt = strings.ReplaceAll(prompt, "{{.Comparables}}", orSlot(briefing.Comparables, unspecifiedSlot))
	prompt = strings.ReplaceAll(prompt, "{{.Pros}}", orSlot(briefing.Pros, unspecifiedSlot))
	prompt = strings.ReplaceAll(prompt, "{{.Cons}}", orSlot(briefing.Cons, unspecifiedSlot))
	prompt = strings.ReplaceAll(prompt, "{{.Tenancy}}", orSlot(briefing.Tenancy, unspecifiedSlot))
	prompt = strings.ReplaceAll(prompt, "{{.History}}", orSlot(briefing.History, unspecifiedSlot))
	prompt = strings.ReplaceAll(prompt, "{{.Leverage}}", orSlot(briefing.Leverage, unspecifiedSlot))
	prompt = strings.ReplaceAll(prompt, "{{.Channel}}", orSlot(briefing.Channel, unspecifiedSlot))
	prompt = strings.ReplaceAll(prompt, "{{.AdditionalInfo}}", orSlot(strings.TrimSpace(nc.AdditionalInfo), "none"))

	return prompt
}

func orSlot(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
