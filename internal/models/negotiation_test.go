package models

import "testing"

func TestParseUrgency(t *testing.T) {
	tests := []struct {
		raw     string
		want    Urgency
		wantErr bool
	}{
		{"", UrgencyNormal, false},
		{"urgent", UrgencyUrgent, false},
		{"normal", UrgencyNormal, false},
		{"flexible", UrgencyFlexible, false},
		{"asap", "", true},
		{"URGENT", "", true},
	}

	for _, tt := range tests {
		got, err := ParseUrgency(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseUrgency(%q): expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseUrgency(%q) returned error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseUrgency(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNegotiationContextValidate(t *testing.T) {
	valid := NegotiationContext{
		Property: PropertyDescription{CurrentPrice: 5000, PropertyType: "apartment"},
		Budget:   4500,
		Urgency:  UrgencyNormal,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid context rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*NegotiationContext)
	}{
		{"negative price", func(c *NegotiationContext) { c.Property.CurrentPrice = -1 }},
		{"negative budget", func(c *NegotiationContext) { c.Budget = -100 }},
		{"unknown urgency", func(c *NegotiationContext) { c.Urgency = "tomorrow" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNegotiationContextValidateZeroValues(t *testing.T) {
	// Zero price, zero budget and empty urgency are all acceptable.
	c := NegotiationContext{}
	if err := c.Validate(); err != nil {
		t.Fatalf("zero-value context rejected: %v", err)
	}
}
