// Package advisor implements the negotiation advice pipeline: a deterministic
// prompt builder, a generative model invoker, a multi-strategy response
// normalizer and an arithmetic fallback. The pipeline always produces a
// structurally valid advice record; only a programming-level fault (such as
// an invalid context) surfaces as an error.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rentpilot/rentpilot/internal/models"
)

// Advisor runs the full advice pipeline for one negotiation request.
type Advisor struct {
	prompts    *PromptBuilder
	invoker    Invoker
	normalizer *Normalizer
	fallback   FallbackAdvisor
	model      ModelVariant
	logger     *slog.Logger
}

// New constructs an Advisor using the given invoker and model variant.
func New(invoker Invoker, model ModelVariant, logger *slog.Logger) *Advisor {
	return &Advisor{
		prompts:    NewPromptBuilder(),
		invoker:    invoker,
		normalizer: NewNormalizer(logger),
		model:      model,
		logger:     logger,
	}
}

// Advise produces a normalized advice record for the context. Backend
// unavailability and empty responses divert to the fallback advisor; the
// only error path is an invalid context.
func (a *Advisor) Advise(ctx context.Context, nc models.NegotiationContext) (models.AdviceRecord, error) {
	if err := nc.Validate(); err != nil {
		return models.AdviceRecord{}, fmt.Errorf("invalid negotiation context: %w", err)
	}

	prompt := a.prompts.Build(nc)

	raw, err := a.invoker.Invoke(ctx, prompt, a.model)
	if err != nil {
		if errors.Is(err, ErrBackendUnavailable) || errors.Is(err, ErrEmptyResponse) {
			a.logger.Warn("model call failed, using fallback advice", "error", err)
			return a.fallback.Advise(nc.Property, nc.Budget), nil
		}
		return models.AdviceRecord{}, fmt.Errorf("model invocation: %w", err)
	}

	record := a.normalizer.Normalize(raw)
	a.logger.Info("advice generated",
		"strategy", record.Strategy,
		"suggested_price", record.SuggestedPrice,
		"success_probability", record.SuccessProbability)
	return record, nil
}
