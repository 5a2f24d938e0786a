package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rentpilot/rentpilot/internal/inference"
)

// ModelVariant names a supported chat model. Unknown variants are rejected at
// the boundary rather than deferred to a backend error.
type ModelVariant string

const (
	ModelGPT4o      ModelVariant = openai.GPT4o
	ModelGPT4oMini  ModelVariant = openai.GPT4oMini
	ModelGPT4Turbo  ModelVariant = openai.GPT4Turbo
	ModelGPT35Turbo ModelVariant = openai.GPT3Dot5Turbo
)

// DefaultModel is used when no variant is configured.
const DefaultModel = ModelGPT4o

// ParseModelVariant validates a raw model name. An empty value selects the
// default variant.
func ParseModelVariant(raw string) (ModelVariant, error) {
	switch ModelVariant(raw) {
	case "":
		return DefaultModel, nil
	case ModelGPT4o, ModelGPT4oMini, ModelGPT4Turbo, ModelGPT35Turbo:
		return ModelVariant(raw), nil
	default:
		return "", fmt.Errorf("unsupported model %q: must be one of %s, %s, %s, %s",
			raw, ModelGPT4o, ModelGPT4oMini, ModelGPT4Turbo, ModelGPT35Turbo)
	}
}

// Error taxonomy for the model call. Both kinds are recoverable by the
// pipeline: they divert the request to the fallback advisor.
var (
	ErrBackendUnavailable = errors.New("model backend unavailable")
	ErrEmptyResponse      = errors.New("model returned no usable text")
)

// Invoker sends a prompt to a generative text backend and returns the raw
// response text. A single attempt per call, no retries: a structurally
// malformed response is unlikely to improve on a second try, and timeout
// policy belongs to the caller's context.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, model ModelVariant) (string, error)
}

// InvokerConfig holds the OpenAI client settings.
type InvokerConfig struct {
	APIKey      string
	Temperature float32
	MaxTokens   int
}

// OpenAIInvoker calls the OpenAI chat completion API.
type OpenAIInvoker struct {
	client          *openai.Client
	config          InvokerConfig
	system          string
	logger          *slog.Logger
	inferenceLogger *inference.Logger
}

// NewOpenAIInvoker constructs an invoker. The inference logger may be nil,
// in which case no audit rows are written.
func NewOpenAIInvoker(config InvokerConfig, logger *slog.Logger, inferenceLogger *inference.Logger) *OpenAIInvoker {
	return &OpenAIInvoker{
		client:          openai.NewClient(config.APIKey),
		config:          config,
		system:          systemPrompt,
		logger:          logger,
		inferenceLogger: inferenceLogger,
	}
}

// Invoke sends the prompt and returns the raw completion text.
func (i *OpenAIInvoker) Invoke(ctx context.Context, prompt string, model ModelVariant) (string, error) {
	if i.config.APIKey == "" {
		return "", fmt.Errorf("%w: no API key configured", ErrBackendUnavailable)
	}

	request := openai.ChatCompletionRequest{
		Model:               string(model),
		Temperature:         i.config.Temperature,
		MaxCompletionTokens: i.config.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: i.system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	start := time.Now()
	resp, err := i.client.CreateChatCompletion(ctx, request)
	latency := time.Since(start)

	if i.inferenceLogger != nil {
		usage := inference.Usage{}
		if err == nil {
			usage.PromptTokens = resp.Usage.PromptTokens
			usage.CompletionTokens = resp.Usage.CompletionTokens
			usage.TotalTokens = resp.Usage.TotalTokens
		}
		i.inferenceLogger.LogCall(ctx, inference.LogCallParams{
			Provider:  "openai",
			Model:     string(model),
			Operation: "negotiation_advice",
			Usage:     usage,
			Latency:   latency,
			Err:       err,
			Metadata: map[string]interface{}{
				"prompt_chars": len(prompt),
			},
		})
	}

	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		i.logger.Error("model returned no choices", "model", model, "response_id", resp.ID)
		return "", fmt.Errorf("%w: no completion choices from %s", ErrEmptyResponse, model)
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		i.logger.Error("model returned empty content",
			"model", model,
			"finish_reason", resp.Choices[0].FinishReason,
			"response_id", resp.ID)
		return "", fmt.Errorf("%w: empty content from %s (finish_reason: %s)",
			ErrEmptyResponse, model, resp.Choices[0].FinishReason)
	}

	i.logger.Debug("model call complete",
		"model", model,
		"latency_ms", latency.Milliseconds(),
		"content_length", len(content))

	return content, nil
}
