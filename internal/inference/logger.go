package inference

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rentpilot/rentpilot/internal/database"
	"github.com/rentpilot/rentpilot/internal/models"
)

// Logger records generative model API calls to the database for audit.
type Logger struct {
	repo   *database.InferenceLogRepository
	logger *slog.Logger
}

// NewLogger creates a new inference logger.
func NewLogger(repo *database.InferenceLogRepository, logger *slog.Logger) *Logger {
	return &Logger{
		repo:   repo,
		logger: logger,
	}
}

// Usage carries token accounting for a single call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// LogCallParams describes a single inference call.
type LogCallParams struct {
	Provider  string
	Model     string
	Operation string
	Usage     Usage
	Latency   time.Duration
	Err       error
	Metadata  map[string]interface{}
}

// LogCall records an inference call. The write happens asynchronously so it
// never blocks the advice pipeline.
func (l *Logger) LogCall(ctx context.Context, params LogCallParams) {
	var metadataJSON string
	if params.Metadata != nil {
		if jsonBytes, err := json.Marshal(params.Metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	latencyMs := int(params.Latency.Milliseconds())
	log := models.InferenceLog{
		Provider:     params.Provider,
		Model:        params.Model,
		Operation:    params.Operation,
		TokensUsed:   params.Usage.TotalTokens,
		InputTokens:  &params.Usage.PromptTokens,
		OutputTokens: &params.Usage.CompletionTokens,
		LatencyMs:    &latencyMs,
		Status:       "success",
		Metadata:     metadataJSON,
	}
	if params.Err != nil {
		log.Status = "error"
		msg := params.Err.Error()
		log.ErrorMessage = &msg
	}

	go func() {
		bgCtx := context.Background()
		if err := l.repo.Create(bgCtx, log); err != nil {
			l.logger.Error("failed to log inference call", "error", err)
		}
	}()
}
