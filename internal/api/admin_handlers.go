package api

import (
	"encoding/json"
	"net/http"

	"github.com/rentpilot/rentpilot/internal/advisor"
	"github.com/rentpilot/rentpilot/internal/database"
	"github.com/rentpilot/rentpilot/internal/models"
	"log/slog"
)

// AdminHandler exposes the model configuration endpoints behind auth.
type AdminHandler struct {
	modelConfigRepo  *database.ModelConfigRepository
	inferenceLogRepo *database.InferenceLogRepository
	logger           *slog.Logger
}

func NewAdminHandler(modelConfigRepo *database.ModelConfigRepository, inferenceLogRepo *database.InferenceLogRepository, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		modelConfigRepo:  modelConfigRepo,
		inferenceLogRepo: inferenceLogRepo,
		logger:           logger,
	}
}

// ModelConfigHandler handles GET and PUT /api/admin/model-config
func (h *AdminHandler) ModelConfigHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getModelConfig(w, r)
	case http.MethodPut:
		h.updateModelConfig(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AdminHandler) getModelConfig(w http.ResponseWriter, r *http.Request) {
	config, err := h.modelConfigRepo.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load model config", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if config == nil {
		http.Error(w, "Model config not initialized", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, config)
}

func (h *AdminHandler) updateModelConfig(w http.ResponseWriter, r *http.Request) {
	var update models.ModelConfigUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if update.Model != nil {
		if _, err := advisor.ParseModelVariant(*update.Model); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if update.Temperature != nil && (*update.Temperature < 0 || *update.Temperature > 2) {
		http.Error(w, "temperature must be between 0 and 2", http.StatusBadRequest)
		return
	}
	if update.MaxTokens != nil && *update.MaxTokens <= 0 {
		http.Error(w, "max_tokens must be a positive integer", http.StatusBadRequest)
		return
	}

	config, err := h.modelConfigRepo.Update(r.Context(), update)
	if err != nil {
		h.logger.Error("failed to update model config", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("model config updated", "model", config.Model, "max_tokens", config.MaxTokens)
	writeJSON(w, http.StatusOK, config)
}

// InferenceStatsHandler handles GET /api/admin/inference-stats
func (h *AdminHandler) InferenceStatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	counts, err := h.inferenceLogRepo.CountByStatus(r.Context())
	if err != nil {
		h.logger.Error("failed to count inference logs", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"by_status": counts})
}
