package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rentpilot/rentpilot/internal/advisor"
	"github.com/rentpilot/rentpilot/internal/models"
	"log/slog"
)

type Handler struct {
	advisor        *advisor.Advisor
	sessionRepo    models.SessionRepository
	feedbackRepo   models.FeedbackRepository
	requestTimeout time.Duration
	logger         *slog.Logger
	startTime      time.Time
}

func NewHandler(adv *advisor.Advisor, sessionRepo models.SessionRepository, feedbackRepo models.FeedbackRepository, requestTimeout time.Duration, logger *slog.Logger) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}
	return &Handler{
		advisor:        adv,
		sessionRepo:    sessionRepo,
		feedbackRepo:   feedbackRepo,
		requestTimeout: requestTimeout,
		logger:         logger,
		startTime:      time.Now(),
	}
}

// NegotiateResponse is the payload returned by POST /api/negotiate.
type NegotiateResponse struct {
	SessionID string              `json:"session_id"`
	Advice    models.AdviceRecord `json:"advice"`
	CreatedAt time.Time           `json:"created_at"`
}

// NegotiateHandler handles POST /api/negotiate
func (h *Handler) NegotiateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var nc models.NegotiationContext
	if err := json.NewDecoder(r.Body).Decode(&nc); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := nc.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	advice, err := h.advisor.Advise(ctx, nc)
	if err != nil {
		h.logger.Error("failed to generate advice", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	session := &models.NegotiationSession{
		Context: nc,
		Advice:  advice,
	}
	if err := h.sessionRepo.Create(r.Context(), session); err != nil {
		h.logger.Error("failed to persist session", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, NegotiateResponse{
		SessionID: session.ID,
		Advice:    advice,
		CreatedAt: session.CreatedAt,
	})
}

// SessionsResponse wraps a page of sessions.
type SessionsResponse struct {
	Sessions []models.NegotiationSession `json:"sessions"`
	Count    int                         `json:"count"`
}

// ListSessionsHandler handles GET /api/sessions
func (h *Handler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 500 {
			http.Error(w, "limit must be an integer between 1 and 500", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	sessions, err := h.sessionRepo.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list sessions", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, SessionsResponse{Sessions: sessions, Count: len(sessions)})
}

// SessionHandler dispatches /api/sessions/{id} and /api/sessions/{id}/feedback.
func (h *Handler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if rest == "" {
		http.Error(w, "Session ID required", http.StatusBadRequest)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/feedback"); ok {
		h.handleFeedback(w, r, id)
		return
	}

	h.getSession(w, r, rest)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := h.sessionRepo.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get session", "id", id, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// FeedbackRequest is the payload for POST /api/sessions/{id}/feedback.
type FeedbackRequest struct {
	Outcome     models.FeedbackOutcome `json:"outcome"`
	ActualPrice *int                   `json:"actual_price,omitempty"`
	Comment     string                 `json:"comment,omitempty"`
	Rating      *int                   `json:"rating,omitempty"`
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request, sessionID string) {
	switch r.Method {
	case http.MethodPost:
		h.createFeedback(w, r, sessionID)
	case http.MethodGet:
		h.listFeedback(w, r, sessionID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) createFeedback(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	feedback := &models.Feedback{
		SessionID:   sessionID,
		Outcome:     req.Outcome,
		ActualPrice: req.ActualPrice,
		Comment:     req.Comment,
		Rating:      req.Rating,
	}
	if err := feedback.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.sessionRepo.Get(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to get session for feedback", "id", sessionID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if session == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	if err := h.feedbackRepo.Create(r.Context(), feedback); err != nil {
		h.logger.Error("failed to persist feedback", "session_id", sessionID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, feedback)
}

func (h *Handler) listFeedback(w http.ResponseWriter, r *http.Request, sessionID string) {
	feedback, err := h.feedbackRepo.ListBySession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to list feedback", "session_id", sessionID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"feedback": feedback,
		"count":    len(feedback),
	})
}

// MarketAnalysisHandler handles GET /api/market-analysis/{location}
func (h *Handler) MarketAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	location := strings.TrimPrefix(r.URL.Path, "/api/market-analysis/")
	if location == "" {
		http.Error(w, "Location required", http.StatusBadRequest)
		return
	}

	analysis, err := h.sessionRepo.MarketAnalysis(r.Context(), location)
	if err != nil {
		h.logger.Error("failed to compute market analysis", "location", location, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// StatsResponse summarizes service activity.
type StatsResponse struct {
	TotalSessions int     `json:"total_sessions"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// StatsHandler handles GET /api/stats
func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	total, err := h.sessionRepo.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count sessions", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		TotalSessions: total,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
