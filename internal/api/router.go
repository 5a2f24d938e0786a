package api

import (
	"net/http"
	"time"

	"github.com/rentpilot/rentpilot/internal/advisor"
	"github.com/rentpilot/rentpilot/internal/auth"
	"github.com/rentpilot/rentpilot/internal/database"
	"github.com/rentpilot/rentpilot/internal/models"
	"log/slog"
)

// SetupRoutes configures all API routes
func SetupRoutes(mux *http.ServeMux, adv *advisor.Advisor, sessionRepo models.SessionRepository, feedbackRepo models.FeedbackRepository, modelConfigRepo *database.ModelConfigRepository, inferenceLogRepo *database.InferenceLogRepository, authConfig auth.Config, requestTimeout time.Duration, logger *slog.Logger) {
	handler := NewHandler(adv, sessionRepo, feedbackRepo, requestTimeout, logger)
	authHandler := NewAuthHandler(authConfig, logger)
	adminHandler := NewAdminHandler(modelConfigRepo, inferenceLogRepo, logger)

	authMiddleware := auth.AuthMiddleware(authConfig)

	// Authentication routes (public)
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(authHandler.ValidateToken)).ServeHTTP(w, r)
	})

	// Advice and session routes (public)
	mux.HandleFunc("/api/negotiate", handler.NegotiateHandler)
	mux.HandleFunc("/api/sessions", handler.ListSessionsHandler)
	mux.HandleFunc("/api/sessions/", handler.SessionHandler)
	mux.HandleFunc("/api/market-analysis/", handler.MarketAnalysisHandler)
	mux.HandleFunc("/api/stats", handler.StatsHandler)

	// Admin routes (require auth)
	mux.HandleFunc("/api/admin/model-config", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(adminHandler.ModelConfigHandler)).ServeHTTP(w, r)
	})
	mux.HandleFunc("/api/admin/inference-stats", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(adminHandler.InferenceStatsHandler)).ServeHTTP(w, r)
	})
}
