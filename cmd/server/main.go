package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rentpilot/rentpilot/internal/advisor"
	"github.com/rentpilot/rentpilot/internal/api"
	"github.com/rentpilot/rentpilot/internal/auth"
	"github.com/rentpilot/rentpilot/internal/config"
	"github.com/rentpilot/rentpilot/internal/database"
	"github.com/rentpilot/rentpilot/internal/inference"
	"github.com/rentpilot/rentpilot/internal/logging"
	"github.com/rentpilot/rentpilot/internal/metrics"
	"github.com/rentpilot/rentpilot/internal/server"
	_ "github.com/lib/pq"
	"log/slog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting rentpilot")

	if cfg.Database.URL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	logger.Info("connecting to database")
	db, err := database.Open(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connected")

	// Run pending migrations (non-fatal to allow app to start even if migrations fail)
	if err := database.RunMigrations(db, "./migrations", logger); err != nil {
		logger.Warn("failed to run migrations, continuing anyway", "error", err)
	}

	// Create repositories
	sessionRepo := database.NewSessionRepository(db)
	feedbackRepo := database.NewFeedbackRepository(db)
	modelConfigRepo := database.NewModelConfigRepository(db)
	inferenceLogRepo := database.NewInferenceLogRepository(db)

	inferenceLogger := inference.NewLogger(inferenceLogRepo, logger)

	// The stored model config, when present and enabled, overrides the
	// environment defaults.
	modelName := cfg.OpenAI.Model
	temperature := cfg.OpenAI.Temperature
	maxTokens := cfg.OpenAI.MaxTokens
	if stored, err := modelConfigRepo.Get(context.Background()); err != nil {
		logger.Warn("failed to load stored model config, using environment", "error", err)
	} else if stored != nil && stored.Enabled {
		logger.Info("using stored model config", "model", stored.Model)
		modelName = stored.Model
		temperature = stored.Temperature
		maxTokens = stored.MaxTokens
	}

	model, err := advisor.ParseModelVariant(modelName)
	if err != nil {
		logger.Error("invalid model configuration", "error", err)
		os.Exit(1)
	}

	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, all requests will use fallback advice")
	}

	invoker := advisor.NewOpenAIInvoker(advisor.InvokerConfig{
		APIKey:      cfg.OpenAI.APIKey,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, logger, inferenceLogger)

	adv := advisor.New(invoker, model, logger)

	// Setup HTTP routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Service info endpoint
	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"rentpilot","status":"ready","version":"0.1.0"}`))
	})

	collector, err := metrics.NewHTTPCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}
	mux.Handle("/metrics", collector.Handler())

	// Load auth configuration
	authConfig := auth.LoadConfigFromEnv()
	logger.Info("auth configured", "jwt_secret_set", authConfig.JWTSecret != "change-this-secret")

	logger.Info("setting up REST API")
	api.SetupRoutes(mux, adv, sessionRepo, feedbackRepo, modelConfigRepo, inferenceLogRepo, authConfig, cfg.OpenAI.Timeout, logger)

	handler := server.CORSMiddleware(cfg.Server.AllowedOrigin)(collector.InstrumentHandler(mux))

	// Start server
	srv := server.New(cfg.Server, logger, handler)

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("rentpilot started successfully")
	logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
