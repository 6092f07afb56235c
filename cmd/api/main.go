package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/healthcareplus/clinic-assistant/internal/api/router"
	"github.com/healthcareplus/clinic-assistant/internal/clinic"
	appconfig "github.com/healthcareplus/clinic-assistant/internal/config"
	"github.com/healthcareplus/clinic-assistant/internal/conversation"
	"github.com/healthcareplus/clinic-assistant/internal/http/handlers"
	"github.com/healthcareplus/clinic-assistant/internal/observability/metrics"
	"github.com/healthcareplus/clinic-assistant/internal/session"
	"github.com/healthcareplus/clinic-assistant/internal/sheets"
	"github.com/healthcareplus/clinic-assistant/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	details, err := clinic.Load(cfg.ClinicDetailsFile)
	if err != nil {
		logger.Error("failed to load clinic details", "file", cfg.ClinicDetailsFile, "error", err.Error())
		os.Exit(1)
	}

	llm, err := buildLLMClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize LLM client", "error", err.Error())
		os.Exit(1)
	}

	sessions, err := buildSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to session store", "error", err.Error())
		os.Exit(1)
	}

	appointments := buildAppointmentStore(ctx, cfg, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	chatMetrics := metrics.NewChatMetrics(registry)

	engine := conversation.NewEngine(conversation.EngineConfig{
		LLM:          llm,
		Sessions:     sessions,
		Appointments: appointments,
		Clinic:       details,
		Logger:       logger,
		Metrics:      chatMetrics,
		Model:        cfg.LLMModel,
		MaxTokens:    int32(cfg.LLMMaxTokens),
		Temperature:  float32(cfg.LLMTemperature),
		LLMTimeout:   cfg.LLMTimeout,
	})

	routerCfg := &router.Config{
		Logger:             logger,
		ChatHandler:        handlers.NewChatHandler(engine, logger),
		AppointmentHandler: handlers.NewAppointmentHandler(appointments, logger, time.Now),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildLLMClient wires the primary provider and, when the other
// provider's API key is also present, a failover chain. With no API
// keys at all the engine runs on the rule-based responder alone.
func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (conversation.LLMClient, error) {
	var groq, gemini conversation.LLMClient

	if cfg.GroqAPIKey != "" {
		client, err := conversation.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL)
		if err != nil {
			return nil, err
		}
		groq = client
	}
	if cfg.GeminiAPIKey != "" {
		client, err := conversation.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		gemini = client
	}

	primary, secondary := groq, gemini
	if cfg.LLMProvider == "gemini" {
		primary, secondary = gemini, groq
	}

	switch {
	case primary != nil && secondary != nil:
		return conversation.NewChainClient(primary, secondary, logger), nil
	case primary != nil:
		return primary, nil
	case secondary != nil:
		return secondary, nil
	default:
		logger.Warn("no LLM API keys configured, conversations will use the rule-based responder")
		return nil, nil
	}
}

func buildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (conversation.SessionStore, error) {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory session store")
		return session.NewMemoryStore(), nil
	}
	store, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	logger.Info("using redis session store", "addr", cfg.RedisAddr)
	return store, nil
}

// buildAppointmentStore prefers Google Sheets; without credentials the
// server still runs, keeping appointments in memory.
func buildAppointmentStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) sheets.Store {
	if cfg.SheetsCredentials == "" || cfg.SpreadsheetID == "" {
		logger.Warn("Google Sheets not configured, appointments will not survive restarts")
		return sheets.NewMemoryStore()
	}
	store, err := sheets.NewGoogleSheetsStore(ctx, cfg.SheetsCredentials, cfg.SpreadsheetID, cfg.SheetName)
	if err != nil {
		logger.Error("failed to connect to Google Sheets, falling back to in-memory appointments", "error", err.Error())
		return sheets.NewMemoryStore()
	}
	logger.Info("using Google Sheets appointment store", "spreadsheet_id", cfg.SpreadsheetID, "sheet", cfg.SheetName)
	return store
}
