package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindmate-chat/backend/internal/api"
	"mindmate-chat/backend/internal/models"
	"mindmate-chat/backend/internal/repository"
	"mindmate-chat/backend/internal/service"
	"mindmate-chat/backend/pkg/ai"
	"mindmate-chat/backend/pkg/cache"
	"mindmate-chat/backend/pkg/config"
	"mindmate-chat/backend/pkg/health"
	"mindmate-chat/backend/pkg/logger"
	"mindmate-chat/backend/pkg/router"
	"mindmate-chat/backend/shared/observability"

	"gorm.io/gorm"
)

func main() {
	cfg := config.New()

	log := logger.New(logger.Config{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.Format == "json",
	})
	logger.SetGlobal(log)

	shutdownTracing := observability.SetupTracing("mindmate-chat")
	defer shutdownTracing()

	_, metricsHandler := observability.SetupPrometheusMetrics()

	sessions, messages, db := setupRepositories(log)

	modelClient := ai.NewClient(cfg, log)
	store := cache.New()

	completion := service.NewCompletionService(modelClient, cfg, log)
	suggestions := service.NewSuggestionService(modelClient, store, cfg, log)
	conversation := service.NewConversationService(sessions, messages, completion, suggestions, cfg, log)

	checker := health.NewChecker(log, 30*time.Second)
	if db != nil {
		checker.RegisterDatabaseCheck(func() error {
			return config.TestConnection(db)
		})
	}
	checker.RegisterModelCheck(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return modelClient.Ping(ctx)
	})
	checker.Start()

	r := router.New(
		cfg,
		log,
		api.NewSessionController(conversation),
		api.NewChatController(completion, suggestions),
		checker,
		metricsHandler,
	)

	schemaPath := os.Getenv("OPENAPI_SCHEMA")
	if schemaPath == "" {
		schemaPath = "api/openapi.yaml"
	}
	r.AddOpenAPIValidation(schemaPath)

	r.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r.Engine,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.Info("server listening", "port", cfg.Server.Port, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
}

// setupRepositories connects to Postgres, falling back to in-memory stores
// when the database is unreachable. The returned *gorm.DB is nil in the
// in-memory case so callers can skip database health checks.
func setupRepositories(log *logger.Logger) (repository.SessionRepository, repository.MessageRepository, *gorm.DB) {
	db, err := config.NewDB()
	if err != nil {
		log.Warn("database unavailable, using in-memory stores", "error", err)
		messages := repository.NewMemoryMessageRepository()
		return repository.NewMemorySessionRepository(messages), messages, nil
	}

	if err := db.AutoMigrate(&models.ChatSession{}, &models.ChatMessage{}); err != nil {
		log.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	return repository.NewGormSessionRepository(db), repository.NewGormMessageRepository(db), db
}
