package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/formloom/forms-backend/internal/api"
	formapi "github.com/formloom/forms-backend/internal/api/form"
	submissionapi "github.com/formloom/forms-backend/internal/api/submission"
	"github.com/formloom/forms-backend/internal/config"
	"github.com/formloom/forms-backend/internal/entity"
	"github.com/formloom/forms-backend/internal/integration/llm"
	"github.com/formloom/forms-backend/internal/integration/webhook"
	"github.com/formloom/forms-backend/internal/pkg/formatter"
	"github.com/formloom/forms-backend/internal/repository"
	"github.com/formloom/forms-backend/internal/telegram"
	"github.com/formloom/forms-backend/internal/usecase/form"
	"github.com/formloom/forms-backend/internal/usecase/submission"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	formUC, submissionUC, err := buildUsecases(cfg, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Setup API handlers
	formHandler := formapi.NewHandler(formUC)
	submissionHandler := submissionapi.NewHandler(submissionUC)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(formHandler, submissionHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	formUC, submissionUC, err := buildUsecases(cfg, db, logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	sessionRepo := repository.NewTelegramSessionRepository(db)

	// Initialize Telegram bot
	bot, err := telegram.NewBot(&cfg.TelegramCfg, sessionRepo, formUC, submissionUC, logger)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, logger, nil
}

// buildUsecases wires the repositories, connectors and use cases shared
// by the API server and the Telegram bot.
func buildUsecases(cfg *config.Config, db *pgxpool.Pool, logger *zap.Logger) (*form.FormUsecase, *submission.SubmissionUsecase, error) {
	// Initialize repositories
	formRepo := repository.NewFormPostgres(db)
	submissionRepo := repository.NewSubmissionPostgres(db)
	logger.Info("Repositories initialized")

	// Initialize connectors
	webhookConnector := webhook.NewConnector(cfg.WebhookCfg, logger)

	generator, err := buildGenerator(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	// Initialize use cases
	formUC := form.NewUsecase(
		formRepo,
		generator,
		webhookConnector,
		cfg.GenerationCacheTTL,
		cfg.GenerationCacheCleanup,
		logger,
	)

	submissionUC := submission.NewUsecase(
		formRepo,
		submissionRepo,
		webhookConnector,
		formatter.NewFactory(),
		logger,
	)
	logger.Info("Use cases initialized")

	return formUC, submissionUC, nil
}

// buildGenerator picks the schema generation backend.
func buildGenerator(cfg *config.Config, logger *zap.Logger) (form.SchemaGenerator, error) {
	if cfg.EnableMocks {
		logger.Info("Using mock schema generator")
		return llm.NewMockConnector(logger), nil
	}

	switch cfg.LLMProvider {
	case entity.LLMProviderGemini:
		logger.Info("Using Gemini schema generator", zap.String("model", cfg.GeminiCfg.Model))
		return llm.NewGeminiConnector(cfg.GeminiCfg, cfg.PromptOverride, logger), nil
	case entity.LLMProviderOllama:
		logger.Info("Using Ollama schema generator", zap.String("model", cfg.OllamaCfg.Model))
		return llm.NewOllamaConnector(cfg.OllamaCfg, cfg.PromptOverride, logger), nil
	case entity.LLMProviderMock:
		logger.Info("Using mock schema generator")
		return llm.NewMockConnector(logger), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
}
