package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/formloom/forms-backend/internal/entity"
	pkgRetry "github.com/formloom/forms-backend/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Schema generation provider: gemini, ollama or mock
	LLMProvider entity.LLMProvider `env:"LLM_PROVIDER" envDefault:"gemini"`

	// External service configurations
	GeminiCfg  GeminiConnectorConfig  `envPrefix:"GEMINI_"`
	OllamaCfg  OllamaConnectorConfig  `envPrefix:"OLLAMA_"`
	WebhookCfg WebhookConnectorConfig `envPrefix:"WEBHOOK_"`

	// Generation cache (per prompt hash)
	GenerationCacheTTL     time.Duration `env:"GENERATION_CACHE_TTL" envDefault:"15m"`
	GenerationCacheCleanup time.Duration `env:"GENERATION_CACHE_CLEANUP" envDefault:"30m"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// System prompt override (loaded from file, not from env)
	PromptOverride string

	// Environment (set from flag, not from env var)
	Environment string
}

// TelegramConfig holds Telegram bot configuration. BotToken stays empty
// when only the API binary runs; the bot builder rejects an empty token.
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"30"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

// GeminiConnectorConfig configures the cloud schema generator.
type GeminiConnectorConfig struct {
	HTTPClientConfig
	Model  string `env:"MODEL" envDefault:"gemini-2.5-flash-preview-05-20"`
	APIKey string `env:"API_KEY"`
}

// OllamaConnectorConfig configures the local schema generator.
type OllamaConnectorConfig struct {
	HTTPClientConfig
	Model       string  `env:"MODEL" envDefault:"llama3"`
	Temperature float64 `env:"TEMPERATURE" envDefault:"0"`
}

// WebhookConnectorConfig configures submission notifications. The target
// URL is per form, so there is no base URL here.
type WebhookConnectorConfig struct {
	RequestTimeout time.Duration        `env:"TIMEOUT" envDefault:"10s"`
	ConnTimeout    time.Duration        `env:"CONN_TIMEOUT" envDefault:"5s"`
	Token          string               `env:"TOKEN"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Load a system prompt override from file when one is shipped
	if err := loadPromptOverride(cfg); err != nil {
		return nil, fmt.Errorf("load prompt override: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if err := cfg.LLMProvider.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	if cfg.LLMProvider == entity.LLMProviderGemini && !cfg.EnableMocks && cfg.GeminiCfg.APIKey == "" {
		errors = append(errors, "GEMINI_API_KEY must be set when LLM_PROVIDER is gemini")
	}

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if cfg.GenerationCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("GENERATION_CACHE_TTL must be positive, got %v", cfg.GenerationCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// loadPromptOverride replaces the built-in generation instructions when a
// prompt file is shipped next to the binary. Missing file keeps defaults.
func loadPromptOverride(cfg *Config) error {
	promptPath := filepath.Join("internal", "config", "system_prompt.txt")

	if _, err := os.Stat(promptPath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(promptPath)
	if err != nil {
		return fmt.Errorf("read prompt file: %w", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("prompt file is empty: %s", promptPath)
	}

	cfg.PromptOverride = string(data)

	fmt.Printf("Loaded system prompt override from %s\n", promptPath)
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
