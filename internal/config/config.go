package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort string

	DBPath string

	QdrantURL        string
	QdrantCollection string
	VectorSize       int

	EmbeddingBaseURL string
	EmbeddingModel   string
	EmbeddingAPIKey  string
	EmbedCacheSize   int
	EmbedCacheTTL    time.Duration

	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Optional secondary generative backend used by the fallback tier.
	FallbackLLMBaseURL string
	FallbackLLMModel   string

	AuthBaseURL string

	RateLimit  int
	RateWindow time.Duration

	SimilarityThreshold float32
	RetrievalK          int

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it is loaded
// automatically. Environment variables already set take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up a few levels looking for a .env at the project root.
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "9000"),
		DBPath:             getEnv("DB_PATH", "./data/docqa.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "documents"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL_NAME", "all-MiniLM-L6-v2"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", "dummy-key"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModel:           getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		FallbackLLMBaseURL: getEnv("FALLBACK_LLM_BASE_URL", ""),
		FallbackLLMModel:   getEnv("FALLBACK_LLM_MODEL", ""),
		AuthBaseURL:        getEnv("AUTH_BASE_URL", "http://localhost:8090"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	// VECTOR_SIZE must match the output dimension of the embedding model.
	// If it changes, the Qdrant collection must be recreated.
	vectorSizeStr := getEnv("VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must be greater than 0")
	}
	cfg.VectorSize = vectorSize

	cfg.EmbedCacheSize, err = getEnvInt("EMBED_CACHE_SIZE", 512)
	if err != nil {
		return nil, err
	}
	cfg.EmbedCacheTTL, err = getEnvDuration("EMBED_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.RateLimit, err = getEnvInt("RATE_LIMIT", 30)
	if err != nil {
		return nil, err
	}
	cfg.RateWindow, err = getEnvDuration("RATE_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.RetrievalK, err = getEnvInt("RETRIEVAL_K", 10)
	if err != nil {
		return nil, err
	}

	thresholdStr := getEnv("SIMILARITY_THRESHOLD", "0.2")
	threshold, err := strconv.ParseFloat(thresholdStr, 32)
	if err != nil {
		return nil, fmt.Errorf("SIMILARITY_THRESHOLD must be a valid float: %w", err)
	}
	cfg.SimilarityThreshold = float32(threshold)

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", cfg.LogFormat)
	}

	// Create the data directory if it doesn't exist.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL: %q", s)
	}
}
