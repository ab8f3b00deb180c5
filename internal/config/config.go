package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Notion connection
	NotionAPIKey  string
	NotionBaseURL string

	// EXAONE text generation
	ExaoneAPIKey  string
	ExaoneBaseURL string
	ExaoneModel   string

	// Optional bearer auth for the record/ingestion routes.
	// Empty disables auth (the service is then open, for local use).
	APIKey string

	// SQLite data directory
	DataDir string

	// Pipeline limits
	MaxContentChars int
	MaxBlockPages   int
	RequestTimeout  time.Duration
}

func Load() Config {
	// A local .env is a convenience, not a requirement.
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "3001"),

		NotionAPIKey:  os.Getenv("NOTION_API_KEY"),
		NotionBaseURL: envOr("NOTION_BASE_URL", "https://api.notion.com"),

		ExaoneAPIKey:  os.Getenv("EXAONE_API_KEY"),
		ExaoneBaseURL: envOr("EXAONE_API_URL", "https://api.lgresearch.ai"),
		ExaoneModel:   envOr("EXAONE_MODEL", "32b"),

		APIKey: os.Getenv("CONTEXTD_API_KEY"),

		DataDir: envOr("DATA_DIR", "data"),

		MaxContentChars: envInt("MAX_CONTENT_CHARS", 1500),
		MaxBlockPages:   envInt("MAX_BLOCK_PAGES", 1000),
		RequestTimeout:  envDuration("REQUEST_TIMEOUT", 30*time.Second),
	}

	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = 1500
	}
	if cfg.MaxBlockPages <= 0 {
		cfg.MaxBlockPages = 1000
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	if c.NotionAPIKey == "" {
		return fmt.Errorf("NOTION_API_KEY is required")
	}
	// EXAONE_API_KEY is checked per-request by the extractor so the
	// document endpoints still work without generation configured.
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
