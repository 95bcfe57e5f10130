package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Host string
	Port string

	// Database settings
	DatabasePath string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Cache settings
	CacheSize int
	CacheTTL  time.Duration

	// Cause-list source settings
	CauseListURLTemplate string
	ArchivePath          string
	FetchTimeout         time.Duration
	FetchRetries         int

	// LLM settings
	LLMAPIKey        string
	LLMBaseURL       string
	LLMModel         string
	LLMTimeout       time.Duration
	LLMMaxConcurrent int
	BlockTextLimit   int

	// Mediation portal settings
	PortalBaseURL        string
	PortalTimeout        time.Duration
	MediationMaxAttempts int
	MediationBatchSize   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not an error if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Host:                 getEnv("HOST", "0.0.0.0"),
		Port:                 getEnv("PORT", "8080"),
		DatabasePath:         getEnv("DATABASE_PATH", "./data/causelist.db"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
		CauseListURLTemplate: getEnv("CAUSE_LIST_URL_TEMPLATE", "https://hckerala.gov.in/causelist/daily/%s.pdf"),
		ArchivePath:          getEnv("ARCHIVE_PATH", "./data"),
		LLMAPIKey:            getEnv("LLM_API_KEY", ""),
		LLMBaseURL:           getEnv("LLM_BASE_URL", ""),
		LLMModel:             getEnv("LLM_MODEL", "gpt-4o-mini"),
		PortalBaseURL:        getEnv("PORTAL_BASE_URL", "https://hckerala.gov.in/casestatus"),
	}

	// Parse integer values
	var err error
	cfg.CacheSize, err = strconv.Atoi(getEnv("CACHE_SIZE", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_SIZE: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("CACHE_TTL", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = time.Duration(cacheTTL) * time.Minute

	fetchTimeout, err := strconv.Atoi(getEnv("FETCH_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}
	cfg.FetchTimeout = time.Duration(fetchTimeout) * time.Second

	cfg.FetchRetries, err = strconv.Atoi(getEnv("FETCH_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_RETRIES: %w", err)
	}

	llmTimeout, err := strconv.Atoi(getEnv("LLM_TIMEOUT", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
	}
	cfg.LLMTimeout = time.Duration(llmTimeout) * time.Second

	cfg.LLMMaxConcurrent, err = strconv.Atoi(getEnv("LLM_MAX_CONCURRENT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_CONCURRENT: %w", err)
	}

	cfg.BlockTextLimit, err = strconv.Atoi(getEnv("BLOCK_TEXT_LIMIT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid BLOCK_TEXT_LIMIT: %w", err)
	}

	portalTimeout, err := strconv.Atoi(getEnv("PORTAL_TIMEOUT", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORTAL_TIMEOUT: %w", err)
	}
	cfg.PortalTimeout = time.Duration(portalTimeout) * time.Second

	cfg.MediationMaxAttempts, err = strconv.Atoi(getEnv("MEDIATION_MAX_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid MEDIATION_MAX_ATTEMPTS: %w", err)
	}

	cfg.MediationBatchSize, err = strconv.Atoi(getEnv("MEDIATION_BATCH_SIZE", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid MEDIATION_BATCH_SIZE: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
