package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage modes.
const (
	StorageConsole  = "console"
	StoragePostgres = "postgres"
	StorageSnapshot = "snapshot"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel           string
	HTTPPort           string
	Environment        string
	CORSAllowedOrigins []string

	// Matching
	SimilarityThreshold float64
	MaxTimeDelta        time.Duration
	BestMatchOnly       bool

	// Arbitrage
	DefaultStake     float64
	MinProfitPercent float64

	// Scheduling
	DataRefreshThreshold time.Duration
	ProcessInterval      time.Duration
	FetchInterval        time.Duration
	ScanConcurrency      int
	PairDelay            time.Duration
	SchedulesEnabled     bool

	// Scraping
	FetchTimeout        time.Duration
	FetchMaxAttempts    int
	FetchInitialBackoff time.Duration
	FetchMaxBackoff     time.Duration
	FetchRateLimit      float64
	FetchBurst          int
	FetchPageDelay      time.Duration
	SourcesFile         string

	// Source circuit breaker; a zero window disables it
	BreakerWindow       int
	BreakerFailureRatio float64
	BreakerCooldown     time.Duration

	// Storage
	StorageMode  string // console, postgres or snapshot
	SnapshotDir  string
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string

	// Notifications
	TelegramBotToken string
	TelegramChatID   int64
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	AlertDedupTTL    time.Duration
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort:           getEnvOrDefault("HTTP_PORT", "3000"),
		Environment:        getEnvOrDefault("ENVIRONMENT", "development"),
		CORSAllowedOrigins: getListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),

		SimilarityThreshold: getFloat64OrDefault("SIMILARITY_THRESHOLD", 0.6),
		MaxTimeDelta:        getDurationOrDefault("MAX_TIME_DELTA", 5*time.Minute),
		BestMatchOnly:       getBoolOrDefault("BEST_MATCH_ONLY", false),

		DefaultStake:     getFloat64OrDefault("DEFAULT_STAKE", 1000),
		MinProfitPercent: getFloat64OrDefault("MIN_PROFIT_PERCENT", 0),

		DataRefreshThreshold: getDurationOrDefault("DATA_REFRESH_THRESHOLD", 15*time.Minute),
		ProcessInterval:      getDurationOrDefault("PROCESS_INTERVAL", time.Minute),
		FetchInterval:        getDurationOrDefault("FETCH_INTERVAL", 20*time.Minute),
		ScanConcurrency:      getIntOrDefault("SCAN_CONCURRENCY", 4),
		PairDelay:            getDurationOrDefault("PAIR_DELAY", time.Second),
		SchedulesEnabled:     getBoolOrDefault("SCHEDULES_ENABLED", true),

		FetchTimeout:        getDurationOrDefault("FETCH_TIMEOUT", 30*time.Second),
		FetchMaxAttempts:    getIntOrDefault("FETCH_MAX_ATTEMPTS", 3),
		FetchInitialBackoff: getDurationOrDefault("FETCH_INITIAL_BACKOFF", time.Second),
		FetchMaxBackoff:     getDurationOrDefault("FETCH_MAX_BACKOFF", 30*time.Second),
		FetchRateLimit:      getFloat64OrDefault("FETCH_RATE_LIMIT", 2),
		FetchBurst:          getIntOrDefault("FETCH_BURST", 2),
		FetchPageDelay:      getDurationOrDefault("FETCH_PAGE_DELAY", time.Second),
		SourcesFile:         os.Getenv("SOURCES_FILE"),

		BreakerWindow:       getIntOrDefault("BREAKER_WINDOW", 10),
		BreakerFailureRatio: getFloat64OrDefault("BREAKER_FAILURE_RATIO", 0.6),
		BreakerCooldown:     getDurationOrDefault("BREAKER_COOLDOWN", 5*time.Minute),

		StorageMode:  getEnvOrDefault("STORAGE_MODE", StorageConsole),
		SnapshotDir:  getEnvOrDefault("SNAPSHOT_DIR", "./data"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "bookie"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "bookie123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "bookie_arb"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   getInt64OrDefault("TELEGRAM_CHAT_ID", 0),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getIntOrDefault("REDIS_DB", 0),
		AlertDedupTTL:    getDurationOrDefault("ALERT_DEDUP_TTL", 30*time.Minute),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in (0, 1], got %f", c.SimilarityThreshold)
	}

	if c.MaxTimeDelta < 0 {
		return fmt.Errorf("MAX_TIME_DELTA cannot be negative, got %v", c.MaxTimeDelta)
	}

	if c.DefaultStake <= 0 {
		return fmt.Errorf("DEFAULT_STAKE must be positive, got %f", c.DefaultStake)
	}

	if c.MinProfitPercent < 0 {
		return fmt.Errorf("MIN_PROFIT_PERCENT cannot be negative, got %f", c.MinProfitPercent)
	}

	for name, d := range map[string]time.Duration{
		"DATA_REFRESH_THRESHOLD": c.DataRefreshThreshold,
		"PROCESS_INTERVAL":       c.ProcessInterval,
		"FETCH_INTERVAL":         c.FetchInterval,
		"FETCH_TIMEOUT":          c.FetchTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, d)
		}
	}

	if c.ScanConcurrency < 1 {
		return fmt.Errorf("SCAN_CONCURRENCY must be at least 1, got %d", c.ScanConcurrency)
	}

	if c.FetchMaxAttempts < 1 {
		return fmt.Errorf("FETCH_MAX_ATTEMPTS must be at least 1, got %d", c.FetchMaxAttempts)
	}

	if c.BreakerWindow < 0 {
		return fmt.Errorf("BREAKER_WINDOW cannot be negative, got %d", c.BreakerWindow)
	}

	if c.BreakerWindow > 0 && (c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1) {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got %f", c.BreakerFailureRatio)
	}

	if c.BreakerWindow > 0 && c.BreakerCooldown <= 0 {
		return fmt.Errorf("BREAKER_COOLDOWN must be positive, got %v", c.BreakerCooldown)
	}

	switch c.StorageMode {
	case StorageConsole, StoragePostgres, StorageSnapshot:
	default:
		return fmt.Errorf("STORAGE_MODE must be 'console', 'postgres' or 'snapshot', got %q", c.StorageMode)
	}

	if c.TelegramBotToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	return nil
}

// PostgresDSN returns the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPass, c.PostgresDB, c.PostgresSSL)
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

// getListOrDefault splits a comma separated value, dropping empty items.
func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}

	return out
}
