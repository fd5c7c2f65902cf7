package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Storage
	StoreDriver   string
	PostgresURL   string
	ClickHouseURL string
	RedisURL      string

	// Leaderboard
	LeaderboardSeed    int64
	HasLeaderboardSeed bool

	// Snapshot worker
	SnapshotQueueSize     int
	SnapshotBatchSize     int
	SnapshotFlushInterval time.Duration

	// Admin
	AdminToken string

	// Rate limiting
	RateLimitPerMinute int

	Log LogConfig
}

// LogConfig controls the zap logger and optional file rotation.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// ClientConfig configures a terminal session against the HTTP API.
type ClientConfig struct {
	APIURL           string
	RequestTimeout   time.Duration
	PollInterval     time.Duration
	ValidateAttempts int
	ValidateBackoff  time.Duration
	WalletKeypair    string
	WalletStateFile  string

	Log LogConfig
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		StoreDriver:   getEnv("STORE_DRIVER", StoreDriverPostgres),
		ClickHouseURL: getEnv("CLICKHOUSE_URL", ""),
		RedisURL:      getEnv("REDIS_URL", ""),

		SnapshotQueueSize:     getEnvInt("SNAPSHOT_QUEUE_SIZE", 1000),
		SnapshotBatchSize:     getEnvInt("SNAPSHOT_BATCH_SIZE", 200),
		SnapshotFlushInterval: getEnvDuration("SNAPSHOT_FLUSH_INTERVAL", 5*time.Second),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		Log: loadLogConfig(),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	cfg.AllowedOrigins = splitList(origins)

	if raw := os.Getenv("LEADERBOARD_SEED"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid LEADERBOARD_SEED %q: %w", raw, err)
		}
		cfg.LeaderboardSeed = seed
		cfg.HasLeaderboardSeed = true
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		// Critical configuration - fail if missing
		var err error
		if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
			return nil, err
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// LoadClient loads the terminal client configuration.
func LoadClient() (*ClientConfig, error) {
	cfg := &ClientConfig{
		APIURL:           strings.TrimRight(getEnv("API_URL", "http://localhost:8080/api/v1"), "/"),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 5*time.Second),
		PollInterval:     getEnvDuration("POLL_INTERVAL", 10*time.Second),
		ValidateAttempts: getEnvInt("VALIDATE_ATTEMPTS", 3),
		ValidateBackoff:  getEnvDuration("VALIDATE_BACKOFF", 200*time.Millisecond),
		WalletKeypair:    getEnv("WALLET_KEYPAIR", ""),
		WalletStateFile:  getEnv("WALLET_STATE_FILE", ".pnlwatch-wallet"),
		Log:              loadLogConfig(),
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}
	if cfg.ValidateAttempts < 1 {
		cfg.ValidateAttempts = 1
	}
	return cfg, nil
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		Compress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// IsProduction reports whether the server runs with production logging defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
