package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// ScoringAPIURL is the base URL of the external scoring API that owns
	// question payloads, answer records and final score computation.
	ScoringAPIURL     string
	ScoringAPITimeout time.Duration
	// FinalResultRetries bounds transport-level retries of the final-result
	// call. The call is idempotent server-side, so retrying is safe.
	FinalResultRetries int

	// MirrorBackend selects the durable answer-mirror store: "redis" or "sqlite".
	MirrorBackend string
	RedisURL      string
	SQLitePath    string

	JWTSecret       string
	AttemptTokenTTL time.Duration

	// ReapInterval and AttemptGrace control eviction of finished or abandoned
	// attempts from the in-memory registry.
	ReapInterval time.Duration
	AttemptGrace time.Duration

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "pretty"),
		ScoringAPIURL:      getEnv("SCORING_API_URL", "http://localhost:3001"),
		ScoringAPITimeout:  time.Duration(getEnvInt("SCORING_API_TIMEOUT_SECONDS", 15)) * time.Second,
		FinalResultRetries: getEnvInt("FINAL_RESULT_RETRIES", 2),
		MirrorBackend:      getEnv("MIRROR_BACKEND", "redis"),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SQLitePath:         getEnv("SQLITE_PATH", "./testplayer.db"),
		JWTSecret:          getEnv("JWT_SECRET", "change-this-to-a-secure-random-string"),
		AttemptTokenTTL:    time.Duration(getEnvInt("ATTEMPT_TOKEN_TTL_HOURS", 6)) * time.Hour,
		ReapInterval:       time.Duration(getEnvInt("REAP_INTERVAL_SECONDS", 60)) * time.Second,
		AttemptGrace:       time.Duration(getEnvInt("ATTEMPT_GRACE_MINUTES", 30)) * time.Minute,
		AllowedOrigins:     parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
