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
	// BaseURL prefixes the survey and stats links handed out on creation.
	BaseURL string
	// RedisURL enables the Redis broker for live stats. Empty keeps events in-process.
	RedisURL string
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins      []string
	SubmitRateLimit     int
	SubmitRateWindow    time.Duration
	MaxQuestions        int
	MaxOptions          int
	StoreReportSchedule string
	StatsPushInterval   time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "debug"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "auto"),
		BaseURL:             strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080/api/v1"), "/"),
		RedisURL:            os.Getenv("REDIS_URL"),
		AllowedOrigins:      parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		SubmitRateLimit:     getEnvInt("SUBMIT_RATE_LIMIT", 100),
		SubmitRateWindow:    time.Duration(getEnvInt("SUBMIT_RATE_WINDOW_SECONDS", 60)) * time.Second,
		MaxQuestions:        getEnvInt("MAX_QUESTIONS", 50),
		MaxOptions:          getEnvInt("MAX_OPTIONS", 20),
		StoreReportSchedule: lookupEnv("STORE_REPORT_SCHEDULE", "@every 5m"),
		StatsPushInterval:   time.Duration(getEnvInt("STATS_PUSH_INTERVAL_SECONDS", 30)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// lookupEnv is like getEnv but honours an explicitly empty value.
func lookupEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
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
