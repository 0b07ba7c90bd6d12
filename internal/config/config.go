// Package config holds application configuration derived from environment
// variables, with optional .env loading for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the bounty admin API.
type Config struct {
	Port string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Cache
	CacheNamespace string
	// Per-route TTL classes: volatile listings, general detail views,
	// near-static aggregates.
	ListTTL   time.Duration
	DetailTTL time.Duration
	StatsTTL  time.Duration

	// Server
	ShutdownTimeout time.Duration
	DrainTimeout    time.Duration

	// Observability
	LogLevel  string
	LogPretty bool
}

// Load reads a .env file when present, then the environment. Missing values
// fall back to development defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),
		CacheNamespace:  getEnv("CACHE_NAMESPACE", "bounty"),
		ListTTL:         getEnvAsSeconds("CACHE_LIST_TTL_SECONDS", 60),
		DetailTTL:       getEnvAsSeconds("CACHE_DETAIL_TTL_SECONDS", 300),
		StatsTTL:        getEnvAsSeconds("CACHE_STATS_TTL_SECONDS", 600),
		ShutdownTimeout: getEnvAsSeconds("SHUTDOWN_TIMEOUT_SECONDS", 10),
		DrainTimeout:    getEnvAsSeconds("DRAIN_TIMEOUT_SECONDS", 5),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogPretty:       getEnvAsBool("LOG_PRETTY", false),
	}
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvAsSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Second
}
