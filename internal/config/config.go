package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	LogFormat string
	LogLevel  string

	MetricsNamespace string
	MetricsBuckets   string

	TracingEnabled  bool
	TracingEndpoint string
	TracingSampling float64

	CatalogCacheTTL time.Duration

	RateLimitEnabled bool
	RateLimitPerMin  int

	QueuePrefix            string
	QueueConcurrency       int
	QueueVisibilityTimeout time.Duration
	QueueMaxAttempts       int
	QueueDedupTTL          time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		LogFormat: valueOrDefault(k.String("LOG_FORMAT"), "json"),
		LogLevel:  valueOrDefault(k.String("LOG_LEVEL"), "info"),

		MetricsNamespace: valueOrDefault(k.String("METRICS_NAMESPACE"), "precios"),
		MetricsBuckets:   k.String("METRICS_BUCKETS_MS"),

		TracingEnabled:  parseBool(k.String("TRACING_ENABLED")),
		TracingEndpoint: strings.TrimSpace(k.String("TRACING_ENDPOINT")),
		TracingSampling: parseFloat(k.String("TRACING_SAMPLING"), 1),

		CatalogCacheTTL: parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),

		RateLimitEnabled: parseBool(valueOrDefault(k.String("RATE_LIMIT_ENABLED"), "true")),
		RateLimitPerMin:  parseInt(k.String("RATE_LIMIT_PER_MIN"), 300),

		QueuePrefix:            valueOrDefault(k.String("QUEUE_PREFIX"), "precios"),
		QueueConcurrency:       parseInt(k.String("QUEUE_CONCURRENCY"), 4),
		QueueVisibilityTimeout: parseDuration(k.String("QUEUE_VISIBILITY_TIMEOUT"), "30s"),
		QueueMaxAttempts:       parseInt(k.String("QUEUE_MAX_ATTEMPTS"), 10),
		QueueDedupTTL:          parseDuration(k.String("QUEUE_DEDUP_TTL"), "24h"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
