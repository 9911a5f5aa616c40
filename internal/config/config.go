package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/toko-cart/internal/shop"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv            string
	DatabaseURL       string
	RedisURL          string
	CatalogCacheTTL   time.Duration
	BreakerFailures   int
	BreakerOpenFor    time.Duration
	MaxRecalculations int
	TaxCalculation    shop.TaxCalculation
	FallbackGroup     string
	Obs               ObsConfig
}

// ObsConfig controls logging, metrics and tracing.
type ObsConfig struct {
	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	MetricsBuckets   string
	EnableTracing    bool
	TracingExporter  string
	OTLPEndpoint     string
	SamplingRatio    float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	maxRecalc, err := parseInt(k.String("CART_MAX_RECALCULATIONS"), 2)
	if err != nil {
		return nil, fmt.Errorf("CART_MAX_RECALCULATIONS: %w", err)
	}
	breakerFailures, err := parseInt(k.String("CATALOG_BREAKER_FAILURES"), 5)
	if err != nil {
		return nil, fmt.Errorf("CATALOG_BREAKER_FAILURES: %w", err)
	}
	sampling, err := parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0)
	if err != nil {
		return nil, fmt.Errorf("OBS_TRACING_SAMPLING_RATIO: %w", err)
	}

	cfg := &Config{
		AppEnv:            valueOrDefault(k.String("APP_ENV"), "development"),
		DatabaseURL:       strings.TrimSpace(k.String("DATABASE_URL")),
		RedisURL:          strings.TrimSpace(k.String("REDIS_URL")),
		CatalogCacheTTL:   parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		BreakerFailures:   breakerFailures,
		BreakerOpenFor:    parseDuration(k.String("CATALOG_BREAKER_OPEN_FOR"), "30s"),
		MaxRecalculations: maxRecalc,
		TaxCalculation:    shop.TaxCalculation(strings.ToLower(valueOrDefault(k.String("SHOP_TAX_CALCULATION"), string(shop.TaxHorizontal)))),
		FallbackGroup:     valueOrDefault(k.String("SHOP_FALLBACK_CUSTOMER_GROUP"), "EK"),
		Obs: ObsConfig{
			LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "toko_cart"),
			MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
			EnableTracing:    parseBool(k.String("OBS_ENABLE_TRACING")),
			TracingExporter:  valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
			OTLPEndpoint:     k.String("OBS_OTLP_ENDPOINT"),
			SamplingRatio:    sampling,
		},
	}

	switch cfg.TaxCalculation {
	case shop.TaxHorizontal, shop.TaxVertical:
	default:
		return nil, fmt.Errorf("SHOP_TAX_CALCULATION must be horizontal or vertical, got %q", cfg.TaxCalculation)
	}
	if cfg.MaxRecalculations < 1 || cfg.MaxRecalculations > 3 {
		return nil, fmt.Errorf("CART_MAX_RECALCULATIONS must be between 1 and 3, got %d", cfg.MaxRecalculations)
	}
	if cfg.RedisURL != "" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("REDIS_URL requires DATABASE_URL")
	}

	return cfg, nil
}

// UseDatabase reports whether catalog data should be loaded from PostgreSQL.
func (c *Config) UseDatabase() bool { return c.DatabaseURL != "" }

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
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

func parseInt(value string, fallback int) (int, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return strconv.Atoi(strings.TrimSpace(value))
}

func parseFloat(value string, fallback float64) (float64, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
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
