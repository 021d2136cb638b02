package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process configuration, resolved once from the environment.
type Config struct {
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Observability ObservabilityConfig
	Invoice     InvoiceConfig
}

type HTTPConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
	RateLimit       int
	RateWindow      time.Duration
}

type DatabaseConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type ObservabilityConfig struct {
	ServiceName      string
	ServiceVersion   string
	TracingEnabled   bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

type InvoiceConfig struct {
	// OverdueSweepInterval controls how often SENT invoices past their due
	// date are flipped to OVERDUE.
	OverdueSweepInterval time.Duration
}

// IsProduction reports whether the process runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load resolves the configuration from the environment.
func Load() Config {
	return Config{
		Environment: envString("FAKTURA_ENV", "development"),
		HTTP: HTTPConfig{
			Addr:            envString("HTTP_ADDR", ":8080"),
			ShutdownTimeout: envDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
			RateLimit:       envInt("HTTP_RATE_LIMIT", 120),
			RateWindow:      envDuration("HTTP_RATE_WINDOW", time.Minute),
		},
		Database: DatabaseConfig{
			Driver:       envString("DATABASE_DRIVER", "postgres"),
			DSN:          envString("DATABASE_URL", ""),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Observability: ObservabilityConfig{
			ServiceName:      envString("OTEL_SERVICE_NAME", "faktura"),
			ServiceVersion:   envString("SERVICE_VERSION", "dev"),
			TracingEnabled:   envBool("TRACING_ENABLED", false),
			ExporterEndpoint: envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ExporterProtocol: envString("OTEL_EXPORTER_OTLP_PROTOCOL", "http"),
			SamplingRatio:    envFloat("TRACING_SAMPLING_RATIO", 0.1),
		},
		Invoice: InvoiceConfig{
			OverdueSweepInterval: envDuration("INVOICE_OVERDUE_SWEEP_INTERVAL", time.Hour),
		},
	}
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
