// Package config loads process settings: built-in defaults, then an optional
// YAML file, then environment variables, each layer overriding the last.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceName string `yaml:"service_name"`
	Port        string `yaml:"port"`
	GRPCPort    string `yaml:"grpc_port"`
	LogLevel    string `yaml:"log_level"`

	DBPath      string `yaml:"db_path"`
	SagaLogPath string `yaml:"saga_log_path"`
	CatalogSeed string `yaml:"catalog_seed"`

	// RedisAddr empty keeps idempotency keys in process memory.
	RedisAddr string `yaml:"redis_addr"`

	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
	Tracing  TracingConfig  `yaml:"tracing"`

	LookupTimeout  time.Duration `yaml:"lookup_timeout"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
	CartIdleTTL    time.Duration `yaml:"cart_idle_ttl"`

	// AdminToken guards the /admin routes. Empty disables them.
	AdminToken string `yaml:"admin_token"`
}

type RabbitMQConfig struct {
	// URL empty means order notifications are only logged.
	URL             string `yaml:"url"`
	Queue           string `yaml:"queue"`
	ChannelPoolSize int    `yaml:"channel_pool_size"`
	NumWorkers      int    `yaml:"num_workers"`
}

type WhatsAppConfig struct {
	Number  string `yaml:"number"`
	Enabled bool   `yaml:"enabled"`
	// OpenLinks makes the notifier open each wa.me link with the host OS handler.
	OpenLinks bool `yaml:"open_links"`
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Environment string  `yaml:"environment"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		ServiceName: "storefront",
		Port:        "8080",
		GRPCPort:    "9090",
		LogLevel:    "info",
		DBPath:      "./data/storefront.db",
		SagaLogPath: "./data/saga.db",
		RabbitMQ: RabbitMQConfig{
			Queue:           "order_notifications",
			ChannelPoolSize: 10,
			NumWorkers:      2,
		},
		WhatsApp: WhatsAppConfig{
			Number:  "201065223412",
			Enabled: true,
		},
		Tracing: TracingConfig{
			Endpoint:    "localhost:4317",
			Environment: "local",
			SampleRatio: 1,
		},
		LookupTimeout:  5 * time.Second,
		IdempotencyTTL: 24 * time.Hour,
		CartIdleTTL:    72 * time.Hour,
	}
}

// Load builds the configuration. path may be empty, in which case CONFIG_FILE
// is consulted; with neither set only defaults and environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a YAML file over the current values. Keys absent from the
// file keep their current value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing YAML config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServiceName = getEnv("OTEL_SERVICE_NAME", c.ServiceName)
	c.Port = getEnv("PORT", c.Port)
	c.GRPCPort = getEnv("GRPC_PORT", c.GRPCPort)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.SagaLogPath = getEnv("SAGA_LOG_PATH", c.SagaLogPath)
	c.CatalogSeed = getEnv("CATALOG_SEED", c.CatalogSeed)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)

	c.RabbitMQ.URL = getEnv("RABBITMQ_URL", c.RabbitMQ.URL)
	c.RabbitMQ.Queue = getEnv("RABBITMQ_QUEUE", c.RabbitMQ.Queue)
	c.RabbitMQ.ChannelPoolSize = getEnvAsInt("CHANNEL_POOL_SIZE", c.RabbitMQ.ChannelPoolSize)
	c.RabbitMQ.NumWorkers = getEnvAsInt("NUM_WORKERS", c.RabbitMQ.NumWorkers)

	c.WhatsApp.Number = getEnv("WHATSAPP_NOTIFICATION_NUMBER", c.WhatsApp.Number)
	c.WhatsApp.Enabled = getEnvAsBool("ENABLE_WHATSAPP_NOTIFICATIONS", c.WhatsApp.Enabled)
	c.WhatsApp.OpenLinks = getEnvAsBool("OPEN_WHATSAPP_LINKS", c.WhatsApp.OpenLinks)

	c.Tracing.Enabled = getEnvAsBool("TRACING_ENABLED", c.Tracing.Enabled)
	c.Tracing.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.Endpoint)
	c.Tracing.Environment = getEnv("OTEL_RESOURCE_ATTRIBUTES_ENV", c.Tracing.Environment)
	c.Tracing.SampleRatio = getEnvAsFloat("TRACING_SAMPLE_RATIO", c.Tracing.SampleRatio)

	c.LookupTimeout = getEnvAsDuration("LOOKUP_TIMEOUT", c.LookupTimeout)
	c.IdempotencyTTL = getEnvAsDuration("IDEMPOTENCY_TTL", c.IdempotencyTTL)
	c.CartIdleTTL = getEnvAsDuration("CART_IDLE_TTL", c.CartIdleTTL)
	c.AdminToken = getEnv("ADMIN_TOKEN", c.AdminToken)
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("config: port is required")
	case c.DBPath == "":
		return fmt.Errorf("config: db_path is required")
	case c.RabbitMQ.ChannelPoolSize < 1:
		return fmt.Errorf("config: rabbitmq.channel_pool_size must be positive, got %d", c.RabbitMQ.ChannelPoolSize)
	case c.RabbitMQ.NumWorkers < 1:
		return fmt.Errorf("config: rabbitmq.num_workers must be positive, got %d", c.RabbitMQ.NumWorkers)
	case c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1:
		return fmt.Errorf("config: tracing.sample_ratio must be within [0,1], got %g", c.Tracing.SampleRatio)
	case c.LookupTimeout <= 0:
		return fmt.Errorf("config: lookup_timeout must be positive")
	}
	return nil
}

// SlogLevel maps LogLevel onto slog levels; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}
