package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Log      LogConfig
	Database DatabaseConfig
	Server   ServerConfig
	Extract  ExtractConfig
	Batch    BatchConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "json" | "text"
}

// DatabaseConfig holds run-history store configuration
type DatabaseConfig struct {
	Driver          string // "sqlite" | "postgres"; empty disables history
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// ExtractConfig holds text-extraction configuration
type ExtractConfig struct {
	Pdftotext  string
	Layout     bool
	MaxPages   int
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

// BatchConfig holds worker pool sizing
type BatchConfig struct {
	Workers   int
	QueueSize int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", ""),
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Extract: ExtractConfig{
			Pdftotext:  getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Layout:     getEnvAsBool("PDFTOTEXT_LAYOUT", false),
			MaxPages:   getEnvAsInt("LV_MAX_PAGES", 0),
			Timeout:    getEnvAsDuration("LV_EXTRACT_TIMEOUT", 60*time.Second),
			Retries:    getEnvAsInt("LV_EXTRACT_RETRIES", 2),
			RetryDelay: getEnvAsDuration("LV_EXTRACT_RETRY_DELAY", 500*time.Millisecond),
		},
		Batch: BatchConfig{
			Workers:   getEnvAsInt("LV_WORKERS", 4),
			QueueSize: getEnvAsInt("LV_QUEUE_SIZE", 64),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Batch.Workers <= 0 {
		return ConfigurationError("LV_WORKERS must be positive, got %d", c.Batch.Workers)
	}
	if c.Extract.Pdftotext == "" {
		return ConfigurationError("PDFTOTEXT_BIN is required")
	}
	switch c.Database.Driver {
	case "":
	case "sqlite", "postgres":
		if c.Database.DSN == "" {
			return ConfigurationError("DB_URL is required when DB_DRIVER=%s", c.Database.Driver)
		}
	default:
		return ConfigurationError("DB_DRIVER must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return ConfigurationError("LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto slog; unknown values fall back to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
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

// NewLogger builds the process logger described by LogConfig.
func NewLogger(c LogConfig, w *os.File) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
