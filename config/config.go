package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Logging     LoggingConfig
	Catalog     CatalogConfig
	Validation  ValidationConfig
	Suggestions SuggestionConfig
	Cache       CacheConfig
	Performance PerformanceConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// CatalogConfig holds placeholder catalog configuration. When Path is
// empty the built-in catalog is used.
type CatalogConfig struct {
	Path string
}

// ValidationConfig holds content validation thresholds
type ValidationConfig struct {
	MinContentLength   int
	MaxContentLength   int
	HeadingThreshold   int
	MaxEmptyParagraphs int
	MaxFormattingRatio float64
	MaxTraversalDepth  int
}

// SuggestionConfig holds autocomplete configuration
type SuggestionConfig struct {
	DefaultMaxResults int
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Enabled         bool
	MaxSize         int
	CleanupInterval time.Duration
	DefaultTTL      time.Duration
}

// PerformanceConfig holds performance monitoring configuration
type PerformanceConfig struct {
	MetricsEnabled       bool
	MetricsEndpoint      string
	MonitoringEnabled    bool
	SlowRequestThreshold time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Catalog: CatalogConfig{
			Path: getEnv("CATALOG_PATH", ""),
		},
		Validation: ValidationConfig{
			MinContentLength:   getIntEnv("VALIDATION_MIN_CONTENT_LENGTH", 30),
			MaxContentLength:   getIntEnv("VALIDATION_MAX_CONTENT_LENGTH", 10000),
			HeadingThreshold:   getIntEnv("VALIDATION_HEADING_THRESHOLD", 300),
			MaxEmptyParagraphs: getIntEnv("VALIDATION_MAX_EMPTY_PARAGRAPHS", 3),
			MaxFormattingRatio: getFloatEnv("VALIDATION_MAX_FORMATTING_RATIO", 0.3),
			MaxTraversalDepth:  getIntEnv("VALIDATION_MAX_DEPTH", 200),
		},
		Suggestions: SuggestionConfig{
			DefaultMaxResults: getIntEnv("SUGGESTION_MAX_RESULTS", 10),
		},
		Cache: CacheConfig{
			Enabled:         getBoolEnv("CACHE_ENABLED", true),
			MaxSize:         getIntEnv("CACHE_MAX_SIZE", 1000),
			CleanupInterval: getDurationEnv("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
			DefaultTTL:      getDurationEnv("CACHE_DEFAULT_TTL", 30*time.Minute),
		},
		Performance: PerformanceConfig{
			MetricsEnabled:       getBoolEnv("METRICS_ENABLED", true),
			MetricsEndpoint:      getEnv("METRICS_ENDPOINT", "/metrics"),
			MonitoringEnabled:    getBoolEnv("MONITORING_ENABLED", true),
			SlowRequestThreshold: getDurationEnv("SLOW_REQUEST_THRESHOLD", 500*time.Millisecond),
		},
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets duration from environment variable with default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets integer from environment variable with default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getFloatEnv gets float from environment variable with default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv gets boolean from environment variable with default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Validation.MinContentLength < 0 {
		return &ConfigError{Field: "VALIDATION_MIN_CONTENT_LENGTH", Message: "minimum content length must not be negative"}
	}
	if c.Validation.MaxContentLength <= c.Validation.MinContentLength {
		return &ConfigError{Field: "VALIDATION_MAX_CONTENT_LENGTH", Message: "maximum content length must exceed the minimum"}
	}
	if c.Validation.HeadingThreshold < 0 {
		return &ConfigError{Field: "VALIDATION_HEADING_THRESHOLD", Message: "heading threshold must not be negative"}
	}
	if c.Validation.MaxFormattingRatio <= 0 || c.Validation.MaxFormattingRatio > 1 {
		return &ConfigError{Field: "VALIDATION_MAX_FORMATTING_RATIO", Message: "formatting ratio must be in (0, 1]"}
	}
	if c.Validation.MaxTraversalDepth <= 0 {
		return &ConfigError{Field: "VALIDATION_MAX_DEPTH", Message: "traversal depth must be positive"}
	}
	if c.Suggestions.DefaultMaxResults <= 0 {
		return &ConfigError{Field: "SUGGESTION_MAX_RESULTS", Message: "default result count must be positive"}
	}
	return nil
}

// ConfigError represents configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
