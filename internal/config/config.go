package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"mufawter/internal/analytics"
	"mufawter/internal/logger"
)

type Config struct {
	// Invoice API Configuration
	APIBase            string
	HTTPTimeoutSeconds int

	// Display Configuration
	Locale        string
	CurrencyLabel string

	// Upload Configuration
	UploadWorkers  int
	VisionPrecheck bool

	// Google Sheets Configuration
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		APIBase:              strings.TrimRight(getEnv("API_BASE", ""), "/"),
		HTTPTimeoutSeconds:   getEnvInt("HTTP_TIMEOUT_SECONDS", 60),
		Locale:               strings.ToLower(getEnv("LOCALE", "ar")),
		CurrencyLabel:        getEnv("CURRENCY_LABEL", ""),
		UploadWorkers:        getEnvInt("UPLOAD_WORKERS", 4),
		VisionPrecheck:       getEnvBool("VISION_PRECHECK", false),
		GoogleSheetURL:       getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet: getEnv("GOOGLE_SHEET_WORKSHEET", "Invoices"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:            getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.APIBase == "" {
		return fmt.Errorf("API_BASE is required")
	}
	u, err := url.Parse(c.APIBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE must be an absolute http(s) URL, got %q", c.APIBase)
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}
	if c.Locale != "ar" && c.Locale != "en" {
		return fmt.Errorf("LOCALE must be \"ar\" or \"en\", got %q", c.Locale)
	}
	if c.UploadWorkers <= 0 {
		return fmt.Errorf("UPLOAD_WORKERS must be positive")
	}
	return nil
}

// HTTPTimeout is the per-request timeout for the invoice API.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Labels returns the display strings for the configured locale.
func (c *Config) Labels() analytics.Labels {
	return analytics.LabelsFor(c.Locale, c.CurrencyLabel)
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns -1 for an unparseable value so validate rejects it.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
		return -1
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
