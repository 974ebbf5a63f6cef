// Package config provides configuration management for the Payok tools
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/alexbotov/payok/pkg/payok"
)

// Config holds all configuration for the Payok tools
type Config struct {
	API     APIConfig
	Client  ClientConfig
	Log     LogConfig
	Sandbox SandboxConfig
}

// APIConfig holds the Payok credentials and endpoints
type APIConfig struct {
	ID        string
	Key       string
	SecretKey string
	BaseURL   string
	PayURL    string
}

// ClientConfig holds HTTP client behaviour
type ClientConfig struct {
	Timeout         time.Duration
	PageInterval    time.Duration
	BreakerFailures uint32
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// SandboxConfig holds the local sandbox server configuration
type SandboxConfig struct {
	Port string
}

// LoadEnv reads a .env file from the working directory if there is one.
// Variables already set in the environment win.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
}

// Load loads configuration from environment with defaults
func Load() *Config {
	return &Config{
		API: APIConfig{
			ID:        getEnv("PAYOK_API_ID", ""),
			Key:       getEnv("PAYOK_API_KEY", ""),
			SecretKey: getEnv("PAYOK_SECRET_KEY", ""),
			BaseURL:   getEnv("PAYOK_BASE_URL", payok.DefaultBaseURL),
			PayURL:    getEnv("PAYOK_PAY_URL", payok.DefaultPayURL),
		},
		Client: ClientConfig{
			Timeout:         getDurationEnv("PAYOK_TIMEOUT", 30*time.Second),
			PageInterval:    getDurationEnv("PAYOK_PAGE_INTERVAL", time.Second),
			BreakerFailures: getUint32Env("PAYOK_BREAKER_FAILURES", 0),
		},
		Log: LogConfig{
			Level: getEnv("PAYOK_LOG_LEVEL", "info"),
		},
		Sandbox: SandboxConfig{
			Port: getEnv("PAYOK_SANDBOX_PORT", "8090"),
		},
	}
}

// ClientConfig builds the payok client configuration
func (c *Config) ClientConfig(logger *slog.Logger) *payok.ClientConfig {
	return &payok.ClientConfig{
		BaseURL:         c.API.BaseURL,
		PayURL:          c.API.PayURL,
		APIID:           c.API.ID,
		APIKey:          c.API.Key,
		SecretKey:       c.API.SecretKey,
		Timeout:         c.Client.Timeout,
		PageInterval:    c.Client.PageInterval,
		BreakerFailures: c.Client.BreakerFailures,
		Logger:          logger,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getUint32Env falls back to the default for values that are negative or
// do not fit in 32 bits
func getUint32Env(key string, defaultValue uint32) uint32 {
	if n, err := strconv.ParseUint(os.Getenv(key), 10, 32); err == nil {
		return uint32(n)
	}
	return defaultValue
}

// getDurationEnv accepts Go durations ("1500ms") or plain seconds ("2")
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}
