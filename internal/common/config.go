// Package common provides shared utilities for Sentinel
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Sentinel
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Clients     ClientsConfig  `toml:"clients"`
	Pipeline    PipelineConfig `toml:"pipeline"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds storage paths: the database directory and the
// document staging area for downloaded filings.
type StorageConfig struct {
	Path     string `toml:"path"`      // BadgerHold database directory
	DataPath string `toml:"data_path"` // downloaded PDFs and extracted text
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	BSE    BSEConfig    `toml:"bse"`
	News   NewsConfig   `toml:"news"`
	Yahoo  YahooConfig  `toml:"yahoo"`
	Gemini GeminiConfig `toml:"gemini"`
}

// BSEConfig holds the BSE announcements API configuration
type BSEConfig struct {
	Endpoint string `toml:"endpoint"`
	Timeout  string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *BSEConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// NewsConfig holds the Google News RSS configuration
type NewsConfig struct {
	HL    string `toml:"hl"`   // interface language, e.g. "en-IN"
	GL    string `toml:"gl"`   // geographic region, e.g. "IN"
	CEID  string `toml:"ceid"` // country:language edition, e.g. "IN:en"
	Limit int    `toml:"limit"`
}

// YahooConfig holds the Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration for the summarizer fallback
type GeminiConfig struct {
	Enabled bool   `toml:"enabled"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// PipelineConfig holds ingestion pipeline tuning knobs
type PipelineConfig struct {
	HTTPRetries       int    `toml:"http_retries"`
	UserAgent         string `toml:"user_agent"`
	RateLimit         int    `toml:"rate_limit"` // requests per second for outbound fetches
	TextMinChars      int    `toml:"text_min_chars"`
	OCRLanguage       string `toml:"ocr_language"`
	OCRMaxPages       int    `toml:"ocr_max_pages"`
	LookbackDays      int    `toml:"lookback_days"`
	SchedulerEnabled  bool   `toml:"scheduler_enabled"`
	SchedulerInterval string `toml:"scheduler_interval"`
}

// GetSchedulerInterval parses and returns the scheduler interval duration
func (c *PipelineConfig) GetSchedulerInterval() time.Duration {
	d, err := time.ParseDuration(c.SchedulerInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `toml:"level"`
	FilePath string `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path:     "data/db",
			DataPath: "data/filings",
		},
		Clients: ClientsConfig{
			BSE: BSEConfig{
				Endpoint: "https://api.bseindia.com/BseIndiaAPI/api/AnnGetData/w",
				Timeout:  "20s",
			},
			News: NewsConfig{
				HL:    "en-IN",
				GL:    "IN",
				CEID:  "IN:en",
				Limit: 50,
			},
			Yahoo: YahooConfig{
				BaseURL: "https://query1.finance.yahoo.com",
				Timeout: "30s",
			},
			Gemini: GeminiConfig{
				Enabled: false,
				Model:   "gemini-2.0-flash",
			},
		},
		Pipeline: PipelineConfig{
			HTTPRetries:       3,
			UserAgent:         "Sentinel/0.1 (+market-research)",
			RateLimit:         5,
			TextMinChars:      250,
			OCRLanguage:       "eng",
			OCRMaxPages:       12,
			LookbackDays:      90,
			SchedulerEnabled:  true,
			SchedulerInterval: "60m",
		},
		Logging: LoggingConfig{
			Level:    "info",
			FilePath: "./logs/sentinel.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SENTINEL_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("SENTINEL_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("SENTINEL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("SENTINEL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("SENTINEL_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Join(path, "db")
		config.Storage.DataPath = filepath.Join(path, "filings")
	}

	if v := os.Getenv("SENTINEL_BSE_ENDPOINT"); v != "" {
		config.Clients.BSE.Endpoint = v
	}

	if v := os.Getenv("SENTINEL_GEMINI_API_KEY"); v != "" {
		config.Clients.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && config.Clients.Gemini.APIKey == "" {
		config.Clients.Gemini.APIKey = v
	}
	if v := os.Getenv("SENTINEL_GEMINI_ENABLED"); v != "" {
		config.Clients.Gemini.Enabled = parseBool(v)
	}

	if v := os.Getenv("SENTINEL_SCHEDULER_ENABLED"); v != "" {
		config.Pipeline.SchedulerEnabled = parseBool(v)
	}
	if v := os.Getenv("SENTINEL_SCHEDULER_INTERVAL"); v != "" {
		config.Pipeline.SchedulerInterval = v
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
