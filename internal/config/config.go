// Package config loads server configuration from defaults, an optional
// KEY=VALUE file and FLIGHTLOG_* environment variables, in that order.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix is prepended to every config key when read from the environment.
const EnvPrefix = "FLIGHTLOG_"

// Config holds the server configuration.
type Config struct {
	// HTTP server
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Requests
	MaxUploadBytes int64
	SeriesFormat   string // parquet|csv, used by the export endpoint

	// Observability
	LogLevel         string
	MetricsNamespace string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Host:             "0.0.0.0",
		Port:             8080,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     60 * time.Second,
		IdleTimeout:      120 * time.Second,
		ShutdownTimeout:  30 * time.Second,
		MaxUploadBytes:   64 << 20,
		SeriesFormat:     "parquet",
		LogLevel:         "info",
		MetricsNamespace: "flightlog",
	}
}

// Load builds the configuration. An empty path skips the file stage.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath != "" {
		if err := cfg.loadFile(configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(configPath string) error {
	file, err := os.Open(configPath)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if err := c.setValue(key, value); err != nil {
			return fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// keys lists every settable key; env overrides are looked up as EnvPrefix+key.
var keys = []string{
	"HOST", "PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT",
	"MAX_UPLOAD_BYTES", "SERIES_FORMAT", "LOG_LEVEL", "METRICS_NAMESPACE",
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, key := range keys {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		if err := c.setValue(key, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("env %s%s: %w", EnvPrefix, key, err)
		}
	}
	return nil
}

func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	case "HOST":
		c.Host = value
	case "PORT":
		c.Port, err = strconv.Atoi(value)
	case "READ_TIMEOUT":
		c.ReadTimeout, err = time.ParseDuration(value)
	case "WRITE_TIMEOUT":
		c.WriteTimeout, err = time.ParseDuration(value)
	case "IDLE_TIMEOUT":
		c.IdleTimeout, err = time.ParseDuration(value)
	case "SHUTDOWN_TIMEOUT":
		c.ShutdownTimeout, err = time.ParseDuration(value)
	case "MAX_UPLOAD_BYTES":
		c.MaxUploadBytes, err = strconv.ParseInt(value, 10, 64)
	case "SERIES_FORMAT":
		c.SeriesFormat = strings.ToLower(value)
	case "LOG_LEVEL":
		c.LogLevel = strings.ToLower(value)
	case "METRICS_NAMESPACE":
		c.MetricsNamespace = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive: %d", c.MaxUploadBytes)
	}
	if c.SeriesFormat != "parquet" && c.SeriesFormat != "csv" {
		return fmt.Errorf("unsupported series format %q (expected parquet|csv)", c.SeriesFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
