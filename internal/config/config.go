package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvDevMode is the single recognized environment toggle for the relaxed
// admission profile (5% buffer, 50% assumed consumption). Any other
// scheduler tunable is fixed.
const EnvDevMode = "QUANTSCHED_DEV_MODE"

// ServerConfig holds configuration for the QuantSched server.
type ServerConfig struct {
	Addr         string        // Listen address (default ":8080")
	LogLevel     string        // Log level: debug, info, warn, error
	LogFormat    string        // Log format: text, json
	PollInterval time.Duration // Queue worker poll interval
	DevMode      bool          // Relaxed admission profile (env only)
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         ":8080",
		LogLevel:     "info",
		LogFormat:    "text",
		PollInterval: 5 * time.Second,
		DevMode:      DevModeFromEnv(),
	}
}

// fileConfig is the YAML shape of a server config file. Durations are
// strings in Go duration syntax ("5s", "1m30s").
type fileConfig struct {
	Addr         string `yaml:"addr"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	PollInterval string `yaml:"poll_interval"`
}

// LoadServerConfig reads a YAML config file over the defaults. Fields
// omitted in the file keep their default values.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if raw.Addr != "" {
		cfg.Addr = raw.Addr
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.LogFormat != "" {
		cfg.LogFormat = raw.LogFormat
	}
	if raw.PollInterval != "" {
		d, err := time.ParseDuration(raw.PollInterval)
		if err != nil {
			return cfg, fmt.Errorf("config %s: poll_interval: %w", path, err)
		}
		if d <= 0 {
			return cfg, fmt.Errorf("config %s: poll_interval must be positive", path)
		}
		cfg.PollInterval = d
	}
	return cfg, nil
}

// DevModeFromEnv reports whether the relaxed admission profile is enabled.
func DevModeFromEnv() bool {
	return strings.EqualFold(os.Getenv(EnvDevMode), "true")
}
