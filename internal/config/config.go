// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-quorum.
//
// go-quorum is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package config loads custodian node configuration from YAML with
// environment variable overrides.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
	"github.com/jeremyhahn/go-quorum/pkg/logging"
	"github.com/jeremyhahn/go-quorum/pkg/validation"
	"gopkg.in/yaml.v3"
)

// DefaultPort is the custodian gRPC port used when none is configured.
const DefaultPort = 50051

// Config represents the complete node configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Custody   CustodyConfig   `yaml:"custody"`
}

// ServerConfig contains server-level settings
type ServerConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	NodeID string `yaml:"node_id"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the metrics and health HTTP listener
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// RateLimitConfig controls per-peer rate limiting
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled"`
	RequestsPerMin int  `yaml:"requests_per_min"`
	Burst          int  `yaml:"burst"`
}

// CustodyConfig controls how shares are decoded
type CustodyConfig struct {
	Field         string `yaml:"field"`
	StrictScalars bool   `yaml:"strict_scalars"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: DefaultPort,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
		RateLimit: RateLimitConfig{
			Enabled:        false,
			RequestsPerMin: 600,
		},
		Custody: CustodyConfig{
			Field: field.Default().Name(),
		},
	}
}

// Load reads configuration from a YAML file and applies environment variable
// overrides. Settings missing from the file keep their defaults. An empty
// path loads the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 - Config file path is provided by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	cfg.applyDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("QUORUM_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("QUORUM_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			log.Printf("Warning: invalid QUORUM_PORT value %q, using %d: %v",
				portStr, cfg.Server.Port, err)
		} else if port < 1 || port > 65535 {
			log.Printf("Warning: invalid QUORUM_PORT value %q (out of range 1-65535), using %d",
				portStr, cfg.Server.Port)
		} else {
			cfg.Server.Port = port
		}
	}
	if nodeID := os.Getenv("QUORUM_NODE_ID"); nodeID != "" {
		cfg.Server.NodeID = nodeID
	}

	if level := os.Getenv("QUORUM_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("QUORUM_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	if f := os.Getenv("QUORUM_FIELD"); f != "" {
		cfg.Custody.Field = f
	}
}

// applyDerived fills settings that default from other settings.
func (c *Config) applyDerived() {
	if c.Server.NodeID == "" {
		c.Server.NodeID = DefaultNodeID(c.Server.Port)
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = c.RateLimit.RequestsPerMin
	}
}

// DefaultNodeID is the node id used when none is configured.
func DefaultNodeID(port int) string {
	return fmt.Sprintf("node-%d", port)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if err := validation.ValidateNodeID(c.Server.NodeID); err != nil {
		return err
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil || c.Logging.Level == "" {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
		}
		if c.Metrics.Port == c.Server.Port {
			return fmt.Errorf("metrics port %d conflicts with server port", c.Metrics.Port)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("invalid metrics path: %q (must start with /)", c.Metrics.Path)
		}
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMin < 1 {
		return fmt.Errorf("ratelimit requests_per_min must be positive when enabled")
	}

	if _, err := field.Lookup(c.Custody.Field); err != nil {
		return err
	}

	return nil
}

// Field resolves the configured scalar field.
func (c *Config) Field() (field.Field, error) {
	return field.Lookup(c.Custody.Field)
}

// LogLevel resolves the configured log level.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return level
}
