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

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
	"github.com/jeremyhahn/go-quorum/pkg/logging"
)

// EnvPrefix is prepended to every flag name to form its environment
// variable, e.g. --ceremony-id is read from QUORUM_CEREMONY_ID.
const EnvPrefix = "QUORUM"

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to an optional YAML file with flag values
	ConfigFile string

	// Field is the scalar field name (secp256k1, ed25519, bn254)
	Field string

	// OutputFormat controls output formatting (text, json)
	OutputFormat string

	// Verbose enables verbose logging
	Verbose bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Field:        field.Default().Name(),
		OutputFormat: string(OutputFormatText),
	}
}

// ResolveField looks up the configured field.
func (c *Config) ResolveField() (field.Field, error) {
	return field.Lookup(c.Field)
}

// Validate checks the global options.
func (c *Config) Validate() error {
	switch OutputFormat(c.OutputFormat) {
	case OutputFormatText, OutputFormatJSON:
	default:
		return fmt.Errorf("unknown output format: %s", c.OutputFormat)
	}
	_, err := c.ResolveField()
	return err
}

// Logger returns a debug logger on w when verbose, otherwise a no-op.
func (c *Config) Logger(w io.Writer) logging.Logger {
	if !c.Verbose {
		return logging.Nop()
	}
	return logging.NewSlogAdapter(&logging.SlogConfig{
		Level:  logging.LevelDebug,
		Format: "text",
		Output: w,
	})
}

// newViper creates the viper instance that layers flags over QUORUM_*
// environment variables over the optional config file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// load binds the command's flags and fills the global configuration.
func (a *app) load(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	a.config.ConfigFile = a.v.GetString("config")
	a.config.Field = a.v.GetString("field")
	a.config.OutputFormat = a.v.GetString("output")
	a.config.Verbose = a.v.GetBool("verbose")

	return a.config.Validate()
}
