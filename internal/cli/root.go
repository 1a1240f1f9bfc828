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

// Package cli implements the quorum operator command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
)

// app carries state shared by every command of one invocation.
type app struct {
	config *Config
	v      *viper.Viper
}

// NewRootCommand builds the quorum command tree.
func NewRootCommand() *cobra.Command {
	a := &app{
		config: NewConfig(),
		v:      newViper(),
	}

	rootCmd := &cobra.Command{
		Use:   "quorum",
		Short: "go-quorum CLI - Shamir secret sharing across custodian nodes",
		Long: `go-quorum splits secrets into threshold shares, recovers them,
and runs distribution ceremonies against custodian nodes.

Supported fields:
  - secp256k1 (default)
  - ed25519
  - bn254

Every flag may also be set through a QUORUM_* environment variable,
for example QUORUM_FIELD=ed25519 or QUORUM_CEREMONY_ID=genesis.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "",
		"config file with flag values (YAML)")
	rootCmd.PersistentFlags().String("field", a.config.Field,
		fmt.Sprintf("scalar field %v", field.Names()))
	rootCmd.PersistentFlags().StringP("output", "o", a.config.OutputFormat,
		"output format (text, json)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"verbose output")

	rootCmd.AddCommand(a.newSplitCmd())
	rootCmd.AddCommand(a.newRecoverCmd())
	rootCmd.AddCommand(a.newCeremonyCmd())
	rootCmd.AddCommand(a.newVersionCmd())

	return rootCmd
}

// Execute runs the root command with os.Args, printing any error to
// stderr in the selected output format.
func Execute() error {
	rootCmd := NewRootCommand()
	err := rootCmd.Execute()
	if err != nil {
		format, _ := rootCmd.PersistentFlags().GetString("output")
		if format != string(OutputFormatJSON) {
			format = string(OutputFormatText)
		}
		_ = NewPrinter(format, os.Stderr).PrintError(err)
	}
	return err
}

// printer returns a printer for the command's stdout.
func (a *app) printer(cmd *cobra.Command) *Printer {
	return NewPrinter(a.config.OutputFormat, cmd.OutOrStdout())
}

// printVerbose prints a message if verbose mode is enabled
func (a *app) printVerbose(cmd *cobra.Command, format string, args ...interface{}) {
	if a.config.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "[VERBOSE] "+format+"\n", args...)
	}
}
