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

// Command custodian runs a single custodian node.
//
//	custodian [port] [--port|-p N] [--config file]
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/jeremyhahn/go-quorum/internal/config"
	"github.com/jeremyhahn/go-quorum/internal/server"
)

var (
	// Version information (set during build)
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// options holds the parsed command line.
type options struct {
	configPath  string
	port        int
	portSet     bool
	showVersion bool
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if opts.showVersion {
		fmt.Printf("go-quorum custodian\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Git Commit: %s\n", commit)
		fmt.Printf("  Built:      %s\n", date)
		os.Exit(0)
	}

	// Check for config file override via environment
	if envConfig := os.Getenv("QUORUM_CONFIG"); envConfig != "" && opts.configPath == "" {
		opts.configPath = envConfig
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	srv, err := server.New(cfg)
	if err != nil {
		slog.Error("Failed to create server", slog.Any("error", err))
		os.Exit(1)
	}

	if err := srv.Run(server.SetupSignalHandler()); err != nil {
		slog.Error("Custodian node stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

// parseArgs reads the listen port from --port/-p or a single positional
// argument. The flag wins over the positional form. A missing or
// unparsable port leaves portSet false so the configured port applies.
// Unknown flags are ignored.
func parseArgs(args []string) (*options, error) {
	fs := pflag.NewFlagSet("custodian", pflag.ContinueOnError)
	fs.ParseErrorsAllowlist.UnknownFlags = true
	configPath := fs.String("config", "", "Path to configuration file")
	portFlag := fs.StringP("port", "p", "", "Port to listen on (default 50051)")
	showVersion := fs.Bool("version", false, "Show version information")

	if n := len(args); n > 0 && (args[n-1] == "-p" || args[n-1] == "--port") {
		slog.Warn("Ignoring port flag without a value", "flag", args[n-1], "default", config.DefaultPort)
		args = args[:n-1]
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts := &options{
		configPath:  *configPath,
		showVersion: *showVersion,
	}

	raw := *portFlag
	if !fs.Changed("port") && fs.NArg() > 0 {
		raw = fs.Arg(0)
	}
	if port, ok := parsePort(raw); ok {
		opts.port = port
		opts.portSet = true
	}

	return opts, nil
}

// parsePort accepts a decimal port in 1..65535.
func parsePort(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		slog.Warn("Ignoring invalid port", "value", raw, "default", config.DefaultPort)
		return 0, false
	}
	return port, true
}

// loadConfig loads the config file (or defaults) and applies the command
// line port, re-deriving the node id when it was left to default.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.portSet && opts.port != cfg.Server.Port {
		if cfg.Server.NodeID == config.DefaultNodeID(cfg.Server.Port) {
			cfg.Server.NodeID = config.DefaultNodeID(opts.port)
		}
		cfg.Server.Port = opts.port
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
