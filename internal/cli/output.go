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
	"encoding/json"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-quorum/pkg/coordinator"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// SplitResult is the output of the split command.
type SplitResult struct {
	Field       string   `json:"field"`
	Threshold   int      `json:"threshold"`
	TotalShares int      `json:"total_shares"`
	Secret      string   `json:"secret"`
	Shares      []string `json:"shares"`
}

// RecoverResult is the output of the recover command.
type RecoverResult struct {
	Field     string `json:"field"`
	Threshold int    `json:"threshold"`
	SharesIn  int    `json:"shares_used"`
	Secret    string `json:"secret"`
}

// VersionInfo is the output of the version command.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintSplit prints a secret and its shares
func (p *Printer) PrintSplit(r *SplitResult) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(r)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Field:     %s\n", r.Field)
		fmt.Fprintf(p.writer, "Threshold: %d of %d\n", r.Threshold, r.TotalShares)
		fmt.Fprintf(p.writer, "Secret:    %s\n", r.Secret)
		fmt.Fprintln(p.writer, "Shares:")
		for i, share := range r.Shares {
			fmt.Fprintf(p.writer, "  %d: %s\n", i+1, share)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintRecover prints a recovered secret
func (p *Printer) PrintRecover(r *RecoverResult) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(r)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Recovered secret: %s\n", r.Secret)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintReport prints a ceremony report
func (p *Printer) PrintReport(r *coordinator.Report) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(r)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Ceremony:  %s\n", r.CeremonyID)
		fmt.Fprintf(p.writer, "Field:     %s\n", r.Field)
		fmt.Fprintf(p.writer, "Threshold: %d of %d\n", r.Threshold, r.TotalShares)
		fmt.Fprintln(p.writer, "Nodes:")
		for _, n := range r.Nodes {
			if n.Error != "" {
				fmt.Fprintf(p.writer, "  [%d] %-24s %-10s %s\n", n.Index, n.Endpoint, n.State, n.Error)
				continue
			}
			fmt.Fprintf(p.writer, "  [%d] %-24s %s\n", n.Index, n.Endpoint, n.State)
		}
		if r.Secret != "" {
			fmt.Fprintf(p.writer, "Secret:    %s\n", r.Secret)
		}
		if r.Recovered != "" {
			fmt.Fprintf(p.writer, "Recovered: %s\n", r.Recovered)
		}
		if r.Verified {
			fmt.Fprintln(p.writer, "Result:    verified, recovered secret matches the original")
		} else {
			fmt.Fprintln(p.writer, "Result:    not verified")
		}
		if r.Duration != "" {
			fmt.Fprintf(p.writer, "Duration:  %s\n", r.Duration)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintVersion prints build information
func (p *Printer) PrintVersion(v *VersionInfo) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(v)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "quorum version %s\n", v.Version)
		fmt.Fprintf(p.writer, "Git commit: %s\n", v.Commit)
		fmt.Fprintf(p.writer, "Build date: %s\n", v.BuildDate)
		fmt.Fprintf(p.writer, "Go version: %s\n", v.GoVersion)
		fmt.Fprintf(p.writer, "OS/Arch: %s/%s\n", v.OS, v.Arch)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
