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
	"context"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-quorum/pkg/coordinator"
)

// DefaultEndpoints are the three local custodians started by
// 'custodian 50051', 'custodian 50052' and 'custodian 50053'.
var DefaultEndpoints = []string{
	"127.0.0.1:50051",
	"127.0.0.1:50052",
	"127.0.0.1:50053",
}

func (a *app) newCeremonyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ceremony",
		Short: "Distribute a random secret to custodians and verify recovery",
		Long: `Generate a random secret, split it, store share i on endpoint i,
then retrieve threshold shares and check the recovered secret matches.

--shares defaults to the number of endpoints. No deadline applies unless
--timeout is set.`,
		Example: `  quorum ceremony --endpoint 10.0.0.1:50051 --endpoint 10.0.0.2:50051 \
    --endpoint 10.0.0.3:50051 --threshold 2 --ceremony-id genesis`,
		Args: cobra.NoArgs,
		RunE: a.runCeremony,
	}

	cmd.Flags().StringSliceP("endpoint", "e", DefaultEndpoints, "custodian address (repeatable)")
	cmd.Flags().IntP("threshold", "t", defaultThreshold, "shares required to recover the secret")
	cmd.Flags().IntP("shares", "n", 0, "total shares to distribute (default: number of endpoints)")
	cmd.Flags().String("ceremony-id", "", "ceremony identifier (random UUID when empty)")
	cmd.Flags().Duration("timeout", 0, "overall ceremony deadline (0 waits indefinitely)")

	return cmd
}

func (a *app) runCeremony(cmd *cobra.Command, args []string) error {
	endpoints := a.v.GetStringSlice("endpoint")
	total := a.v.GetInt("shares")
	if total == 0 {
		total = len(endpoints)
	}

	coord, err := coordinator.New(&coordinator.Config{
		Endpoints:   endpoints,
		Threshold:   a.v.GetInt("threshold"),
		TotalShares: total,
		CeremonyID:  a.v.GetString("ceremony-id"),
		Field:       a.config.Field,
		Logger:      a.config.Logger(cmd.ErrOrStderr()),
	})
	if err != nil {
		return err
	}
	a.printVerbose(cmd, "running ceremony %s across %d custodians", coord.CeremonyID(), total)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := a.v.GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	report, runErr := coord.Run(ctx)
	if report != nil {
		if err := a.printer(cmd).PrintReport(report); err != nil {
			return err
		}
	}
	return runErr
}
