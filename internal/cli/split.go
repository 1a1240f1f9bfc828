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

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/secretsharing"
)

const (
	defaultThreshold   = 2
	defaultTotalShares = 3
)

func (a *app) newSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a secret into threshold shares",
		Long: `Split a secret into shares so that any threshold of them recover it.

Without --secret a random secret is generated. Shares are printed as
x:y hex pairs accepted by 'quorum recover --share'.`,
		Example: `  quorum split --threshold 2 --shares 3
  quorum split --field ed25519 --secret 2a -o json`,
		Args: cobra.NoArgs,
		RunE: a.runSplit,
	}

	cmd.Flags().IntP("threshold", "t", defaultThreshold, "shares required to recover the secret")
	cmd.Flags().IntP("shares", "n", defaultTotalShares, "total shares to produce")
	cmd.Flags().String("secret", "", "secret as hex (random when omitted)")

	return cmd
}

func (a *app) runSplit(cmd *cobra.Command, args []string) error {
	f, err := a.config.ResolveField()
	if err != nil {
		return err
	}
	threshold := a.v.GetInt("threshold")
	total := a.v.GetInt("shares")

	var secret field.Scalar
	if raw := a.v.GetString("secret"); raw != "" {
		if secret, err = secretsharing.ParseScalar(f, raw); err != nil {
			return fmt.Errorf("invalid secret: %w", err)
		}
	} else {
		if secret, err = f.Random(nil); err != nil {
			return fmt.Errorf("failed to generate secret: %w", err)
		}
		a.printVerbose(cmd, "generated random %s secret", f.Name())
	}

	shamir, err := secretsharing.NewShamir(&secretsharing.ShareConfig{
		Threshold:   threshold,
		TotalShares: total,
		Field:       f,
	})
	if err != nil {
		return err
	}

	shares, err := shamir.Split(secret)
	if err != nil {
		return err
	}
	a.printVerbose(cmd, "split into %d shares with threshold %d", len(shares), threshold)

	result := &SplitResult{
		Field:       f.Name(),
		Threshold:   threshold,
		TotalShares: total,
		Secret:      secret.String(),
		Shares:      make([]string, len(shares)),
	}
	for i, share := range shares {
		result.Shares[i] = share.String()
	}

	return a.printer(cmd).PrintSplit(result)
}
