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
	"errors"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-quorum/pkg/crypto/secretsharing"
)

func (a *app) newRecoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Recover a secret from threshold shares",
		Long: `Recover a secret from shares printed by 'quorum split'.

At least --threshold shares must be given and every share must be in the
selected field.`,
		Example: `  quorum recover --threshold 2 --share 01:9f3c... --share 03:77a1...`,
		Args:    cobra.NoArgs,
		RunE:    a.runRecover,
	}

	cmd.Flags().IntP("threshold", "t", defaultThreshold, "threshold the shares were split with")
	cmd.Flags().StringSliceP("share", "s", nil, "share as x:y hex (repeatable)")

	return cmd
}

func (a *app) runRecover(cmd *cobra.Command, args []string) error {
	f, err := a.config.ResolveField()
	if err != nil {
		return err
	}
	threshold := a.v.GetInt("threshold")

	raw := a.v.GetStringSlice("share")
	if len(raw) == 0 {
		return errors.New("at least one --share is required")
	}

	shares := make([]secretsharing.Share, 0, len(raw))
	for _, s := range raw {
		share, err := secretsharing.ParseShare(f, s)
		if err != nil {
			return err
		}
		shares = append(shares, share)
	}
	a.printVerbose(cmd, "recovering from %d %s shares with threshold %d", len(shares), f.Name(), threshold)

	secret, err := secretsharing.RecoverSecret(shares, threshold)
	if err != nil {
		return err
	}

	return a.printer(cmd).PrintRecover(&RecoverResult{
		Field:     f.Name(),
		Threshold: threshold,
		SharesIn:  len(shares),
		Secret:    secret.String(),
	})
}
