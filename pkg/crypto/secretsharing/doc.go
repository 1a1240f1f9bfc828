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

// Package secretsharing implements Shamir's Secret Sharing Scheme over the
// prime-order scalar fields in package field.
//
// A secret scalar s is split into N shares such that any T of them
// reconstruct s exactly, while T-1 or fewer shares are consistent with
// every possible secret.
//
// # Mathematical Foundation
//
// The secret is the constant term of a random polynomial of degree T-1:
//
//	p(x) = s + a1*x + a2*x^2 + ... + a(T-1)*x^(T-1)
//
// The coefficients a1..a(T-1) are drawn uniformly from the field and share
// i is the point (i, p(i)) for i = 1..N. Recovery evaluates the
// interpolating polynomial at x = 0 with Lagrange's formula:
//
//	s = sum_i y_i * prod_{j != i} (-x_j) / (x_i - x_j)
//
// # Usage Example
//
//	shamir, err := secretsharing.NewShamir(&secretsharing.ShareConfig{
//	    Threshold:   3,
//	    TotalShares: 5,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	secret, _ := shamir.Field().Random(nil)
//	shares, err := shamir.Split(secret)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Later, reconstruct with any 3 shares
//	recovered, err := shamir.Combine(shares[1:4])
//
// # Constraints
//
//   - 2 <= T <= N <= 65535
//   - Share x coordinates are nonzero and distinct
//   - Recovery rejects fewer than T shares with ErrInsufficientShares
//   - Every failure is a returned error; nothing in this package panics
//     on share input
//
// # References
//
// - Shamir, Adi (1979). "How to Share a Secret"
package secretsharing
