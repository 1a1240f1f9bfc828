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

package secretsharing

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
	"github.com/jeremyhahn/go-quorum/pkg/crypto/polynomial"
)

// MaxShares is the largest number of shares a single split may produce.
// Share indexes travel as uint32 on the wire; the bound keeps ceremonies
// to a size that can be interpolated in reasonable time.
const MaxShares = 65535

var (
	// ErrInvalidThreshold is returned unless 2 <= threshold <= total shares.
	ErrInvalidThreshold = errors.New("secretsharing: invalid threshold")

	// ErrInsufficientShares is returned when fewer shares than the threshold
	// are supplied for recovery.
	ErrInsufficientShares = errors.New("secretsharing: insufficient shares")

	// ErrDuplicateShareIndex is returned when two shares have the same x.
	ErrDuplicateShareIndex = errors.New("secretsharing: duplicate share index")

	// ErrInvalidShareIndex is returned for a share evaluated at x = 0, which
	// would be the secret itself.
	ErrInvalidShareIndex = errors.New("secretsharing: invalid share index")

	// ErrFieldMismatch is returned when shares or the secret belong to
	// different fields.
	ErrFieldMismatch = errors.New("secretsharing: field mismatch")
)

// ShareConfig configures secret sharing parameters.
type ShareConfig struct {
	Threshold   int         // T - minimum shares needed to reconstruct
	TotalShares int         // N - total shares to create
	Field       field.Field // nil selects field.Default()
	Rand        io.Reader   // nil selects crypto/rand
}

// Share is one point (X, Y) on the sharing polynomial.
type Share struct {
	X field.Scalar
	Y field.Scalar
}

// Shamir implements Shamir's Secret Sharing Scheme over a prime field.
type Shamir struct {
	config *ShareConfig
	field  field.Field
}

// NewShamir creates a new Shamir instance with the given configuration.
// Returns an error if the configuration is invalid.
func NewShamir(config *ShareConfig) (*Shamir, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := validateThreshold(config.Threshold, config.TotalShares); err != nil {
		return nil, err
	}

	f := config.Field
	if f == nil {
		f = field.Default()
	}

	return &Shamir{
		config: config,
		field:  f,
	}, nil
}

// Field returns the field shares are computed in.
func (s *Shamir) Field() field.Field {
	return s.field
}

// Threshold returns the number of shares required by Combine.
func (s *Shamir) Threshold() int {
	return s.config.Threshold
}

// Split divides a secret into TotalShares shares, any Threshold of which
// reconstruct it. Shares are evaluated at x = 1..TotalShares in order.
func (s *Shamir) Split(secret field.Scalar) ([]Share, error) {
	if secret == nil {
		return nil, fmt.Errorf("secret cannot be nil")
	}
	if secret.Field().Name() != s.field.Name() {
		return nil, fmt.Errorf("%w: secret is in %s, scheme uses %s",
			ErrFieldMismatch, secret.Field().Name(), s.field.Name())
	}

	poly, err := polynomial.Random(secret, s.config.Threshold, s.config.Rand)
	if err != nil {
		return nil, fmt.Errorf("failed to generate polynomial: %w", err)
	}
	defer poly.Zeroize()

	shares := make([]Share, s.config.TotalShares)
	for i := range shares {
		x := s.field.FromUint64(uint64(i + 1))
		shares[i] = Share{X: x, Y: poly.Evaluate(x)}
	}
	return shares, nil
}

// Combine reconstructs the secret from Threshold or more shares. Every
// supplied share takes part in the interpolation.
func (s *Shamir) Combine(shares []Share) (field.Scalar, error) {
	if len(shares) < s.config.Threshold {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrInsufficientShares, s.config.Threshold, len(shares))
	}
	if err := s.Verify(shares); err != nil {
		return nil, fmt.Errorf("share verification failed: %w", err)
	}
	return LagrangeInterpolate(shares)
}

// Verify performs structural checks on shares: every coordinate is set,
// belongs to the scheme's field, x is nonzero and no x repeats.
func (s *Shamir) Verify(shares []Share) error {
	seen := make(map[string]int, len(shares))
	for i, share := range shares {
		if share.X == nil || share.Y == nil {
			return fmt.Errorf("share %d is missing a coordinate", i)
		}
		if share.X.Field().Name() != s.field.Name() || share.Y.Field().Name() != s.field.Name() {
			return fmt.Errorf("%w: share %d is not in %s", ErrFieldMismatch, i, s.field.Name())
		}
		if share.X.IsZero() {
			return fmt.Errorf("%w: share %d has x = 0", ErrInvalidShareIndex, i)
		}
		key := share.X.String()
		if j, ok := seen[key]; ok {
			return fmt.Errorf("%w: shares %d and %d both have x = %s", ErrDuplicateShareIndex, j, i, key)
		}
		seen[key] = i
	}
	return nil
}

// SplitSecret splits secret into totalShares shares with the given
// threshold, in the secret's field, using crypto/rand.
func SplitSecret(secret field.Scalar, threshold, totalShares int) ([]Share, error) {
	if secret == nil {
		return nil, fmt.Errorf("secret cannot be nil")
	}
	s, err := NewShamir(&ShareConfig{
		Threshold:   threshold,
		TotalShares: totalShares,
		Field:       secret.Field(),
	})
	if err != nil {
		return nil, err
	}
	return s.Split(secret)
}

// RecoverSecret reconstructs the secret from at least threshold shares.
// The field is taken from the shares themselves.
func RecoverSecret(shares []Share, threshold int) (field.Scalar, error) {
	if threshold < 2 {
		return nil, fmt.Errorf("%w: threshold must be at least 2, got %d", ErrInvalidThreshold, threshold)
	}
	if len(shares) < threshold {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrInsufficientShares, threshold, len(shares))
	}
	if shares[0].X == nil {
		return nil, fmt.Errorf("share 0 is missing a coordinate")
	}

	s := &Shamir{
		config: &ShareConfig{Threshold: threshold, TotalShares: len(shares)},
		field:  shares[0].X.Field(),
	}
	return s.Combine(shares)
}

// LagrangeInterpolate returns f(0) for the unique polynomial of degree
// len(points)-1 through points:
//
//	f(0) = sum_i y_i * prod_{j != i} (-x_j) / (x_i - x_j)
//
// Two points with the same x make a denominator zero, which is reported as
// ErrDuplicateShareIndex.
func LagrangeInterpolate(points []Share) (field.Scalar, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points to interpolate", ErrInsufficientShares)
	}
	for i, p := range points {
		if p.X == nil || p.Y == nil {
			return nil, fmt.Errorf("point %d is missing a coordinate", i)
		}
		if !field.SameField(points[0].X, p.X) || !field.SameField(points[0].X, p.Y) {
			return nil, fmt.Errorf("%w: point %d", ErrFieldMismatch, i)
		}
	}
	f := points[0].X.Field()

	result := f.Zero()
	for i := range points {
		num := f.One()
		den := f.One()
		for j := range points {
			if i == j {
				continue
			}
			num = num.Mul(points[j].X.Negate())
			den = den.Mul(points[i].X.Sub(points[j].X))
		}

		inv, err := den.Invert()
		if errors.Is(err, field.ErrZeroInverse) {
			return nil, fmt.Errorf("%w: x = %s", ErrDuplicateShareIndex, points[i].X)
		}
		if err != nil {
			return nil, err
		}

		result = result.Add(points[i].Y.Mul(num).Mul(inv))
	}
	return result, nil
}

func validateThreshold(threshold, totalShares int) error {
	if threshold < 2 {
		return fmt.Errorf("%w: threshold must be at least 2, got %d", ErrInvalidThreshold, threshold)
	}
	if totalShares < threshold {
		return fmt.Errorf("%w: total shares (%d) must be >= threshold (%d)", ErrInvalidThreshold, totalShares, threshold)
	}
	if totalShares > MaxShares {
		return fmt.Errorf("%w: total shares must be <= %d, got %d", ErrInvalidThreshold, MaxShares, totalShares)
	}
	return nil
}
