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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
)

var testFields = []field.Field{field.Secp256k1, field.Ed25519, field.BN254}

// TestNewShamir tests Shamir instance creation with various configurations.
func TestNewShamir(t *testing.T) {
	tests := []struct {
		name      string
		config    *ShareConfig
		wantError error
	}{
		{
			name:   "valid configuration",
			config: &ShareConfig{Threshold: 3, TotalShares: 5},
		},
		{
			name:   "threshold equals total shares",
			config: &ShareConfig{Threshold: 5, TotalShares: 5},
		},
		{
			name:   "minimum valid configuration",
			config: &ShareConfig{Threshold: 2, TotalShares: 2},
		},
		{
			name:   "maximum valid configuration",
			config: &ShareConfig{Threshold: 2, TotalShares: MaxShares},
		},
		{
			name:      "threshold of one",
			config:    &ShareConfig{Threshold: 1, TotalShares: 5},
			wantError: ErrInvalidThreshold,
		},
		{
			name:      "zero threshold",
			config:    &ShareConfig{Threshold: 0, TotalShares: 5},
			wantError: ErrInvalidThreshold,
		},
		{
			name:      "threshold greater than total",
			config:    &ShareConfig{Threshold: 6, TotalShares: 5},
			wantError: ErrInvalidThreshold,
		},
		{
			name:      "too many shares",
			config:    &ShareConfig{Threshold: 2, TotalShares: MaxShares + 1},
			wantError: ErrInvalidThreshold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewShamir(tt.config)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, field.Default().Name(), s.Field().Name())
			assert.Equal(t, tt.config.Threshold, s.Threshold())
		})
	}

	_, err := NewShamir(nil)
	assert.Error(t, err)
}

func TestSplitSecret(t *testing.T) {
	f := field.Secp256k1
	secret := f.FromUint64(123456789)

	shares, err := SplitSecret(secret, 3, 5)
	require.NoError(t, err)
	require.Len(t, shares, 5)

	for i, share := range shares {
		assert.True(t, share.X.Equal(f.FromUint64(uint64(i+1))), "share %d has x = %s", i, share.X)
	}

	recovered, err := RecoverSecret(shares[0:3], 3)
	require.NoError(t, err)
	assert.True(t, recovered.Equal(secret))

	recovered, err = RecoverSecret(shares[2:5], 3)
	require.NoError(t, err)
	assert.True(t, recovered.Equal(secret))

	recovered, err = RecoverSecret(shares, 3)
	require.NoError(t, err)
	assert.True(t, recovered.Equal(secret))
}

func TestSplitSecretInvalidThreshold(t *testing.T) {
	secret := field.Secp256k1.FromUint64(1)

	tests := []struct {
		name      string
		threshold int
		total     int
	}{
		{name: "threshold below two", threshold: 1, total: 5},
		{name: "threshold above total", threshold: 6, total: 5},
		{name: "negative threshold", threshold: -1, total: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SplitSecret(secret, tt.threshold, tt.total)
			assert.ErrorIs(t, err, ErrInvalidThreshold)
		})
	}

	_, err := SplitSecret(nil, 2, 3)
	assert.Error(t, err)
}

// TestAllSubsets recovers the secret from every threshold-sized subset.
func TestAllSubsets(t *testing.T) {
	configs := []struct{ threshold, total int }{
		{2, 2}, {2, 3}, {3, 5}, {4, 6}, {5, 7},
	}

	for _, f := range testFields {
		for _, cfg := range configs {
			secret, err := f.Random(nil)
			require.NoError(t, err)

			shares, err := SplitSecret(secret, cfg.threshold, cfg.total)
			require.NoError(t, err)

			count := 0
			forEachSubset(cfg.total, cfg.threshold, func(idx []int) {
				subset := make([]Share, len(idx))
				for i, j := range idx {
					subset[i] = shares[j]
				}
				recovered, err := RecoverSecret(subset, cfg.threshold)
				require.NoError(t, err)
				require.True(t, recovered.Equal(secret), "%s %d-of-%d subset %v", f.Name(), cfg.threshold, cfg.total, idx)
				count++
			})
			assert.Equal(t, binomial(cfg.total, cfg.threshold), count)
		}
	}
}

// TestBelowThresholdIsAmbiguous shows that threshold-1 shares are
// consistent with a different secret: a forged final share built from an
// arbitrary candidate recovers that candidate.
func TestBelowThresholdIsAmbiguous(t *testing.T) {
	for _, f := range testFields {
		t.Run(f.Name(), func(t *testing.T) {
			const threshold, total = 3, 5

			secret := f.FromUint64(1000)
			shares, err := SplitSecret(secret, threshold, total)
			require.NoError(t, err)

			known := shares[:threshold-1]
			candidate := f.FromUint64(2000)

			anchor := append([]Share{{X: f.Zero(), Y: candidate}}, known...)
			forgedX := f.FromUint64(total)
			forged := Share{X: forgedX, Y: interpolateAt(t, anchor, forgedX)}

			fake, err := RecoverSecret(append(append([]Share{}, known...), forged), threshold)
			require.NoError(t, err)
			assert.True(t, fake.Equal(candidate))

			genuine, err := RecoverSecret(append(append([]Share{}, known...), shares[total-1]), threshold)
			require.NoError(t, err)
			assert.True(t, genuine.Equal(secret))
			assert.False(t, genuine.Equal(fake))
		})
	}
}

func TestLagrangeInterpolate(t *testing.T) {
	f := field.Secp256k1

	// f(x) = 42 + 7x
	points := []Share{
		{X: f.FromUint64(1), Y: f.FromUint64(49)},
		{X: f.FromUint64(2), Y: f.FromUint64(56)},
	}
	got, err := LagrangeInterpolate(points)
	require.NoError(t, err)
	assert.True(t, got.Equal(f.FromUint64(42)), "got %s", got)

	points[1].X = f.FromUint64(1)
	_, err = LagrangeInterpolate(points)
	assert.ErrorIs(t, err, ErrDuplicateShareIndex)

	_, err = LagrangeInterpolate(nil)
	assert.ErrorIs(t, err, ErrInsufficientShares)

	mixed := []Share{
		{X: f.FromUint64(1), Y: f.FromUint64(49)},
		{X: field.Ed25519.FromUint64(2), Y: field.Ed25519.FromUint64(56)},
	}
	_, err = LagrangeInterpolate(mixed)
	assert.ErrorIs(t, err, ErrFieldMismatch)
}

func TestRecoverSecretErrors(t *testing.T) {
	f := field.Secp256k1
	secret := f.FromUint64(99)
	shares, err := SplitSecret(secret, 3, 5)
	require.NoError(t, err)

	t.Run("fewer than originating threshold", func(t *testing.T) {
		_, err := RecoverSecret(shares[:2], 3)
		assert.ErrorIs(t, err, ErrInsufficientShares)
	})

	t.Run("threshold below two", func(t *testing.T) {
		_, err := RecoverSecret(shares, 1)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	})

	t.Run("duplicate x", func(t *testing.T) {
		dup := []Share{shares[0], shares[1], shares[0]}
		_, err := RecoverSecret(dup, 3)
		assert.ErrorIs(t, err, ErrDuplicateShareIndex)
	})

	t.Run("zero x", func(t *testing.T) {
		bad := []Share{{X: f.Zero(), Y: secret}, shares[1], shares[2]}
		_, err := RecoverSecret(bad, 3)
		assert.ErrorIs(t, err, ErrInvalidShareIndex)
	})

	t.Run("mixed fields", func(t *testing.T) {
		other := Share{X: field.BN254.FromUint64(9), Y: field.BN254.FromUint64(9)}
		_, err := RecoverSecret([]Share{shares[0], shares[1], other}, 3)
		assert.ErrorIs(t, err, ErrFieldMismatch)
	})

	t.Run("wrong shares recover a different value", func(t *testing.T) {
		tampered := []Share{shares[0], shares[1], {X: shares[2].X, Y: shares[2].Y.Add(f.One())}}
		got, err := RecoverSecret(tampered, 3)
		require.NoError(t, err)
		assert.False(t, got.Equal(secret))
	})
}

func TestShamirFieldMismatch(t *testing.T) {
	s, err := NewShamir(&ShareConfig{Threshold: 2, TotalShares: 3, Field: field.Ed25519})
	require.NoError(t, err)

	_, err = s.Split(field.Secp256k1.One())
	assert.ErrorIs(t, err, ErrFieldMismatch)

	shares, err := s.Split(field.Ed25519.FromUint64(5))
	require.NoError(t, err)
	assert.NoError(t, s.Verify(shares))

	foreign := Share{X: field.Secp256k1.FromUint64(4), Y: field.Secp256k1.One()}
	assert.ErrorIs(t, s.Verify(append(shares, foreign)), ErrFieldMismatch)
	assert.Error(t, s.Verify([]Share{{X: shares[0].X}}))
}

func TestSplitDeterministicRand(t *testing.T) {
	f := field.Secp256k1
	seed := bytes.Repeat([]byte{0x42}, 64)

	a, err := NewShamir(&ShareConfig{Threshold: 3, TotalShares: 4, Rand: bytes.NewReader(seed)})
	require.NoError(t, err)
	b, err := NewShamir(&ShareConfig{Threshold: 3, TotalShares: 4, Rand: bytes.NewReader(seed)})
	require.NoError(t, err)

	sa, err := a.Split(f.FromUint64(8))
	require.NoError(t, err)
	sb, err := b.Split(f.FromUint64(8))
	require.NoError(t, err)
	for i := range sa {
		assert.True(t, sa[i].Y.Equal(sb[i].Y))
	}

	// Exhausted randomness is reported, not ignored.
	c, err := NewShamir(&ShareConfig{Threshold: 3, TotalShares: 4, Rand: bytes.NewReader(nil)})
	require.NoError(t, err)
	_, err = c.Split(f.One())
	assert.Error(t, err)
}

func TestShareEncoding(t *testing.T) {
	f := field.Secp256k1
	share := Share{X: f.FromUint64(3), Y: f.FromUint64(0xabcdef)}

	x, y := share.Encode()
	decoded, err := DecodeShare(f, x, y, true)
	require.NoError(t, err)
	assert.True(t, decoded.X.Equal(share.X))
	assert.True(t, decoded.Y.Equal(share.Y))

	parsed, err := ParseShare(f, "3:abcdef")
	require.NoError(t, err)
	assert.True(t, parsed.Y.Equal(share.Y))

	parsed, err = ParseShare(f, share.String())
	require.NoError(t, err)
	assert.True(t, parsed.X.Equal(share.X))

	_, err = ParseShare(f, "no-separator")
	assert.Error(t, err)
	_, err = ParseShare(f, "zz:01")
	assert.Error(t, err)

	over := bytes.Repeat([]byte{0xff}, field.ScalarSize)
	_, err = DecodeShare(f, x, over, true)
	assert.ErrorIs(t, err, field.ErrMalformedScalar)
	_, err = DecodeShare(f, x, over, false)
	assert.NoError(t, err)
	_, err = DecodeShare(f, x[:8], y, false)
	assert.ErrorIs(t, err, field.ErrInvalidScalarLength)

	s, err := ParseScalar(f, "0x2a")
	require.NoError(t, err)
	assert.True(t, s.Equal(f.FromUint64(42)))
}

func BenchmarkSplit(b *testing.B) {
	secret := field.Secp256k1.FromUint64(7)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := SplitSecret(secret, 3, 5); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRecover(b *testing.B) {
	shares, err := SplitSecret(field.Secp256k1.FromUint64(7), 3, 5)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := RecoverSecret(shares[:3], 3); err != nil {
			b.Fatal(err)
		}
	}
}

// interpolateAt evaluates the polynomial through points at x.
func interpolateAt(t *testing.T, points []Share, x field.Scalar) field.Scalar {
	t.Helper()
	f := x.Field()
	result := f.Zero()
	for i := range points {
		num, den := f.One(), f.One()
		for j := range points {
			if i == j {
				continue
			}
			num = num.Mul(x.Sub(points[j].X))
			den = den.Mul(points[i].X.Sub(points[j].X))
		}
		inv, err := den.Invert()
		require.NoError(t, err)
		result = result.Add(points[i].Y.Mul(num).Mul(inv))
	}
	return result
}

// forEachSubset calls fn with every k-element subset of 0..n-1 in
// lexicographic order.
func forEachSubset(n, k int, fn func([]int)) {
	idx := make([]int, k)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == k {
			fn(append([]int(nil), idx...))
			return
		}
		for i := start; i < n; i++ {
			idx[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
}

func binomial(n, k int) int {
	r := 1
	for i := 1; i <= k; i++ {
		r = r * (n - k + i) / i
	}
	return r
}
