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

// Package field implements arithmetic in the prime-order scalar fields of the
// elliptic curve groups supported by go-quorum.
//
// Every field exposes the same immutable Scalar API: arithmetic methods
// return a new Scalar and never modify the receiver or the argument. Scalars
// are encoded on the wire as fixed-width 32-byte big-endian integers.
//
// Three fields are available:
//
//   - secp256k1 (default): the group order n of secp256k1, backed by btcec
//   - ed25519: the prime-order subgroup order l of edwards25519
//   - bn254: the BN254 scalar field Fr, backed by gnark-crypto
//
// Inversion of zero is reported with ErrZeroInverse instead of panicking, so
// callers such as Lagrange interpolation can surface a typed failure.
package field

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sort"
)

// ScalarSize is the length in bytes of an encoded scalar.
const ScalarSize = 32

var (
	// ErrZeroInverse is returned when inverting the zero element.
	ErrZeroInverse = errors.New("field: zero has no multiplicative inverse")

	// ErrMalformedScalar is returned by strict decoding when the encoded
	// integer is not less than the field order.
	ErrMalformedScalar = errors.New("field: scalar is not less than the field order")

	// ErrInvalidScalarLength is returned when an encoding is not ScalarSize bytes.
	ErrInvalidScalarLength = errors.New("field: invalid scalar length")

	// ErrUnknownField is returned by Lookup for unsupported field names.
	ErrUnknownField = errors.New("field: unknown field")
)

// Scalar is an element of a prime field.
type Scalar interface {
	// Field returns the field this scalar belongs to.
	Field() Field
	// Add returns the receiver plus b.
	Add(b Scalar) Scalar
	// Sub returns the receiver minus b.
	Sub(b Scalar) Scalar
	// Mul returns the receiver times b.
	Mul(b Scalar) Scalar
	// Negate returns the additive inverse of the receiver.
	Negate() Scalar
	// Invert returns the multiplicative inverse of the receiver, or
	// ErrZeroInverse if the receiver is zero.
	Invert() (Scalar, error)
	// Equal reports whether the receiver and b are the same element.
	Equal(b Scalar) bool
	// IsZero reports whether the receiver is the additive identity.
	IsZero() bool
	// Bytes returns the 32-byte big-endian encoding.
	Bytes() []byte
	// String returns the hex encoding of Bytes.
	String() string
}

// Field is a factory for scalars of one prime field.
type Field interface {
	// Name returns the registry name of the field (e.g. "secp256k1").
	Name() string
	// Order returns a copy of the field modulus.
	Order() *big.Int
	// Zero returns the additive identity.
	Zero() Scalar
	// One returns the multiplicative identity.
	One() Scalar
	// FromUint64 returns v reduced into the field.
	FromUint64(v uint64) Scalar
	// FromBytes decodes a 32-byte big-endian integer, reducing it modulo
	// the field order. Any 32-byte input is accepted.
	FromBytes(b []byte) (Scalar, error)
	// FromCanonicalBytes decodes a 32-byte big-endian integer and rejects
	// values that are not less than the field order with ErrMalformedScalar.
	FromCanonicalBytes(b []byte) (Scalar, error)
	// Random returns a uniformly distributed scalar read from r.
	// A nil reader uses crypto/rand.
	Random(r io.Reader) (Scalar, error)
}

var registry = map[string]Field{
	secp256k1Name: Secp256k1,
	ed25519Name:   Ed25519,
	bn254Name:     BN254,
}

// Default returns the field used when none is configured (secp256k1).
func Default() Field {
	return Secp256k1
}

// Lookup returns the field registered under name. An empty name selects
// the default field.
func Lookup(name string) (Field, error) {
	if name == "" {
		return Default(), nil
	}
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Names returns the registered field names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SameField reports whether a and b belong to the same field.
func SameField(a, b Scalar) bool {
	return a.Field().Name() == b.Field().Name()
}

// uint64Bytes returns v as a 32-byte big-endian encoding.
func uint64Bytes(v uint64) []byte {
	buf := make([]byte, ScalarSize)
	binary.BigEndian.PutUint64(buf[ScalarSize-8:], v)
	return buf
}

// checkLength validates the length of an encoded scalar.
func checkLength(b []byte) error {
	if len(b) != ScalarSize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidScalarLength, ScalarSize, len(b))
	}
	return nil
}

// sampleCanonical draws uniform scalars by rejection sampling: the top byte
// is masked down to the bit length of the order, and candidates that do not
// decode canonically are discarded.
func sampleCanonical(f Field, r io.Reader) (Scalar, error) {
	if r == nil {
		r = rand.Reader
	}

	excess := ScalarSize*8 - f.Order().BitLen()
	mask := byte(0xff >> excess)

	buf := make([]byte, ScalarSize)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("failed to read random bytes: %w", err)
		}
		buf[0] &= mask

		s, err := f.FromCanonicalBytes(buf)
		if errors.Is(err, ErrMalformedScalar) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// mismatch panics when scalars from different fields are combined. Mixing
// fields is a programming error, never the result of decoding input.
func mismatch(op string, a, b Scalar) {
	panic(fmt.Sprintf("field: %s of %s scalar with %s scalar", op, a.Field().Name(), b.Field().Name()))
}
