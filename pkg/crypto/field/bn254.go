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

package field

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const bn254Name = "bn254"

// BN254 is the scalar field Fr of the BN254 pairing-friendly curve.
var BN254 Field = bn254Field{}

type bn254Field struct{}

func (bn254Field) Name() string { return bn254Name }

func (bn254Field) Order() *big.Int { return fr.Modulus() }

func (bn254Field) Zero() Scalar { return &bn254Scalar{} }

func (bn254Field) One() Scalar {
	s := &bn254Scalar{}
	s.v.SetOne()
	return s
}

func (bn254Field) FromUint64(v uint64) Scalar {
	s := &bn254Scalar{}
	s.v.SetUint64(v)
	return s
}

func (bn254Field) FromBytes(b []byte) (Scalar, error) {
	if err := checkLength(b); err != nil {
		return nil, err
	}
	s := &bn254Scalar{}
	s.v.SetBytes(b)
	return s, nil
}

func (bn254Field) FromCanonicalBytes(b []byte) (Scalar, error) {
	if err := checkLength(b); err != nil {
		return nil, err
	}
	s := &bn254Scalar{}
	if err := s.v.SetBytesCanonical(b); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedScalar, bn254Name)
	}
	return s, nil
}

func (f bn254Field) Random(r io.Reader) (Scalar, error) {
	return sampleCanonical(f, r)
}

// bn254Scalar wraps fr.Element (Montgomery form, always reduced).
type bn254Scalar struct {
	v fr.Element
}

func toBN254(op string, a, b Scalar) *bn254Scalar {
	s, ok := b.(*bn254Scalar)
	if !ok {
		mismatch(op, a, b)
	}
	return s
}

func (s *bn254Scalar) Field() Field { return BN254 }

func (s *bn254Scalar) Add(b Scalar) Scalar {
	o := toBN254("add", s, b)
	r := &bn254Scalar{}
	r.v.Add(&s.v, &o.v)
	return r
}

func (s *bn254Scalar) Sub(b Scalar) Scalar {
	o := toBN254("sub", s, b)
	r := &bn254Scalar{}
	r.v.Sub(&s.v, &o.v)
	return r
}

func (s *bn254Scalar) Mul(b Scalar) Scalar {
	o := toBN254("mul", s, b)
	r := &bn254Scalar{}
	r.v.Mul(&s.v, &o.v)
	return r
}

func (s *bn254Scalar) Negate() Scalar {
	r := &bn254Scalar{}
	r.v.Neg(&s.v)
	return r
}

func (s *bn254Scalar) Invert() (Scalar, error) {
	if s.v.IsZero() {
		return nil, ErrZeroInverse
	}
	r := &bn254Scalar{}
	r.v.Inverse(&s.v)
	return r, nil
}

func (s *bn254Scalar) Equal(b Scalar) bool {
	o, ok := b.(*bn254Scalar)
	return ok && s.v.Equal(&o.v)
}

func (s *bn254Scalar) IsZero() bool { return s.v.IsZero() }

func (s *bn254Scalar) Bytes() []byte {
	b := s.v.Bytes()
	return b[:]
}

func (s *bn254Scalar) String() string { return hex.EncodeToString(s.Bytes()) }
