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

	"filippo.io/edwards25519"
)

const ed25519Name = "ed25519"

// ed25519Order is l = 2^252 + 27742317777372353535851937790883648493.
var ed25519Order, _ = new(big.Int).SetString(
	"1000000000000000000000000000000014DEF9DEA2F79CD65812631A5CF5D3ED", 16)

// Ed25519 is the scalar field of the edwards25519 prime-order subgroup.
//
// edwards25519 encodes scalars little-endian; this wrapper converts to and
// from the big-endian wire encoding used everywhere else.
var Ed25519 Field = ed25519Field{}

type ed25519Field struct{}

func (ed25519Field) Name() string { return ed25519Name }

func (ed25519Field) Order() *big.Int { return new(big.Int).Set(ed25519Order) }

func (ed25519Field) Zero() Scalar { return &ed25519Scalar{} }

func (ed25519Field) One() Scalar {
	le := make([]byte, ScalarSize)
	le[0] = 1
	s := &ed25519Scalar{}
	if _, err := s.v.SetCanonicalBytes(le); err != nil {
		panic(err)
	}
	return s
}

func (f ed25519Field) FromUint64(v uint64) Scalar {
	s, err := f.FromBytes(uint64Bytes(v))
	if err != nil {
		panic(err)
	}
	return s
}

func (ed25519Field) FromBytes(b []byte) (Scalar, error) {
	if err := checkLength(b); err != nil {
		return nil, err
	}
	// SetUniformBytes reduces a 64-byte little-endian integer mod l, which
	// gives modular reduction of any 32-byte input when zero-extended.
	wide := make([]byte, 64)
	copy(wide, reverse(b))
	s := &ed25519Scalar{}
	if _, err := s.v.SetUniformBytes(wide); err != nil {
		return nil, err
	}
	return s, nil
}

func (ed25519Field) FromCanonicalBytes(b []byte) (Scalar, error) {
	if err := checkLength(b); err != nil {
		return nil, err
	}
	s := &ed25519Scalar{}
	if _, err := s.v.SetCanonicalBytes(reverse(b)); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedScalar, ed25519Name)
	}
	return s, nil
}

func (f ed25519Field) Random(r io.Reader) (Scalar, error) {
	return sampleCanonical(f, r)
}

// ed25519Scalar wraps edwards25519.Scalar; its zero value is the zero element.
type ed25519Scalar struct {
	v edwards25519.Scalar
}

func toEd25519(op string, a, b Scalar) *ed25519Scalar {
	s, ok := b.(*ed25519Scalar)
	if !ok {
		mismatch(op, a, b)
	}
	return s
}

func (s *ed25519Scalar) Field() Field { return Ed25519 }

func (s *ed25519Scalar) Add(b Scalar) Scalar {
	o := toEd25519("add", s, b)
	r := &ed25519Scalar{}
	r.v.Add(&s.v, &o.v)
	return r
}

func (s *ed25519Scalar) Sub(b Scalar) Scalar {
	o := toEd25519("sub", s, b)
	r := &ed25519Scalar{}
	r.v.Subtract(&s.v, &o.v)
	return r
}

func (s *ed25519Scalar) Mul(b Scalar) Scalar {
	o := toEd25519("mul", s, b)
	r := &ed25519Scalar{}
	r.v.Multiply(&s.v, &o.v)
	return r
}

func (s *ed25519Scalar) Negate() Scalar {
	r := &ed25519Scalar{}
	r.v.Negate(&s.v)
	return r
}

func (s *ed25519Scalar) Invert() (Scalar, error) {
	if s.IsZero() {
		return nil, ErrZeroInverse
	}
	r := &ed25519Scalar{}
	r.v.Invert(&s.v)
	return r, nil
}

func (s *ed25519Scalar) Equal(b Scalar) bool {
	o, ok := b.(*ed25519Scalar)
	return ok && s.v.Equal(&o.v) == 1
}

func (s *ed25519Scalar) IsZero() bool {
	return s.v.Equal(edwards25519.NewScalar()) == 1
}

func (s *ed25519Scalar) Bytes() []byte { return reverse(s.v.Bytes()) }

func (s *ed25519Scalar) String() string { return hex.EncodeToString(s.Bytes()) }

// reverse returns a reversed copy of b.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
