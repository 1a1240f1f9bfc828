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

	"github.com/btcsuite/btcd/btcec/v2"
)

const secp256k1Name = "secp256k1"

// secp256k1Order is n, the order of the secp256k1 base point.
var secp256k1Order, _ = new(big.Int).SetString(
	"FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)

// Secp256k1 is the scalar field of the secp256k1 group.
var Secp256k1 Field = secp256k1Field{}

type secp256k1Field struct{}

func (secp256k1Field) Name() string { return secp256k1Name }

func (secp256k1Field) Order() *big.Int { return new(big.Int).Set(secp256k1Order) }

func (secp256k1Field) Zero() Scalar { return &secp256k1Scalar{} }

func (secp256k1Field) One() Scalar {
	s := &secp256k1Scalar{}
	s.v.SetInt(1)
	return s
}

func (secp256k1Field) FromUint64(v uint64) Scalar {
	s := &secp256k1Scalar{}
	s.v.SetByteSlice(uint64Bytes(v))
	return s
}

func (secp256k1Field) FromBytes(b []byte) (Scalar, error) {
	if err := checkLength(b); err != nil {
		return nil, err
	}
	s := &secp256k1Scalar{}
	// The overflow flag is ignored: the value has already been reduced mod n.
	s.v.SetByteSlice(b)
	return s, nil
}

func (secp256k1Field) FromCanonicalBytes(b []byte) (Scalar, error) {
	if err := checkLength(b); err != nil {
		return nil, err
	}
	s := &secp256k1Scalar{}
	if overflow := s.v.SetByteSlice(b); overflow {
		return nil, fmt.Errorf("%w: %s", ErrMalformedScalar, secp256k1Name)
	}
	return s, nil
}

func (f secp256k1Field) Random(r io.Reader) (Scalar, error) {
	return sampleCanonical(f, r)
}

// secp256k1Scalar wraps btcec.ModNScalar, which keeps values reduced mod n.
type secp256k1Scalar struct {
	v btcec.ModNScalar
}

func toSecp256k1(op string, a, b Scalar) *secp256k1Scalar {
	s, ok := b.(*secp256k1Scalar)
	if !ok {
		mismatch(op, a, b)
	}
	return s
}

func (s *secp256k1Scalar) Field() Field { return Secp256k1 }

func (s *secp256k1Scalar) Add(b Scalar) Scalar {
	o := toSecp256k1("add", s, b)
	r := &secp256k1Scalar{}
	r.v.Add2(&s.v, &o.v)
	return r
}

func (s *secp256k1Scalar) Sub(b Scalar) Scalar {
	o := toSecp256k1("sub", s, b)
	var neg btcec.ModNScalar
	neg.NegateVal(&o.v)
	r := &secp256k1Scalar{}
	r.v.Add2(&s.v, &neg)
	return r
}

func (s *secp256k1Scalar) Mul(b Scalar) Scalar {
	o := toSecp256k1("mul", s, b)
	r := &secp256k1Scalar{}
	r.v.Mul2(&s.v, &o.v)
	return r
}

func (s *secp256k1Scalar) Negate() Scalar {
	r := &secp256k1Scalar{}
	r.v.NegateVal(&s.v)
	return r
}

func (s *secp256k1Scalar) Invert() (Scalar, error) {
	if s.v.IsZero() {
		return nil, ErrZeroInverse
	}
	// btcec only offers a variable-time inverse. Shares are inverted on the
	// x coordinates, which are public.
	r := &secp256k1Scalar{}
	r.v.InverseValNonConst(&s.v)
	return r, nil
}

func (s *secp256k1Scalar) Equal(b Scalar) bool {
	o, ok := b.(*secp256k1Scalar)
	return ok && s.v.Equals(&o.v)
}

func (s *secp256k1Scalar) IsZero() bool { return s.v.IsZero() }

func (s *secp256k1Scalar) Bytes() []byte {
	b := s.v.Bytes()
	return b[:]
}

func (s *secp256k1Scalar) String() string { return hex.EncodeToString(s.Bytes()) }
