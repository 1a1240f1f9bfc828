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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
)

// Encode returns the 32-byte big-endian encodings of X and Y.
func (s Share) Encode() (x, y []byte) {
	return s.X.Bytes(), s.Y.Bytes()
}

// Clone returns a copy of the share. Scalars are immutable, so the copy
// shares no mutable state with s.
func (s Share) Clone() Share {
	return Share{X: s.X, Y: s.Y}
}

// String formats the share as "x:y" in hex.
func (s Share) String() string {
	return s.X.String() + ":" + s.Y.String()
}

// DecodeShare decodes a share from its coordinate encodings. With strict
// set, coordinates that are not less than the field order are rejected
// with field.ErrMalformedScalar; otherwise they are reduced.
func DecodeShare(f field.Field, x, y []byte, strict bool) (Share, error) {
	decode := f.FromBytes
	if strict {
		decode = f.FromCanonicalBytes
	}

	xs, err := decode(x)
	if err != nil {
		return Share{}, fmt.Errorf("invalid x coordinate: %w", err)
	}
	ys, err := decode(y)
	if err != nil {
		return Share{}, fmt.Errorf("invalid y coordinate: %w", err)
	}
	return Share{X: xs, Y: ys}, nil
}

// ParseShare parses the "x:y" hex form produced by Share.String. Shorter
// hex values are left-padded to the scalar size.
func ParseShare(f field.Field, s string) (Share, error) {
	xh, yh, ok := strings.Cut(s, ":")
	if !ok {
		return Share{}, fmt.Errorf("share %q: expected x:y", s)
	}
	x, err := decodeHexScalar(xh)
	if err != nil {
		return Share{}, fmt.Errorf("share %q: %w", s, err)
	}
	y, err := decodeHexScalar(yh)
	if err != nil {
		return Share{}, fmt.Errorf("share %q: %w", s, err)
	}
	return DecodeShare(f, x, y, true)
}

// ParseScalar parses a hex encoded scalar, left-padding short input.
func ParseScalar(f field.Field, s string) (field.Scalar, error) {
	b, err := decodeHexScalar(s)
	if err != nil {
		return nil, err
	}
	return f.FromCanonicalBytes(b)
}

func decodeHexScalar(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	if len(raw) > field.ScalarSize {
		return nil, fmt.Errorf("%w: %d bytes", field.ErrInvalidScalarLength, len(raw))
	}
	out := make([]byte, field.ScalarSize)
	copy(out[field.ScalarSize-len(raw):], raw)
	return out, nil
}
