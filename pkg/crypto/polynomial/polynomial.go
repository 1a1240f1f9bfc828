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

// Package polynomial provides polynomials over a prime field for use by
// secret sharing schemes.
package polynomial

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-quorum/pkg/crypto/field"
)

var (
	// ErrNoCoefficients is returned when a polynomial would have no terms.
	ErrNoCoefficients = errors.New("polynomial: at least one coefficient is required")

	// ErrFieldMismatch is returned when a coefficient is missing or does
	// not belong to the polynomial's field.
	ErrFieldMismatch = errors.New("polynomial: field mismatch")
)

// Polynomial is p(x) = c[0] + c[1]*x + ... + c[k]*x^k over a single field.
// Coefficients are stored lowest degree first.
type Polynomial struct {
	field        field.Field
	coefficients []field.Scalar
}

// New returns a polynomial with a copy of the given coefficients.
func New(f field.Field, coefficients []field.Scalar) (*Polynomial, error) {
	if len(coefficients) == 0 {
		return nil, ErrNoCoefficients
	}
	for i, coefficient := range coefficients {
		if err := checkField(f, coefficient); err != nil {
			return nil, fmt.Errorf("coefficient %d: %w", i, err)
		}
	}
	c := make([]field.Scalar, len(coefficients))
	copy(c, coefficients)
	return &Polynomial{field: f, coefficients: c}, nil
}

func checkField(f field.Field, s field.Scalar) error {
	if s == nil {
		return fmt.Errorf("%w: missing scalar", ErrFieldMismatch)
	}
	if s.Field().Name() != f.Name() {
		return fmt.Errorf("%w: %s scalar in %s polynomial", ErrFieldMismatch, s.Field().Name(), f.Name())
	}
	return nil
}

// Random returns a polynomial with `terms` coefficients whose constant term
// is secret and whose remaining coefficients are uniformly random.
func Random(secret field.Scalar, terms int, rng io.Reader) (*Polynomial, error) {
	if secret == nil {
		return nil, fmt.Errorf("%w: missing secret", ErrFieldMismatch)
	}
	f := secret.Field()
	c, err := RandomCoefficients(f, terms, secret, rng)
	if err != nil {
		return nil, err
	}
	return &Polynomial{field: f, coefficients: c}, nil
}

// RandomCoefficients returns threshold coefficients: index 0 is secret and
// indexes 1..threshold-1 are drawn from rng (crypto/rand when nil).
func RandomCoefficients(f field.Field, threshold int, secret field.Scalar, rng io.Reader) ([]field.Scalar, error) {
	if threshold < 1 {
		return nil, ErrNoCoefficients
	}
	if err := checkField(f, secret); err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	coefficients := make([]field.Scalar, threshold)
	coefficients[0] = secret
	for i := 1; i < threshold; i++ {
		c, err := f.Random(rng)
		if err != nil {
			return nil, fmt.Errorf("failed to generate coefficient %d: %w", i, err)
		}
		coefficients[i] = c
	}
	return coefficients, nil
}

// Evaluate computes p(x) for the coefficients using Horner's method.
// An empty coefficient list evaluates to zero.
func Evaluate(f field.Field, coefficients []field.Scalar, x field.Scalar) field.Scalar {
	acc := f.Zero()
	for i := len(coefficients) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(coefficients[i])
	}
	return acc
}

// Evaluate computes p(x).
func (p *Polynomial) Evaluate(x field.Scalar) field.Scalar {
	return Evaluate(p.field, p.coefficients, x)
}

// Degree returns the number of coefficients minus one.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Field returns the field the coefficients belong to.
func (p *Polynomial) Field() field.Field {
	return p.field
}

// Secret returns the constant term.
func (p *Polynomial) Secret() field.Scalar {
	return p.coefficients[0]
}

// Zeroize drops every coefficient reference and replaces it with zero so the
// random terms are no longer reachable through p.
func (p *Polynomial) Zeroize() {
	zero := p.field.Zero()
	for i := range p.coefficients {
		p.coefficients[i] = zero
	}
}
