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

// Package validation checks identifiers received from custodian clients
// and CLI users before they reach the share store or the logs.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxCeremonyIDLength is the longest accepted ceremony id in bytes.
const MaxCeremonyIDLength = 255

var (
	// ErrEmptyCeremonyID is returned for an empty ceremony id.
	ErrEmptyCeremonyID = errors.New("ceremony_id is required")

	// ErrInvalidCeremonyID is returned for a ceremony id that is too long,
	// not UTF-8, or contains control characters.
	ErrInvalidCeremonyID = errors.New("invalid ceremony_id")
)

// ValidateCeremonyID accepts any non-empty UTF-8 string of at most
// MaxCeremonyIDLength bytes without control characters. Ceremony ids are
// otherwise opaque.
func ValidateCeremonyID(id string) error {
	if id == "" {
		return ErrEmptyCeremonyID
	}

	// Check length before other validations
	if len(id) > MaxCeremonyIDLength {
		return fmt.Errorf("%w: too long (max %d bytes)", ErrInvalidCeremonyID, MaxCeremonyIDLength)
	}

	if !utf8.ValidString(id) {
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidCeremonyID)
	}

	// Null bytes and other control characters
	for _, r := range id {
		if r < 32 || r == 127 {
			return fmt.Errorf("%w: contains control characters", ErrInvalidCeremonyID)
		}
	}

	return nil
}

// ValidateNodeID accepts an empty node id or one that would pass
// ValidateCeremonyID.
func ValidateNodeID(id string) error {
	if id == "" {
		return nil
	}
	if err := ValidateCeremonyID(id); err != nil {
		return fmt.Errorf("invalid node id: %w", err)
	}
	return nil
}

// SanitizeForLog sanitizes a string for safe logging (prevents log injection).
func SanitizeForLog(s string) string {
	// Remove control characters and null bytes
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)

	// Limit length to prevent log flooding
	if len(s) > 1000 {
		s = s[:1000] + "...[truncated]"
	}

	return s
}
