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

package storage

import "errors"

var (
	// ErrShareNotFound is returned when no share is held for a ceremony.
	ErrShareNotFound = errors.New("storage: share not found")

	// ErrInvalidID is returned when a ceremony ID is empty.
	ErrInvalidID = errors.New("storage: invalid ceremony ID")

	// ErrInvalidData is returned when a share is missing a coordinate.
	ErrInvalidData = errors.New("storage: invalid share")
)
