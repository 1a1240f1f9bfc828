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

// Package storage holds the shares a custodian node keeps in memory,
// keyed by ceremony ID. Contents do not survive a restart.
package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jeremyhahn/go-quorum/pkg/crypto/secretsharing"
)

// ShareStore maps ceremony IDs to the single share a node holds for each.
// It is safe for concurrent use; a later Store for the same ID overwrites
// the earlier share.
type ShareStore struct {
	mu     sync.RWMutex
	shares map[string]secretsharing.Share
}

// NewShareStore creates an empty share store.
func NewShareStore() *ShareStore {
	return &ShareStore{
		shares: make(map[string]secretsharing.Share),
	}
}

// Store inserts or overwrites the share for ceremonyID.
func (s *ShareStore) Store(ceremonyID string, share secretsharing.Share) error {
	if ceremonyID == "" {
		return ErrInvalidID
	}
	if share.X == nil || share.Y == nil {
		return fmt.Errorf("%w: ceremony %q", ErrInvalidData, ceremonyID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.shares[ceremonyID] = share.Clone()
	return nil
}

// Retrieve returns a copy of the share held for ceremonyID.
func (s *ShareStore) Retrieve(ceremonyID string) (secretsharing.Share, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	share, ok := s.shares[ceremonyID]
	if !ok {
		return secretsharing.Share{}, false
	}
	return share.Clone(), true
}

// Get is Retrieve with ErrShareNotFound for a missing ceremony.
func (s *ShareStore) Get(ceremonyID string) (secretsharing.Share, error) {
	share, ok := s.Retrieve(ceremonyID)
	if !ok {
		return secretsharing.Share{}, fmt.Errorf("%w: no share found for ceremony '%s'", ErrShareNotFound, ceremonyID)
	}
	return share, nil
}

// Exists reports whether a share is held for ceremonyID.
func (s *ShareStore) Exists(ceremonyID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.shares[ceremonyID]
	return ok
}

// Len returns the number of ceremonies with a held share.
func (s *ShareStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.shares)
}

// Ceremonies returns the held ceremony IDs in sorted order.
func (s *ShareStore) Ceremonies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.shares))
	for id := range s.shares {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
