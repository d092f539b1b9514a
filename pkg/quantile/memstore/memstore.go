// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package memstore is an in-memory quantile.QuantileStore, suitable for
// tests and for a process that recomputes its fee history from the ledger
// on startup rather than persisting it durably.
package memstore

import (
	"sync"

	"github.com/decentralized-identity/sidetree-resolver/pkg/quantile"
)

// Store is a mutex-guarded, map-backed implementation of
// quantile.QuantileStore.
type Store struct {
	mu      sync.Mutex
	records map[uint64]*quantile.Record
	first   uint64
	last    uint64
	size    int
}

// New returns an empty Store.
func New() *Store {
	return &Store{records: make(map[uint64]*quantile.Record)}
}

// Put implements quantile.QuantileStore.
func (s *Store) Put(record *quantile.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *record
	s.records[record.GroupID] = &cp

	if s.size == 0 || record.GroupID < s.first {
		s.first = record.GroupID
	}

	if s.size == 0 || record.GroupID > s.last {
		s.last = record.GroupID
	}

	s.size++

	return nil
}

// Get implements quantile.QuantileStore.
func (s *Store) Get(groupID uint64) (*quantile.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[groupID]
	if !ok {
		return nil, false, nil
	}

	cp := *record

	return &cp, true, nil
}

// GetFirstGroupID implements quantile.QuantileStore.
func (s *Store) GetFirstGroupID() (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return 0, false, nil
	}

	return s.first, true, nil
}

// GetLastGroupID implements quantile.QuantileStore.
func (s *Store) GetLastGroupID() (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return 0, false, nil
	}

	return s.last, true, nil
}

// RemoveGroupsGE implements quantile.QuantileStore.
func (s *Store) RemoveGroupsGE(groupID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.records {
		if id >= groupID {
			delete(s.records, id)
		}
	}

	s.recomputeBounds()

	return nil
}

// Clear implements quantile.QuantileStore.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[uint64]*quantile.Record)
	s.first = 0
	s.last = 0
	s.size = 0

	return nil
}

// recomputeBounds rescans the remaining records for new first/last group
// ids. Callers hold s.mu.
func (s *Store) recomputeBounds() {
	s.size = len(s.records)

	if s.size == 0 {
		s.first = 0
		s.last = 0

		return
	}

	first, ok := anyKey(s.records)
	if !ok {
		return
	}

	last := first

	for id := range s.records {
		if id < first {
			first = id
		}

		if id > last {
			last = id
		}
	}

	s.first = first
	s.last = last
}

func anyKey(m map[uint64]*quantile.Record) (uint64, bool) {
	for k := range m {
		return k, true
	}

	return 0, false
}
