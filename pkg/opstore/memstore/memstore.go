// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package memstore is an in-memory opstore.Store, suitable for tests and
// for a resolver process that rebuilds its operation index from a
// transaction log on startup.
package memstore

import (
	"sort"
	"sync"

	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
)

type key struct {
	suffix            string
	transactionNumber uint64
	operationIndex    uint
}

// Store is a mutex-guarded, map-backed implementation of opstore.Store.
type Store struct {
	mu   sync.Mutex
	ops  map[string][]*operation.AnchoredOperation
	seen map[key]bool
	err  error
}

// New returns an empty Store. Passing a non-nil err causes every Put, Get
// and Delete call to fail with it, which is useful for exercising error
// paths in callers.
func New(err error) *Store {
	return &Store{
		ops:  make(map[string][]*operation.AnchoredOperation),
		seen: make(map[key]bool),
		err:  err,
	}
}

// Put implements opstore.Store.
func (s *Store) Put(ops ...*operation.AnchoredOperation) error {
	if s.err != nil {
		return s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		k := key{op.UniqueSuffix, op.TransactionNumber, op.OperationIndex}
		if s.seen[k] {
			continue
		}

		s.seen[k] = true
		s.ops[op.UniqueSuffix] = append(s.ops[op.UniqueSuffix], op)
	}

	return nil
}

// Get implements opstore.Store.
func (s *Store) Get(suffix string) ([]*operation.AnchoredOperation, error) {
	if s.err != nil {
		return nil, s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ops := append([]*operation.AnchoredOperation(nil), s.ops[suffix]...)

	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Less(ops[j])
	})

	return ops, nil
}

// Delete implements opstore.Store.
func (s *Store) Delete(minTransactionNumber *uint64) error {
	if s.err != nil {
		return s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if minTransactionNumber == nil {
		s.ops = make(map[string][]*operation.AnchoredOperation)
		s.seen = make(map[key]bool)

		return nil
	}

	for suffix, ops := range s.ops {
		var kept []*operation.AnchoredOperation

		for _, op := range ops {
			if op.TransactionNumber > *minTransactionNumber {
				delete(s.seen, key{op.UniqueSuffix, op.TransactionNumber, op.OperationIndex})
				continue
			}

			kept = append(kept, op)
		}

		s.ops[suffix] = kept
	}

	return nil
}
