// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package opstore defines the storage contract the resolver uses to look
// up the anchored operations belonging to a DID's unique suffix. It is an
// idempotent bag keyed by unique suffix: re-inserting an operation the
// store already holds (same suffix, transaction number and operation
// index) is a no-op, and resolution never mutates it.
package opstore

import "github.com/decentralized-identity/sidetree-resolver/pkg/operation"

// Store persists and retrieves anchored operations by unique suffix.
// Implementations must tolerate concurrent Put/Get calls for different
// suffixes without tearing individual records; they are free to serialize
// writes to the same suffix however they like.
type Store interface {
	// Put inserts ops, skipping any operation whose natural key (suffix,
	// transaction number, operation index) already exists. It is safe to
	// call repeatedly with overlapping batches.
	Put(ops ...*operation.AnchoredOperation) error

	// Get returns every operation anchored for suffix, ordered ascending
	// by (transaction number, operation index).
	Get(suffix string) ([]*operation.AnchoredOperation, error)

	// Delete removes every operation whose transaction number is
	// strictly greater than minTransactionNumber. A nil
	// minTransactionNumber clears the store entirely. Used to unwind the
	// operation bag after a ledger reorg.
	Delete(minTransactionNumber *uint64) error
}
