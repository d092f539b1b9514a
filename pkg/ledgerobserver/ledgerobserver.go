// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package ledgerobserver is the minimal glue showing how the resolver's
// operation store is fed from the ledger's transaction sequence. The
// ledger client and the CAS fetch/split into per-operation buffers live
// elsewhere; this package only owns the store boundary: turning a batch
// of already-split operation buffers into opstore.Store entries, and
// unwinding them again on a reorg.
package ledgerobserver

import (
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/pkg/errors"

	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
	"github.com/decentralized-identity/sidetree-resolver/pkg/opstore"
	"github.com/decentralized-identity/sidetree-resolver/pkg/quantile"
)

var logger = log.New("sidetree-resolver/ledgerobserver")

// Transaction is one anchored ledger transaction, carrying the already
// CAS-fetched and split operation buffers it anchors plus the fee paid for
// the batch (fed into the quantile calculator).
type Transaction struct {
	TransactionNumber uint64
	TransactionTime   uint64
	AnchorString      string
	Fee               uint64

	// Operations are the parsed, anchor-ordered buffers this transaction
	// carries. The observer assigns OperationIndex per the buffer's
	// position within the transaction before storing it.
	Operations []UnindexedOperation
}

// UnindexedOperation is an anchored operation before the observer has
// assigned it its position-within-transaction index.
type UnindexedOperation struct {
	Type             operation.Type
	UniqueSuffix     string
	OperationRequest []byte
}

// Observer folds anchored ledger transactions into an opstore.Store and
// feeds each transaction's fee into a sliding-window quantile calculator.
// Observer is not safe for concurrent use: callers must not call Observe
// or Rollback concurrently.
type Observer struct {
	store      opstore.Store
	quantile   *quantile.Calculator
	groupSize  int
	groupFees  []uint64
	groupID    uint64
	haveGroup  bool
}

// New returns an Observer writing anchored operations to store and
// per-groupSize-transactions fee samples to calc.
func New(store opstore.Store, calc *quantile.Calculator, groupSize int) *Observer {
	return &Observer{
		store:     store,
		quantile:  calc,
		groupSize: groupSize,
	}
}

// Observe indexes txn's operations and inserts them into the store,
// idempotently, then accumulates txn's fee toward the current fee-sample
// group, flushing a group to the quantile calculator once groupSize
// transactions have been folded in.
func (o *Observer) Observe(txn Transaction) error {
	ops := make([]*operation.AnchoredOperation, 0, len(txn.Operations))

	for i, u := range txn.Operations {
		ops = append(ops, &operation.AnchoredOperation{
			Type:              u.Type,
			UniqueSuffix:      u.UniqueSuffix,
			OperationRequest:  u.OperationRequest,
			TransactionTime:   txn.TransactionTime,
			TransactionNumber: txn.TransactionNumber,
			OperationIndex:    uint(i),
			CanonicalReference: txn.AnchorString,
		})
	}

	if err := o.store.Put(ops...); err != nil {
		return errors.Wrap(err, "ledgerobserver: insert anchored operations")
	}

	logger.Infof("observed transaction %d: %d operations", txn.TransactionNumber, len(ops))

	return o.foldFee(txn)
}

func (o *Observer) foldFee(txn Transaction) error {
	if o.quantile == nil || o.groupSize <= 0 {
		return nil
	}

	o.groupFees = append(o.groupFees, txn.Fee)

	if len(o.groupFees) < o.groupSize {
		return nil
	}

	groupID := o.nextGroupID()

	if _, err := o.quantile.Add(groupID, o.groupFees); err != nil {
		return errors.Wrap(err, "ledgerobserver: fold fee group")
	}

	o.groupFees = nil

	return nil
}

func (o *Observer) nextGroupID() uint64 {
	if !o.haveGroup {
		o.haveGroup = true
		o.groupID = 1

		return o.groupID
	}

	o.groupID++

	return o.groupID
}

// Rollback unwinds the operation store and quantile calculator to the
// state they held at or before minTransactionNumber, per a ledger reorg.
// It also resets this Observer's in-flight fee-sample group, since any
// partially accumulated group may have included now-orphaned transactions.
func (o *Observer) Rollback(minTransactionNumber uint64) error {
	if err := o.store.Delete(&minTransactionNumber); err != nil {
		return errors.Wrap(err, "ledgerobserver: rollback operation store")
	}

	o.groupFees = nil

	if o.quantile != nil && o.haveGroup && o.groupID > 0 {
		if err := o.quantile.RemoveGroupsGE(o.groupID); err != nil {
			return errors.Wrap(err, "ledgerobserver: rollback quantile calculator")
		}
	}

	return nil
}
