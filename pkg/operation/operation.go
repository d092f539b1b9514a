// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package operation defines the operation-kind enumeration and the
// anchored operation envelope the operation store, processor and resolver
// exchange. It is deliberately a leaf package (no dependency on the parsed
// request models in pkg/document/model) so that package can depend on this
// one without a cycle.
package operation

import "sort"

// Type identifies which of the four Sidetree operation kinds an operation
// is.
type Type string

const (
	TypeCreate     Type = "create"
	TypeUpdate     Type = "update"
	TypeRecover    Type = "recover"
	TypeDeactivate Type = "deactivate"
)

// AnchoredOperation is a parsed operation as recorded by the operation
// store, decorated with the transaction coordinates the resolver uses to
// order and deduplicate operations.
type AnchoredOperation struct {
	Type             Type   `json:"type"`
	UniqueSuffix     string `json:"uniqueSuffix"`
	OperationRequest []byte `json:"operationRequest"`

	// TransactionTime and TransactionNumber place this operation in the
	// anchoring ledger's total order. OperationIndex breaks ties between
	// operations anchored in the same transaction: (TransactionNumber,
	// OperationIndex) is the total order the resolver sorts and
	// deduplicates by.
	TransactionTime   uint64 `json:"transactionTime"`
	TransactionNumber uint64 `json:"transactionNumber"`
	OperationIndex    uint   `json:"operationIndex"`

	// CanonicalReference identifies the anchoring transaction this
	// operation is published in. Empty means the operation is
	// unpublished (known only to the caller via
	// document.WithAdditionalOperations, never yet observed anchored).
	CanonicalReference string `json:"canonicalReference,omitempty"`

	// EquivalentReferences carries any alternate addressing for the
	// same anchored operation (e.g. an alternate CAS reference).
	EquivalentReferences []string `json:"equivalentReferences,omitempty"`
}

// Published reports whether this operation has a canonical anchoring
// reference.
func (o *AnchoredOperation) Published() bool {
	return o.CanonicalReference != ""
}

// Less reports whether o sorts before other in the resolver's total
// order: ascending (TransactionNumber, OperationIndex).
func (o *AnchoredOperation) Less(other *AnchoredOperation) bool {
	if o.TransactionNumber != other.TransactionNumber {
		return o.TransactionNumber < other.TransactionNumber
	}

	return o.OperationIndex < other.OperationIndex
}

// SortByTransaction sorts ops ascending by (TransactionNumber,
// OperationIndex), the order anchored operations are totally ordered in.
func SortByTransaction(ops []*AnchoredOperation) {
	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Less(ops[j])
	})
}
