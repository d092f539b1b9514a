// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"github.com/decentralized-identity/sidetree-resolver/pkg/jws"
	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
)

// Operation is the result of parsing an operation request: the original
// bytes plus every field needed to validate and, eventually, apply it.
type Operation struct {
	Type             operation.Type
	Namespace        string
	ID               string
	UniqueSuffix     string
	OperationRequest []byte
	SignedData       string
	RevealValue      string
	Delta            *DeltaModel
	SuffixData       *SuffixDataModel
	AnchorOrigin     interface{}

	// DeltaHash is the hash Delta must reproduce once canonicalized, as
	// declared by suffix_data (Create) or signed_data (Update, Recover).
	// It is always present even when Delta itself was pruned to nil.
	DeltaHash string

	// UpdateKey is the key carried in an update operation's signed data,
	// used by the processor to verify both the JWS and the reveal value
	// against the prior update commitment.
	UpdateKey *jws.JWK

	// RecoveryKey is the key carried in a recover or deactivate
	// operation's signed data, used the same way against the prior
	// recovery commitment.
	RecoveryKey *jws.JWK

	// RecoveryCommitment is the new recovery commitment a recover
	// operation's signed data introduces.
	RecoveryCommitment string

	// AnchorFrom and AnchorUntil bound the ledger time window this
	// operation may be anchored in, as declared in its signed data. Zero
	// means unbounded on that side; AnchorUntil is already defaulted by
	// the parser when only AnchorFrom was signed.
	AnchorFrom  int64
	AnchorUntil int64
}

// GetAnchoredOperation wraps a parsed Operation as the envelope the
// operation store and processor exchange. Transaction coordinates and
// publication state are filled in by the caller once the operation has
// actually been anchored.
func GetAnchoredOperation(op *Operation) (*operation.AnchoredOperation, error) {
	return &operation.AnchoredOperation{
		Type:             op.Type,
		UniqueSuffix:     op.UniqueSuffix,
		OperationRequest: op.OperationRequest,
	}, nil
}
