// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package protocol carries the resolver's protocol parameters and the
// intermediate resolution state threaded through operation application.
package protocol

import "github.com/decentralized-identity/sidetree-resolver/pkg/document"

// Protocol holds the set of parameters a single deployment of the resolver
// is configured with. Unlike the upstream Sidetree node, this resolver does
// not support switching parameter sets by anchoring block height: one
// Protocol value is loaded at startup and used for the lifetime of the
// process.
type Protocol struct {
	// MultihashAlgorithms lists the multihash codes accepted for
	// commitments and reveal values, in preference order. Index 0 is the
	// algorithm used when deriving new commitments.
	MultihashAlgorithms []uint `yaml:"multihashAlgorithms"`

	// MaxOperationSize is the configured maximum size, in bytes, of an
	// operation request. No parser or processor in this module reads it;
	// request size is not checked.
	MaxOperationSize uint `yaml:"maxOperationSize"`

	// MaxOperationHashLength is the configured maximum length of a
	// multihash-encoded string (delta hash, reveal value, commitment). No
	// parser in this module reads it; hash length is not checked.
	MaxOperationHashLength uint `yaml:"maxOperationHashLength"`

	// MaxDeltaSize is the configured bound on the delta object's
	// canonicalized size. Delta validation in this module does not read
	// it; an oversized delta is not rejected.
	MaxDeltaSize uint `yaml:"maxDeltaSize"`

	// MaxOperationTimeDelta is the implicit width, in ledger time, of an
	// operation's anchoring window when its signed data declares
	// anchorFrom without anchorUntil.
	MaxOperationTimeDelta uint `yaml:"maxOperationTimeDelta"`

	// NonceSize is the required byte length of a signing key's optional
	// recovery nonce.
	NonceSize uint `yaml:"nonceSize"`

	// SignatureAlgorithms lists the JWS "alg" header values accepted for
	// operation signatures.
	SignatureAlgorithms []string `yaml:"signatureAlgorithms"`

	// KeyAlgorithms lists the JWK "crv" values accepted for signing keys.
	KeyAlgorithms []string `yaml:"keyAlgorithms"`

	// MaxOperationsPerBatch is the configured maximum number of operations
	// in one batch. Nothing in this module reads it; the fee quantile
	// calculator does not use it.
	MaxOperationsPerBatch uint `yaml:"maxOperationsPerBatch"`
}

// ResolutionModel is the running state produced by applying a chain of
// anchored operations. A deactivated document has Deactivated set and both
// commitments empty; its Doc is kept as it was before the deactivation.
type ResolutionModel struct {
	Doc                            document.Document
	UniqueSuffix                   string
	RecoveryCommitment             string
	UpdateCommitment               string
	LastOperationTransactionTime   uint64
	LastOperationTransactionNumber uint64
	Deactivated                    bool

	// CanonicalReference of the last operation applied (empty when that
	// operation is unpublished).
	CanonicalReference string

	// PublishedOperations and UnpublishedOperations record the anchored
	// operations folded into Doc, split by publication state, primarily
	// for version-id/version-time resolution bookkeeping.
	PublishedOperations   []string
	UnpublishedOperations []string
}
