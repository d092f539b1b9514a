// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package model defines the wire-format JSON structs for operation
// requests, the signed data payloads carried inside their compact JWS, and
// the parsed Operation value opparser produces from them.
package model

import (
	"github.com/decentralized-identity/sidetree-resolver/pkg/jws"
	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
	"github.com/decentralized-identity/sidetree-resolver/pkg/patch"
)

// CreateRequest is the struct for create payload JCS.
type CreateRequest struct {
	Operation  operation.Type   `json:"type,omitempty"`
	SuffixData *SuffixDataModel `json:"suffixData,omitempty"`
	Delta      *DeltaModel      `json:"delta,omitempty"`
}

// SuffixDataModel is part of a create request.
type SuffixDataModel struct {
	DeltaHash          string      `json:"deltaHash,omitempty"`
	RecoveryCommitment string      `json:"recoveryCommitment,omitempty"`
	AnchorOrigin       interface{} `json:"anchorOrigin,omitempty"`
	Type               string      `json:"type,omitempty"`
}

// DeltaModel contains patch data, used by create, recover and update.
type DeltaModel struct {
	UpdateCommitment string        `json:"updateCommitment,omitempty"`
	Patches          []patch.Patch `json:"patches,omitempty"`
}

// UpdateRequest is the struct for an update request.
type UpdateRequest struct {
	Operation   operation.Type `json:"type"`
	DidSuffix   string         `json:"didSuffix"`
	RevealValue string         `json:"revealValue"`
	SignedData  string         `json:"signedData"`
	Delta       *DeltaModel    `json:"delta"`
}

// DeactivateRequest is the struct for deactivating a document.
type DeactivateRequest struct {
	Operation   operation.Type `json:"type"`
	DidSuffix   string         `json:"didSuffix"`
	RevealValue string         `json:"revealValue"`
	SignedData  string         `json:"signedData"`
}

// RecoverRequest is the struct for a document recovery payload.
type RecoverRequest struct {
	Operation   operation.Type `json:"type"`
	DidSuffix   string         `json:"didSuffix"`
	RevealValue string         `json:"revealValue"`
	SignedData  string         `json:"signedData"`
	Delta       *DeltaModel    `json:"delta"`
}

// UpdateSignedDataModel is the signed data model for update.
type UpdateSignedDataModel struct {
	UpdateKey   *jws.JWK `json:"updateKey"`
	DeltaHash   string   `json:"deltaHash"`
	AnchorFrom  int64    `json:"anchorFrom,omitempty"`
	AnchorUntil int64    `json:"anchorUntil,omitempty"`
}

// RecoverSignedDataModel is the signed data model for recovery.
type RecoverSignedDataModel struct {
	DeltaHash          string      `json:"deltaHash"`
	RecoveryKey        *jws.JWK    `json:"recoveryKey"`
	RecoveryCommitment string      `json:"recoveryCommitment"`
	AnchorOrigin       interface{} `json:"anchorOrigin,omitempty"`
	AnchorFrom         int64       `json:"anchorFrom,omitempty"`
	AnchorUntil        int64       `json:"anchorUntil,omitempty"`
}

// DeactivateSignedDataModel is the signed data model for deactivate.
type DeactivateSignedDataModel struct {
	DidSuffix   string   `json:"didSuffix"`
	RevealValue string   `json:"revealValue"`
	RecoveryKey *jws.JWK `json:"recoveryKey"`
	AnchorFrom  int64    `json:"anchorFrom,omitempty"`
	AnchorUntil int64    `json:"anchorUntil,omitempty"`
}
