// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package sidetreetest builds signed Sidetree operation requests for use in
// other packages' tests. It is not part of the resolver's public surface.
package sidetreetest

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"

	"github.com/btcsuite/btcd/btcec"

	"github.com/decentralized-identity/sidetree-resolver/pkg/commitment"
	"github.com/decentralized-identity/sidetree-resolver/pkg/document/model"
	"github.com/decentralized-identity/sidetree-resolver/pkg/jws"
	"github.com/decentralized-identity/sidetree-resolver/pkg/multihash"
	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
	"github.com/decentralized-identity/sidetree-resolver/pkg/patch"
)

// MultihashCode is the multihash algorithm used throughout these fixtures.
const MultihashCode = multihash.SHA2_256

// KeyPair is an ECDSA secp256k1 key used as a recovery or update key in a
// test operation chain.
type KeyPair struct {
	Private *ecdsa.PrivateKey
}

// NewKeyPair generates a fresh secp256k1 key pair.
func NewKeyPair() *KeyPair {
	priv, err := ecdsa.GenerateKey(btcec.S256(), rand.Reader)
	if err != nil {
		panic(err)
	}

	return &KeyPair{Private: priv}
}

// PublicJWK returns the JWK wire representation of the key's public half.
func (k *KeyPair) PublicJWK() *jws.JWK {
	jwk, err := jws.FromECDSAPublicKey(&k.Private.PublicKey)
	if err != nil {
		panic(err)
	}

	return jwk
}

// Commitment returns the commitment value for this key.
func (k *KeyPair) Commitment() string {
	c, err := commitment.GetCommitment(k.PublicJWK(), MultihashCode)
	if err != nil {
		panic(err)
	}

	return c
}

// RevealValue returns the reveal value for this key.
func (k *KeyPair) RevealValue() string {
	rv, err := commitment.GetRevealValue(k.PublicJWK(), MultihashCode)
	if err != nil {
		panic(err)
	}

	return rv
}

// Sign produces a compact JWS over payload, signed by k using ES256K.
func (k *KeyPair) Sign(payload interface{}) string {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}

	header := jws.EncodeSegment([]byte(`{"alg":"ES256K"}`))
	body := jws.EncodeSegment(payloadBytes)

	digest := sha256Sum([]byte(header + "." + body))

	r, s, err := ecdsa.Sign(rand.Reader, k.Private, digest)
	if err != nil {
		panic(err)
	}

	sigBytes := append(leftPad(r.Bytes(), 32), leftPad(s.Bytes(), 32)...)

	return header + "." + body + "." + jws.EncodeSegment(sigBytes)
}

// ReplacePatch returns a "replace" patch wrapping doc (a raw JSON document
// object).
func ReplacePatch(doc string) patch.Patch {
	p, err := patch.NewReplacePatch(doc)
	if err != nil {
		panic(err)
	}

	return p
}

// Delta builds a DeltaModel committing to updateKey and carrying patches.
func Delta(updateKey *KeyPair, patches ...patch.Patch) *model.DeltaModel {
	return &model.DeltaModel{
		UpdateCommitment: updateKey.Commitment(),
		Patches:          patches,
	}
}

func deltaHash(delta *model.DeltaModel) string {
	h, err := multihash.CanonicalizeThenHashThenEncode(MultihashCode, delta)
	if err != nil {
		panic(err)
	}

	return h
}

// CreateRequest builds an (unsigned) create request whose suffix data
// commits to recoveryKey and to delta's hash, and returns its raw JSON
// bytes. updateKey is not read: the update commitment is the one delta
// carries.
func CreateRequest(recoveryKey, updateKey *KeyPair, delta *model.DeltaModel) []byte {
	suffixData := &model.SuffixDataModel{
		DeltaHash:          deltaHash(delta),
		RecoveryCommitment: recoveryKey.Commitment(),
	}

	req := &model.CreateRequest{
		Operation:  operation.TypeCreate,
		SuffixData: suffixData,
		Delta:      delta,
	}

	return marshal(req)
}

// UpdateRequest builds a signed update request revealing against
// updateKey's commitment, signed with updateKey, and carrying delta (whose
// update commitment is the next one in the chain).
func UpdateRequest(suffix string, updateKey *KeyPair, delta *model.DeltaModel) []byte {
	signedData := &model.UpdateSignedDataModel{
		UpdateKey: updateKey.PublicJWK(),
		DeltaHash: deltaHash(delta),
	}

	req := &model.UpdateRequest{
		Operation:   operation.TypeUpdate,
		DidSuffix:   suffix,
		RevealValue: updateKey.RevealValue(),
		SignedData:  updateKey.Sign(signedData),
		Delta:       delta,
	}

	return marshal(req)
}

// UpdateRequestWithAnchorWindow builds a signed update request whose
// signed data declares the [anchorFrom, anchorUntil] anchoring window.
func UpdateRequestWithAnchorWindow(suffix string, updateKey *KeyPair, delta *model.DeltaModel, anchorFrom, anchorUntil int64) []byte {
	signedData := &model.UpdateSignedDataModel{
		UpdateKey:   updateKey.PublicJWK(),
		DeltaHash:   deltaHash(delta),
		AnchorFrom:  anchorFrom,
		AnchorUntil: anchorUntil,
	}

	req := &model.UpdateRequest{
		Operation:   operation.TypeUpdate,
		DidSuffix:   suffix,
		RevealValue: updateKey.RevealValue(),
		SignedData:  updateKey.Sign(signedData),
		Delta:       delta,
	}

	return marshal(req)
}

// UpdateRequestWithSignedPayload builds an update request whose compact JWS
// wraps payload verbatim, for exercising signed-data schema validation.
func UpdateRequestWithSignedPayload(suffix string, updateKey *KeyPair, delta *model.DeltaModel, payload interface{}) []byte {
	req := &model.UpdateRequest{
		Operation:   operation.TypeUpdate,
		DidSuffix:   suffix,
		RevealValue: updateKey.RevealValue(),
		SignedData:  updateKey.Sign(payload),
		Delta:       delta,
	}

	return marshal(req)
}

// UpdateRequestSignedBy builds an update request revealing against
// updateKey's commitment but signed by signer. When signer differs from
// updateKey the resulting signature does not verify against the declared
// update key, which is how tests exercise the signature-rejection path.
func UpdateRequestSignedBy(suffix string, updateKey, signer *KeyPair, delta *model.DeltaModel) []byte {
	signedData := &model.UpdateSignedDataModel{
		UpdateKey: updateKey.PublicJWK(),
		DeltaHash: deltaHash(delta),
	}

	req := &model.UpdateRequest{
		Operation:   operation.TypeUpdate,
		DidSuffix:   suffix,
		RevealValue: updateKey.RevealValue(),
		SignedData:  signer.Sign(signedData),
		Delta:       delta,
	}

	return marshal(req)
}

// RecoverRequest builds a signed recover request revealing against
// recoveryKey's commitment, introducing nextRecoveryKey's commitment and a
// new delta.
func RecoverRequest(suffix string, recoveryKey, nextRecoveryKey *KeyPair, delta *model.DeltaModel) []byte {
	signedData := &model.RecoverSignedDataModel{
		DeltaHash:          deltaHash(delta),
		RecoveryKey:        recoveryKey.PublicJWK(),
		RecoveryCommitment: nextRecoveryKey.Commitment(),
	}

	req := &model.RecoverRequest{
		Operation:   operation.TypeRecover,
		DidSuffix:   suffix,
		RevealValue: recoveryKey.RevealValue(),
		SignedData:  recoveryKey.Sign(signedData),
		Delta:       delta,
	}

	return marshal(req)
}

// DeactivateRequest builds a signed deactivate request revealing against
// recoveryKey's commitment.
func DeactivateRequest(suffix string, recoveryKey *KeyPair) []byte {
	signedData := &model.DeactivateSignedDataModel{
		DidSuffix:   suffix,
		RevealValue: recoveryKey.RevealValue(),
		RecoveryKey: recoveryKey.PublicJWK(),
	}

	req := &model.DeactivateRequest{
		Operation:   operation.TypeDeactivate,
		DidSuffix:   suffix,
		RevealValue: recoveryKey.RevealValue(),
		SignedData:  recoveryKey.Sign(signedData),
	}

	return marshal(req)
}

// AnchoredOp wraps request as an anchored operation at the given
// transaction coordinates, published under reference.
func AnchoredOp(t operation.Type, suffix string, request []byte, txnNumber uint64, opIndex uint, reference string) *operation.AnchoredOperation {
	return &operation.AnchoredOperation{
		Type:               t,
		UniqueSuffix:       suffix,
		OperationRequest:   request,
		TransactionTime:    txnNumber,
		TransactionNumber:  txnNumber,
		OperationIndex:     opIndex,
		CanonicalReference: reference,
	}
}

func marshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return b
}

func leftPad(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}

	out := make([]byte, size-len(b))

	return append(out, b...)
}

func sha256Sum(b []byte) []byte {
	sum := sha256.Sum256(b)

	return sum[:]
}
