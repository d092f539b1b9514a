// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package opparser

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/decentralized-identity/sidetree-resolver/pkg/commitment"
	"github.com/decentralized-identity/sidetree-resolver/pkg/document/model"
	"github.com/decentralized-identity/sidetree-resolver/pkg/jws"
	"github.com/decentralized-identity/sidetree-resolver/pkg/multihash"
	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
)

// ParseRecoverOperation parses and validates a recover request.
func (p *Parser) ParseRecoverOperation(request []byte) (*model.Operation, error) {
	schema, err := p.parseRecoverRequest(request)
	if err != nil {
		return nil, err
	}

	signedData, err := p.ParseSignedDataForRecover(schema.SignedData)
	if err != nil {
		return nil, err
	}

	if err := multihash.IsValidModelMultihash(signedData.RecoveryKey, schema.RevealValue); err != nil {
		return nil, fmt.Errorf("canonicalized recovery public key hash doesn't match reveal value: %s", err.Error())
	}

	schema.Delta = p.SanitizeDelta(schema.Delta)

	if schema.Delta != nil && schema.Delta.UpdateCommitment == signedData.RecoveryCommitment {
		return nil, errors.New("recovery and update commitments cannot be equal, re-using public keys is not allowed")
	}

	return &model.Operation{
		OperationRequest:   request,
		Type:               operation.TypeRecover,
		UniqueSuffix:       schema.DidSuffix,
		Delta:              schema.Delta,
		DeltaHash:          signedData.DeltaHash,
		SignedData:         schema.SignedData,
		RevealValue:        schema.RevealValue,
		AnchorOrigin:       signedData.AnchorOrigin,
		RecoveryKey:        signedData.RecoveryKey,
		RecoveryCommitment: signedData.RecoveryCommitment,
		AnchorFrom:         signedData.AnchorFrom,
		AnchorUntil:        p.getAnchorUntil(signedData.AnchorFrom, signedData.AnchorUntil),
	}, nil
}

func (p *Parser) parseRecoverRequest(payload []byte) (*model.RecoverRequest, error) {
	schema := &model.RecoverRequest{}

	if err := unmarshalStrict(payload, schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recover request: %s", err.Error())
	}

	if err := p.validateRecoverRequest(schema); err != nil {
		return nil, err
	}

	return schema, nil
}

// ParseSignedDataForRecover parses and validates the compact JWS signed
// data model carried by a recover request.
func (p *Parser) ParseSignedDataForRecover(compactJWS string) (*model.RecoverSignedDataModel, error) {
	signedData, err := p.parseSignedData(compactJWS)
	if err != nil {
		return nil, err
	}

	schema := &model.RecoverSignedDataModel{}

	if err := unmarshalStrict(signedData.Payload, schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signed data model for recover: %s", err.Error())
	}

	if err := p.validateSignedDataForRecovery(schema); err != nil {
		return nil, fmt.Errorf("validate signed data for recovery: %s", err.Error())
	}

	return schema, nil
}

func (p *Parser) validateSignedDataForRecovery(signedData *model.RecoverSignedDataModel) error {
	if err := p.validateSigningKey(signedData.RecoveryKey); err != nil {
		return err
	}

	if err := p.validateMultihash(signedData.RecoveryCommitment, "recovery commitment"); err != nil {
		return err
	}

	if err := p.validateMultihash(signedData.DeltaHash, "delta hash"); err != nil {
		return err
	}

	return p.validateCommitment(signedData.RecoveryKey, signedData.RecoveryCommitment)
}

func (p *Parser) parseSignedData(compactJWS string) (*jws.JSONWebSignature, error) {
	if compactJWS == "" {
		return nil, errors.New("missing signed data")
	}

	sig, err := jws.ParseCompact(compactJWS)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signed data: %s", err.Error())
	}

	if err := p.validateProtectedHeaders(sig.ProtectedHeaders, p.SignatureAlgorithms); err != nil {
		return nil, fmt.Errorf("failed to parse signed data: %s", err.Error())
	}

	return sig, nil
}

func (p *Parser) validateProtectedHeaders(headers jws.Headers, allowedAlgorithms []string) error {
	if headers == nil {
		return errors.New("missing protected headers")
	}

	alg, ok := headers.Algorithm()
	if !ok {
		return errors.New("algorithm must be present in the protected header")
	}

	if alg == "" {
		return errors.New("algorithm cannot be empty in the protected header")
	}

	allowedHeaders := map[string]bool{
		jws.HeaderAlgorithm: true,
		jws.HeaderKeyID:     true,
	}

	for k := range headers {
		if !allowedHeaders[k] {
			return fmt.Errorf("invalid protected header: %s", k)
		}
	}

	if !contains(allowedAlgorithms, alg) {
		return errors.Errorf("algorithm '%s' is not in the allowed list %v", alg, allowedAlgorithms)
	}

	return nil
}

func (p *Parser) validateRecoverRequest(req *model.RecoverRequest) error {
	if req.DidSuffix == "" {
		return errors.New("missing did suffix")
	}

	if req.SignedData == "" {
		return errors.New("missing signed data")
	}

	return p.validateMultihash(req.RevealValue, "reveal value")
}

func (p *Parser) validateSigningKey(key *jws.JWK) error {
	if key == nil {
		return errors.New("missing signing key")
	}

	if err := key.Validate(); err != nil {
		return fmt.Errorf("signing key validation failed: %s", err.Error())
	}

	if !contains(p.KeyAlgorithms, key.Crv) {
		return errors.Errorf("key algorithm '%s' is not in the allowed list %v", key.Crv, p.KeyAlgorithms)
	}

	if err := p.validateNonce(key.Nonce); err != nil {
		return fmt.Errorf("validate signing key nonce: %s", err.Error())
	}

	return nil
}

func (p *Parser) validateCommitment(jwk *jws.JWK, nextCommitment string) error {
	code, err := multihash.GetCode(nextCommitment)
	if err != nil {
		return err
	}

	currentCommitment, err := commitment.GetCommitment(jwk, uint(code))
	if err != nil {
		return fmt.Errorf("calculate current commitment: %s", err.Error())
	}

	if currentCommitment == nextCommitment {
		return errors.New("re-using public keys for commitment is not allowed")
	}

	return nil
}

func (p *Parser) validateNonce(nonce string) error {
	if nonce == "" {
		return nil
	}

	nonceBytes, err := multihash.DecodeString(nonce)
	if err != nil {
		return fmt.Errorf("failed to decode nonce '%s': %s", nonce, err.Error())
	}

	if uint(len(nonceBytes)) != p.NonceSize {
		return fmt.Errorf("nonce size '%d' doesn't match configured nonce size '%d'", len(nonceBytes), p.NonceSize)
	}

	return nil
}

func (p *Parser) validateMultihash(mh, alias string) error {
	if mh == "" {
		return fmt.Errorf("missing %s", alias)
	}

	if err := multihash.Validate(mh, p.MultihashAlgorithms); err != nil {
		return fmt.Errorf("invalid %s: %s", alias, err.Error())
	}

	return nil
}

// getAnchorUntil derives an implicit expiry for an operation that only
// specified AnchorFrom.
func (p *Parser) getAnchorUntil(from, until int64) int64 {
	if from != 0 && until == 0 {
		return from + int64(p.MaxOperationTimeDelta)
	}

	return until
}
