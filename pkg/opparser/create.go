// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package opparser

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/decentralized-identity/sidetree-resolver/pkg/document/model"
	"github.com/decentralized-identity/sidetree-resolver/pkg/multihash"
	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
)

// ParseCreateOperation parses and validates a create request.
func (p *Parser) ParseCreateOperation(request []byte) (*model.Operation, error) {
	schema := &model.CreateRequest{}

	if err := unmarshalStrict(request, schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal create request: %s", err.Error())
	}

	if err := p.validateCreateRequest(schema); err != nil {
		return nil, err
	}

	schema.Delta = p.SanitizeDelta(schema.Delta)

	return &model.Operation{
		Type:             operation.TypeCreate,
		OperationRequest: request,
		SuffixData:       schema.SuffixData,
		Delta:            schema.Delta,
		DeltaHash:        schema.SuffixData.DeltaHash,
		AnchorOrigin:     schema.SuffixData.AnchorOrigin,
	}, nil
}

func (p *Parser) validateCreateRequest(schema *model.CreateRequest) error {
	if schema.SuffixData == nil {
		return errors.New("missing suffix data")
	}

	if err := p.validateMultihash(schema.SuffixData.RecoveryCommitment, "recovery commitment"); err != nil {
		return err
	}

	if err := p.validateMultihash(schema.SuffixData.DeltaHash, "delta hash"); err != nil {
		return err
	}

	if schema.Delta != nil && schema.SuffixData.RecoveryCommitment == schema.Delta.UpdateCommitment {
		return errors.New("recovery and update commitments cannot be equal, re-using public keys is not allowed")
	}

	return nil
}

// DeltaMatchesHash reports whether delta, once canonicalized and hashed
// with deltaHash's own algorithm, reproduces deltaHash. A create operation
// whose delta was revealed late or tampered with fails this check; the
// processor still creates the document, just without applying the delta
// (per Sidetree's "late publish" allowance).
func DeltaMatchesHash(delta *model.DeltaModel, deltaHash string) bool {
	code, err := multihash.GetCode(deltaHash)
	if err != nil {
		return false
	}

	computed, err := multihash.CanonicalizeThenHashThenEncode(uint(code), delta)
	if err != nil {
		return false
	}

	return computed == deltaHash
}

// UniqueSuffix computes the unique suffix of a create operation's suffix
// data: the multihash of its canonicalized form, using the first
// configured algorithm.
func (p *Parser) UniqueSuffix(suffixData *model.SuffixDataModel) (string, error) {
	if len(p.MultihashAlgorithms) == 0 {
		return "", errors.New("no multihash algorithms configured")
	}

	return multihash.CanonicalizeThenHashThenEncode(p.MultihashAlgorithms[0], suffixData)
}
