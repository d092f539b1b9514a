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

// ParseUpdateOperation parses and validates an update request.
func (p *Parser) ParseUpdateOperation(request []byte) (*model.Operation, error) {
	schema := &model.UpdateRequest{}

	if err := unmarshalStrict(request, schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal update request: %s", err.Error())
	}

	if err := p.validateUpdateRequest(schema); err != nil {
		return nil, err
	}

	signedData, err := p.parseSignedDataForUpdate(schema.SignedData)
	if err != nil {
		return nil, err
	}

	if err := multihash.IsValidModelMultihash(signedData.UpdateKey, schema.RevealValue); err != nil {
		return nil, fmt.Errorf("canonicalized update public key hash doesn't match reveal value: %s", err.Error())
	}

	schema.Delta = p.SanitizeDelta(schema.Delta)

	return &model.Operation{
		OperationRequest: request,
		Type:             operation.TypeUpdate,
		UniqueSuffix:     schema.DidSuffix,
		Delta:            schema.Delta,
		DeltaHash:        signedData.DeltaHash,
		SignedData:       schema.SignedData,
		RevealValue:      schema.RevealValue,
		UpdateKey:        signedData.UpdateKey,
		AnchorFrom:       signedData.AnchorFrom,
		AnchorUntil:      p.getAnchorUntil(signedData.AnchorFrom, signedData.AnchorUntil),
	}, nil
}

func (p *Parser) validateUpdateRequest(req *model.UpdateRequest) error {
	if req.DidSuffix == "" {
		return errors.New("missing did suffix")
	}

	if req.SignedData == "" {
		return errors.New("missing signed data")
	}

	return p.validateMultihash(req.RevealValue, "reveal value")
}

func (p *Parser) parseSignedDataForUpdate(compactJWS string) (*model.UpdateSignedDataModel, error) {
	signedData, err := p.parseSignedData(compactJWS)
	if err != nil {
		return nil, err
	}

	schema := &model.UpdateSignedDataModel{}

	if err := unmarshalStrict(signedData.Payload, schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signed data model for update: %s", err.Error())
	}

	if err := p.validateSigningKey(schema.UpdateKey); err != nil {
		return nil, fmt.Errorf("validate signed data for update: %s", err.Error())
	}

	if err := p.validateMultihash(schema.DeltaHash, "delta hash"); err != nil {
		return nil, fmt.Errorf("validate signed data for update: %s", err.Error())
	}

	return schema, nil
}

