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

// ParseDeactivateOperation parses and validates a deactivate request.
func (p *Parser) ParseDeactivateOperation(request []byte) (*model.Operation, error) {
	schema := &model.DeactivateRequest{}

	if err := unmarshalStrict(request, schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deactivate request: %s", err.Error())
	}

	if err := p.validateDeactivateRequest(schema); err != nil {
		return nil, err
	}

	signedData, err := p.parseSignedDataForDeactivate(schema)
	if err != nil {
		return nil, err
	}

	if err := multihash.IsValidModelMultihash(signedData.RecoveryKey, schema.RevealValue); err != nil {
		return nil, fmt.Errorf("canonicalized recovery public key hash doesn't match reveal value: %s", err.Error())
	}

	return &model.Operation{
		OperationRequest: request,
		Type:             operation.TypeDeactivate,
		UniqueSuffix:     schema.DidSuffix,
		SignedData:       schema.SignedData,
		RevealValue:      schema.RevealValue,
		RecoveryKey:      signedData.RecoveryKey,
		AnchorFrom:       signedData.AnchorFrom,
		AnchorUntil:      p.getAnchorUntil(signedData.AnchorFrom, signedData.AnchorUntil),
	}, nil
}

func (p *Parser) validateDeactivateRequest(req *model.DeactivateRequest) error {
	if req.DidSuffix == "" {
		return errors.New("missing did suffix")
	}

	if req.SignedData == "" {
		return errors.New("missing signed data")
	}

	return p.validateMultihash(req.RevealValue, "reveal value")
}

func (p *Parser) parseSignedDataForDeactivate(req *model.DeactivateRequest) (*model.DeactivateSignedDataModel, error) {
	signedData, err := p.parseSignedData(req.SignedData)
	if err != nil {
		return nil, err
	}

	schema := &model.DeactivateSignedDataModel{}

	if err := unmarshalStrict(signedData.Payload, schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signed data model for deactivate: %s", err.Error())
	}

	if err := p.validateSigningKey(schema.RecoveryKey); err != nil {
		return nil, fmt.Errorf("validate signed data for deactivate: %s", err.Error())
	}

	if schema.DidSuffix != req.DidSuffix {
		return nil, errors.New("did suffix doesn't match signed data")
	}

	if schema.RevealValue != req.RevealValue {
		return nil, errors.New("reveal value doesn't match signed data")
	}

	return schema, nil
}
