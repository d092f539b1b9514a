// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package opparser

import (
	"encoding/json"
	"fmt"

	"github.com/decentralized-identity/sidetree-resolver/pkg/document/model"
	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
)

type typeOnly struct {
	Type operation.Type `json:"type"`
}

// GetCommitment returns the next commitment an anchored operation request
// introduces on its own axis: the delta's update commitment for an update
// ("" if the delta was pruned), the signed recovery commitment for a
// recover, and "" for a deactivate. Create operations don't carry a "next"
// commitment in this sense (their recovery commitment is the operation's
// own, not one it reveals against a prior state), so they aren't supported.
func (p *Parser) GetCommitment(request []byte) (string, error) {
	t, err := operationType(request)
	if err != nil {
		return "", fmt.Errorf("get commitment - parse operation error: %s", err.Error())
	}

	switch t {
	case operation.TypeRecover:
		op, err := p.ParseRecoverOperation(request)
		if err != nil {
			return "", fmt.Errorf("get commitment - parse operation error: %s", err.Error())
		}

		return op.RecoveryCommitment, nil
	case operation.TypeUpdate:
		op, err := p.ParseUpdateOperation(request)
		if err != nil {
			return "", fmt.Errorf("get commitment - parse operation error: %s", err.Error())
		}

		return updateCommitmentOf(op), nil
	case operation.TypeDeactivate:
		if _, err := p.ParseDeactivateOperation(request); err != nil {
			return "", fmt.Errorf("get commitment - parse operation error: %s", err.Error())
		}

		return "", nil
	default:
		return "", fmt.Errorf("operation type '%s' not supported for getting next operation commitment", t)
	}
}

// GetRevealValue returns the reveal value an anchored operation request
// discloses, proving knowledge of the key committed to by the preceding
// operation in the chain. Create operations don't reveal against a prior
// commitment, so they aren't supported.
func (p *Parser) GetRevealValue(request []byte) (string, error) {
	t, err := operationType(request)
	if err != nil {
		return "", fmt.Errorf("get reveal value - parse operation error: %s", err.Error())
	}

	switch t {
	case operation.TypeRecover:
		op, err := p.ParseRecoverOperation(request)
		if err != nil {
			return "", fmt.Errorf("get reveal value - parse operation error: %s", err.Error())
		}

		return op.RevealValue, nil
	case operation.TypeUpdate:
		op, err := p.ParseUpdateOperation(request)
		if err != nil {
			return "", fmt.Errorf("get reveal value - parse operation error: %s", err.Error())
		}

		return op.RevealValue, nil
	case operation.TypeDeactivate:
		op, err := p.ParseDeactivateOperation(request)
		if err != nil {
			return "", fmt.Errorf("get reveal value - parse operation error: %s", err.Error())
		}

		return op.RevealValue, nil
	default:
		return "", fmt.Errorf("operation type '%s' not supported for getting operation reveal value", t)
	}
}

// updateCommitmentOf returns the update commitment op's delta introduces,
// or "" if the delta was pruned or never published.
func updateCommitmentOf(op *model.Operation) string {
	if op.Delta == nil {
		return ""
	}

	return op.Delta.UpdateCommitment
}

func operationType(request []byte) (operation.Type, error) {
	var t typeOnly

	if err := json.Unmarshal(request, &t); err != nil {
		return "", err
	}

	switch t.Type {
	case operation.TypeCreate, operation.TypeUpdate, operation.TypeRecover, operation.TypeDeactivate:
		return t.Type, nil
	default:
		return "", fmt.Errorf("operation type '%s' not supported", t.Type)
	}
}
