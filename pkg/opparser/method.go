// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package opparser

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/decentralized-identity/sidetree-resolver/pkg/canonicalizer"
	"github.com/decentralized-identity/sidetree-resolver/pkg/document/model"
	"github.com/decentralized-identity/sidetree-resolver/pkg/multihash"
	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
)

const (
	longFormSeparator = ":"
	didSeparator      = ":"
)

// ParseDID inspects a resolution request and returns:
//   - did and an initial create request, for long-form resolution
//   - just did, for short-form resolution (the common case).
func (p *Parser) ParseDID(namespace, shortOrLongFormDID string) (string, []byte, error) {
	withoutNamespace := strings.ReplaceAll(shortOrLongFormDID, "did"+didSeparator+namespace+didSeparator, "")
	posLongFormSeparator := strings.Index(withoutNamespace, longFormSeparator)

	if posLongFormSeparator == -1 {
		return shortOrLongFormDID, nil, nil
	}

	// long form format: 'did:<namespace>:<unique-portion>:Base64url(JCS({suffix-data, delta}))'
	endOfDIDPos := strings.LastIndex(shortOrLongFormDID, longFormSeparator)

	did := shortOrLongFormDID[0:endOfDIDPos]
	longFormPortion := shortOrLongFormDID[endOfDIDPos+1:]

	createRequest, err := parseInitialState(longFormPortion)
	if err != nil {
		return "", nil, err
	}

	createRequestBytes, err := canonicalizer.MarshalCanonical(createRequest)
	if err != nil {
		return "", nil, err
	}

	return did, createRequestBytes, nil
}

// parseInitialState recovers the create request encoded in the long-form
// portion of a DID, and checks that it round-trips back to the same
// encoding (a mismatch means the initial state was tampered with).
func parseInitialState(initialState string) (*model.CreateRequest, error) {
	decodedJCS, err := multihash.DecodeString(initialState)
	if err != nil {
		return nil, err
	}

	var createRequest model.CreateRequest

	if err := json.Unmarshal(decodedJCS, &createRequest); err != nil {
		return nil, err
	}

	expected, err := canonicalizer.MarshalCanonical(createRequest)
	if err != nil {
		return nil, err
	}

	if multihash.EncodeToString(expected) != initialState {
		return nil, errors.New("initial state is not valid")
	}

	createRequest.Operation = operation.TypeCreate

	return &createRequest, nil
}
