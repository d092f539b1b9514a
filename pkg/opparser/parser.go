// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package opparser turns raw operation request bytes into a validated
// model.Operation, and answers the two small questions the resolver needs
// about an anchored operation without fully applying it: what reveal value
// it exposes, and what commitment its successor must present.
package opparser

import (
	"bytes"
	"encoding/json"

	"github.com/decentralized-identity/sidetree-resolver/pkg/protocol"
)

// Parser validates and parses Sidetree operation requests against a fixed
// set of protocol parameters.
type Parser struct {
	protocol.Protocol
}

// New returns a Parser configured with p.
func New(p protocol.Protocol) *Parser {
	return &Parser{Protocol: p}
}

// unmarshalStrict decodes data into v, rejecting any property the target
// schema doesn't declare. Request and signed-data payloads carry an exact
// set of properties; anything extra fails the parse.
func unmarshalStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	return dec.Decode(v)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}
