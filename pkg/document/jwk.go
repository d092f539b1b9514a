// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"encoding/json"

	"github.com/decentralized-identity/sidetree-resolver/pkg/jws"
)

// JWK is the document-level view of a public key's JWK representation:
// just enough to validate it without coupling the document package to the
// full jws.JWK type.
type JWK interface {
	Validate() error
}

// JWKFromMap builds a document JWK from a raw "publicKeyJwk" object.
func JWKFromMap(m map[string]interface{}) JWK {
	raw, err := json.Marshal(m)
	if err != nil {
		return invalidJWK{err}
	}

	var key jws.JWK
	if err := json.Unmarshal(raw, &key); err != nil {
		return invalidJWK{err}
	}

	return &key
}

type invalidJWK struct{ err error }

func (i invalidJWK) Validate() error { return i.err }
