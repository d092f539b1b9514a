// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package canonicalizer produces JSON Canonicalization Scheme (RFC 8785)
// output, the wire format every hashed or signed Sidetree payload is
// derived from.
package canonicalizer

import (
	"encoding/json"

	"github.com/gowebpki/jcs"
)

// MarshalCanonical marshals v to JSON and then rewrites it into JCS
// canonical form: sorted object keys, no insignificant whitespace, and the
// ECMAScript number serialization required by RFC 8785.
func MarshalCanonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return jcs.Transform(raw)
}
