// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package document models the Sidetree document state patches are applied
// to, and the DID-document-shaped view the resolver returns.
package document

import "encoding/json"

// Well-known top-level document properties.
const (
	PublicKeyProperty = "publicKeys"
	ServiceProperty   = "services"
)

// Well-known public key / service object properties.
const (
	IDProperty              = "id"
	TypeProperty            = "type"
	PurposesProperty        = "purposes"
	PublicKeyJwkProperty    = "publicKeyJwk"
	PublicKeyBase58Property = "publicKeyBase58"
	ServiceEndpointProperty = "serviceEndpoint"
)

// Well-known DID method resolution metadata properties.
const (
	DeactivatedProperty        = "deactivated"
	RecoveryCommitmentProperty = "recoveryCommitment"
	UpdateCommitmentProperty   = "updateCommitment"
)

// Document is the internal (pre-transformation) document state: a JSON
// object with "publicKeys" and "services" arrays maintained by patch
// application.
type Document map[string]interface{}

// NewDocumentFromBytes parses raw JSON into a Document.
func NewDocumentFromBytes(data []byte) (Document, error) {
	if len(data) == 0 {
		return make(Document), nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// Bytes serializes the document to JSON.
func (d Document) Bytes() ([]byte, error) {
	return json.Marshal(d)
}

// PublicKeys returns the document's public key array.
func (d Document) PublicKeys() []PublicKey {
	return ParsePublicKeys(d[PublicKeyProperty])
}

// Services returns the document's service array.
func (d Document) Services() []Service {
	return ParseServices(d[ServiceProperty])
}

// DidDocumentFromJSONLDObject is an identity conversion kept for call sites
// that want to make explicit they are treating the resolved state as a
// plain JSON-LD object rather than the patch-oriented Document view.
func DidDocumentFromJSONLDObject(doc Document) Document {
	return doc
}
