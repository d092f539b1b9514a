// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package document

// KeyPurpose enumerates the verification relationships a public key may be
// used for.
type KeyPurpose = string

const (
	KeyPurposeAuthentication       KeyPurpose = "authentication"
	KeyPurposeAssertionMethod      KeyPurpose = "assertionMethod"
	KeyPurposeKeyAgreement         KeyPurpose = "keyAgreement"
	KeyPurposeCapabilityDelegation KeyPurpose = "capabilityDelegation"
	KeyPurposeCapabilityInvocation KeyPurpose = "capabilityInvocation"
)

// PublicKey is a single entry of the document's "publicKeys" array.
type PublicKey map[string]interface{}

// ID returns the key's id property.
func (p PublicKey) ID() string {
	return stringValue(p, IDProperty)
}

// Type returns the key's type property.
func (p PublicKey) Type() string {
	return stringValue(p, TypeProperty)
}

// Purpose returns the key's purposes array, as plain strings.
func (p PublicKey) Purpose() []string {
	return StringArray(p[PurposesProperty])
}

// PublicKeyJwk returns the key's JWK representation, if present.
func (p PublicKey) PublicKeyJwk() JWK {
	v, ok := p[PublicKeyJwkProperty]
	if !ok {
		return nil
	}

	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}

	return JWKFromMap(m)
}

// PublicKeyBase58 returns the key's base58-encoded raw key material, if
// present.
func (p PublicKey) PublicKeyBase58() string {
	return stringValue(p, PublicKeyBase58Property)
}

// ParsePublicKeys converts a raw "publicKeys" property value into typed
// entries, ignoring anything that isn't a JSON object.
func ParsePublicKeys(value interface{}) []PublicKey {
	arr, ok := value.([]interface{})
	if !ok {
		return nil
	}

	keys := make([]PublicKey, 0, len(arr))

	for _, v := range arr {
		if m, ok := v.(map[string]interface{}); ok {
			keys = append(keys, PublicKey(m))
		}
	}

	return keys
}

func stringValue(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}

	s, _ := v.(string)

	return s
}

// StringArray converts a raw JSON array value into a []string, ignoring
// any non-string elements.
func StringArray(value interface{}) []string {
	arr, ok := value.([]interface{})
	if !ok {
		return nil
	}

	out := make([]string, 0, len(arr))

	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}

	return out
}
