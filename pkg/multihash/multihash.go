// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package multihash computes and verifies the multihash-encoded,
// base64url-wrapped hashes used throughout the Sidetree operation model:
// delta hashes, reveal values and (double-hashed) commitments.
package multihash

import (
	"crypto"
	"encoding/base64"
	"fmt"
	"hash"

	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"

	"github.com/decentralized-identity/sidetree-resolver/pkg/canonicalizer"
)

// Supported multihash codes, per the IANA/multiformats table.
const (
	SHA2_256 = 18
	SHA2_512 = 19
)

// EncodeToString base64url-encodes (no padding) raw bytes.
func EncodeToString(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeString base64url-decodes (no padding) a string.
func DecodeString(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

// GetHash returns the standard library hash.Hash for a supported multihash
// code.
func GetHash(code uint) (h hash.Hash, err error) {
	switch code {
	case SHA2_256:
		h = crypto.SHA256.New()
	case SHA2_512:
		h = crypto.SHA512.New()
	default:
		err = fmt.Errorf("algorithm not supported, unable to compute hash: %d", code)
	}

	return h, err
}

// Hash computes the multihash-encoded digest of content using code, and
// returns the raw (not yet base64url-encoded) multihash bytes.
func Hash(code uint, content []byte) ([]byte, error) {
	h, err := GetHash(code)
	if err != nil {
		return nil, err
	}

	if _, err := h.Write(content); err != nil {
		return nil, err
	}

	return multihash.Encode(h.Sum(nil), uint64(code))
}

// HashThenEncode computes the multihash of content and base64url-encodes
// it.
func HashThenEncode(code uint, content []byte) (string, error) {
	raw, err := Hash(code, content)
	if err != nil {
		return "", err
	}

	return EncodeToString(raw), nil
}

// CanonicalizeThenHashThenEncode JCS-canonicalizes v, hashes it, and
// base64url-encodes the multihash. This is the shape used for delta
// hashes.
func CanonicalizeThenHashThenEncode(code uint, v interface{}) (string, error) {
	canonical, err := canonicalizer.MarshalCanonical(v)
	if err != nil {
		return "", err
	}

	return HashThenEncode(code, canonical)
}

// GetCode returns the multihash code embedded in an encoded multihash
// string.
func GetCode(encoded string) (uint64, error) {
	raw, err := DecodeString(encoded)
	if err != nil {
		return 0, err
	}

	mh, err := multihash.Decode(raw)
	if err != nil {
		return 0, err
	}

	return mh.Code, nil
}

// IsComputedUsingAlgorithm reports whether encoded was hashed using code.
func IsComputedUsingAlgorithm(encoded string, code uint64) bool {
	actual, err := GetCode(encoded)
	if err != nil {
		return false
	}

	return actual == code
}

// IsComputedUsingOneOf reports whether encoded was hashed using one of the
// given codes, returning the matching code.
func IsComputedUsingOneOf(encoded string, codes []uint) (uint, bool) {
	actual, err := GetCode(encoded)
	if err != nil {
		return 0, false
	}

	for _, code := range codes {
		if uint64(code) == actual {
			return code, true
		}
	}

	return 0, false
}

// Validate reports an error unless encoded is a syntactically valid
// multihash computed with one of the allowed codes.
func Validate(encoded string, allowed []uint) error {
	code, err := GetCode(encoded)
	if err != nil {
		return errors.Wrap(err, "invalid multihash")
	}

	for _, a := range allowed {
		if uint64(a) == code {
			return nil
		}
	}

	return fmt.Errorf("multihash algorithm code '%d' is not in the allowed list %v", code, allowed)
}

// IsValidModelMultihash recomputes the multihash of the canonicalized
// model and compares it against encoded, the way a revealed JWK is checked
// against its prior commitment.
func IsValidModelMultihash(model interface{}, encoded string) error {
	code, err := GetCode(encoded)
	if err != nil {
		return err
	}

	computed, err := CanonicalizeThenHashThenEncode(uint(code), model)
	if err != nil {
		return err
	}

	if computed != encoded {
		return errors.New("supplied hash doesn't match original content")
	}

	return nil
}
