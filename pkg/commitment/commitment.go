// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package commitment derives the reveal-value/commitment pair used to
// chain Sidetree operations together. A commitment is the double hash of a
// public key's canonical JWK bytes; the corresponding reveal value is the
// single hash of the same bytes. Hashing a reveal value once more yields the
// commitment it answers, so an operation's reveal value can be checked
// against the previous operation's recorded commitment without the key.
package commitment

import (
	"github.com/decentralized-identity/sidetree-resolver/pkg/jws"
	"github.com/decentralized-identity/sidetree-resolver/pkg/multihash"
)

// GetRevealValue computes the single-hash reveal value for jwk under the
// given multihash code: the multihash of jwk's JCS-canonicalized bytes.
// This must stay in lock-step with multihash.IsValidModelMultihash, which
// is how the operation parsers check a reveal value against the key that
// produced it.
func GetRevealValue(jwk *jws.JWK, multihashCode uint) (string, error) {
	return multihash.CanonicalizeThenHashThenEncode(multihashCode, jwk)
}

// GetCommitment computes the double-hash commitment for jwk under the
// given multihash code.
func GetCommitment(jwk *jws.JWK, multihashCode uint) (string, error) {
	rv, err := GetRevealValue(jwk, multihashCode)
	if err != nil {
		return "", err
	}

	return GetCommitmentFromRevealValue(rv)
}

// GetCommitmentFromRevealValue re-hashes an already-computed reveal value
// (itself a multihash) using the same multihash code it was computed with,
// producing the commitment without needing the original key material.
func GetCommitmentFromRevealValue(revealValue string) (string, error) {
	code, err := multihash.GetCode(revealValue)
	if err != nil {
		return "", err
	}

	rvBytes, err := multihash.DecodeString(revealValue)
	if err != nil {
		return "", err
	}

	return multihash.HashThenEncode(uint(code), rvBytes)
}
