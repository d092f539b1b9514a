// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package jws

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Header names recognized in the protected header of a Sidetree compact
// JWS. No other member may be present.
const (
	HeaderAlgorithm = "alg"
	HeaderKeyID     = "kid"
)

// Headers is a parsed JWS protected header.
type Headers map[string]interface{}

// Algorithm returns the "alg" header value.
func (h Headers) Algorithm() (string, bool) {
	v, ok := h[HeaderAlgorithm]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// KeyID returns the "kid" header value, if present.
func (h Headers) KeyID() (string, bool) {
	v, ok := h[HeaderKeyID]
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// JSONWebSignature is a parsed compact JWS: protected header, payload and
// signature, each still available in both raw and decoded form.
type JSONWebSignature struct {
	ProtectedHeaders Headers
	Payload          []byte
	Signature        []byte

	protectedB64 string
	payloadB64   string
}

// ParseCompact parses (without verifying) a compact-serialized JWS of the
// form base64url(header).base64url(payload).base64url(signature).
func ParseCompact(compact string) (*JSONWebSignature, error) {
	parts := strings.Split(compact, ".")
	if len(parts) != 3 {
		return nil, errors.New("compact JWS: invalid number of parts")
	}

	headerBytes, err := DecodeSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("compact JWS: invalid protected header encoding: %w", err)
	}

	var headers Headers
	if err := json.Unmarshal(headerBytes, &headers); err != nil {
		return nil, fmt.Errorf("compact JWS: invalid protected header: %w", err)
	}

	payload, err := DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("compact JWS: invalid payload encoding: %w", err)
	}

	sig, err := DecodeSegment(parts[2])
	if err != nil {
		return nil, fmt.Errorf("compact JWS: invalid signature encoding: %w", err)
	}

	return &JSONWebSignature{
		ProtectedHeaders: headers,
		Payload:          payload,
		Signature:        sig,
		protectedB64:     parts[0],
		payloadB64:       parts[1],
	}, nil
}

// signingInput is the exact byte sequence the signature covers.
func (j *JSONWebSignature) signingInput() []byte {
	return []byte(j.protectedB64 + "." + j.payloadB64)
}

// Verify checks the JWS signature against key. Only ES256/ES256K
// (ECDSA over P-256/secp256k1 with an IEEE P1363 r||s signature) are
// supported, which is all Sidetree operations use.
func (j *JSONWebSignature) Verify(key *JWK) error {
	alg, ok := j.ProtectedHeaders.Algorithm()
	if !ok {
		return errors.New("missing algorithm in protected header")
	}

	switch alg {
	case "ES256", "ES256K":
		return j.verifyECDSA(key)
	default:
		return fmt.Errorf("unsupported signature algorithm: %s", alg)
	}
}

func (j *JSONWebSignature) verifyECDSA(jwk *JWK) error {
	pub, ok := jwk.Public().Key.(*ecdsa.PublicKey)
	if !ok {
		return errors.New("jws: key is not an ECDSA public key")
	}

	size := curveSize(pub.Curve)
	if len(j.Signature) != 2*size {
		return errors.New("jws: invalid signature length")
	}

	r := new(big.Int).SetBytes(j.Signature[:size])
	s := new(big.Int).SetBytes(j.Signature[size:])

	digest := ecdsaDigest(pub, j.signingInput())

	if !ecdsa.Verify(pub, digest, r, s) {
		return errors.New("jws: signature verification failed")
	}

	return nil
}

// ecdsaDigest hashes signingInput with the digest algorithm associated
// with pub's curve. Both P-256 and secp256k1 operations in this module use
// SHA-256, per the ES256/ES256K conventions Sidetree specifies.
func ecdsaDigest(pub *ecdsa.PublicKey, signingInput []byte) []byte {
	sum := sha256.Sum256(signingInput)

	return sum[:]
}

// DecodeSegment base64url-decodes (no padding) one compact-serialization
// segment.
func DecodeSegment(seg string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(seg)
}

// EncodeSegment base64url-encodes (no padding) one compact-serialization
// segment.
func EncodeSegment(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}
