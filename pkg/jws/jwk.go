// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package jws implements the subset of JSON Web Key and compact JSON Web
// Signature handling the resolver needs: secp256k1-aware JWK (de)serialization
// and verification of the compact JWS carried in Update/Recover/Deactivate
// signed data.
package jws

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec"
	josejwk "github.com/square/go-jose/v3"
	"github.com/square/go-jose/v3/json"
	"golang.org/x/crypto/ed25519"
)

const (
	secp256k1Crv  = "secp256k1"
	secp256k1Kty  = "EC"
	secp256k1Size = 32
	bitsPerByte   = 8
)

// ErrInvalidKey is returned when a JWK fails structural validation.
var ErrInvalidKey = errors.New("invalid JWK")

// JWK (JSON Web Key) represents a cryptographic public (or, for test
// fixtures, private) key as carried on the wire in a Sidetree operation.
type JWK struct {
	josejwk.JSONWebKey

	Kty string
	Crv string
	// Nonce is an optional recovery nonce carried alongside the key,
	// bound into the commitment the same way the rest of the key is.
	Nonce string
}

// FromECDSAPublicKey builds a JWK from an ECDSA public key, choosing the
// secp256k1 wire representation when the curve is btcec's S256.
func FromECDSAPublicKey(pub *ecdsa.PublicKey) (*JWK, error) {
	if pub.Curve == btcec.S256() {
		return &JWK{Kty: secp256k1Kty, Crv: secp256k1Crv, JSONWebKey: josejwk.JSONWebKey{Key: pub}}, nil
	}

	return &JWK{JSONWebKey: josejwk.JSONWebKey{Key: pub}}, nil
}

// Validate reports a structural problem with the key: missing key material
// or an unparseable type.
func (j *JWK) Validate() error {
	if j == nil {
		return ErrInvalidKey
	}

	if isSecp256k1(j.Kty, j.Crv) {
		if j.Key == nil {
			return ErrInvalidKey
		}

		return nil
	}

	switch j.Public().Key.(type) {
	case *ecdsa.PublicKey, ed25519.PublicKey:
		return nil
	default:
		return fmt.Errorf("unsupported public key type in kid '%s'", j.KeyID)
	}
}

// PublicKeyBytes converts the key's public portion to the compressed
// (secp256k1) or PKIX DER (everything else) byte representation used for
// commitment hashing.
func (j *JWK) PublicKeyBytes() ([]byte, error) {
	if isSecp256k1(j.Kty, j.Crv) {
		var ecPubKey *ecdsa.PublicKey

		ecPubKey, ok := j.Key.(*ecdsa.PublicKey)
		if !ok {
			ecPubKey = &j.Key.(*ecdsa.PrivateKey).PublicKey
		}

		pubKey := &btcec.PublicKey{
			Curve: btcec.S256(),
			X:     ecPubKey.X,
			Y:     ecPubKey.Y,
		}

		return pubKey.SerializeCompressed(), nil
	}

	switch pubKey := j.Public().Key.(type) {
	case *ecdsa.PublicKey, ed25519.PublicKey:
		pubKBytes, err := x509.MarshalPKIXPublicKey(pubKey)
		if err != nil {
			return nil, errors.New("failed to read public key bytes")
		}

		return pubKBytes, nil
	default:
		return nil, fmt.Errorf("unsupported public key type in kid '%s'", j.KeyID)
	}
}

// UnmarshalJSON reads a key from its JSON representation.
func (j *JWK) UnmarshalJSON(jwkBytes []byte) error {
	var key jsonWebKey

	if err := json.Unmarshal(jwkBytes, &key); err != nil {
		return fmt.Errorf("unable to read JWK: %w", err)
	}

	if isSecp256k1(key.Kty, key.Crv) {
		jwk, err := unmarshalSecp256k1(&key)
		if err != nil {
			return fmt.Errorf("unable to read JWK: %w", err)
		}

		*j = *jwk
	} else {
		var joseJWK josejwk.JSONWebKey

		if err := json.Unmarshal(jwkBytes, &joseJWK); err != nil {
			return fmt.Errorf("unable to read jose JWK, %w", err)
		}

		j.JSONWebKey = joseJWK
	}

	j.Kty = key.Kty
	j.Crv = key.Crv
	j.Nonce = key.Nonce

	return nil
}

// MarshalJSON serializes the given key to its JSON representation.
func (j *JWK) MarshalJSON() ([]byte, error) {
	if isSecp256k1(j.Kty, j.Crv) {
		return marshalSecp256k1(j)
	}

	return (&j.JSONWebKey).MarshalJSON()
}

func isSecp256k1(kty, crv string) bool {
	return strings.EqualFold(kty, secp256k1Kty) && strings.EqualFold(crv, secp256k1Crv)
}

func unmarshalSecp256k1(jwk *jsonWebKey) (*JWK, error) {
	if jwk.X == nil || jwk.Y == nil {
		return nil, ErrInvalidKey
	}

	curve := btcec.S256()

	if curveSize(curve) != len(jwk.X.data) || curveSize(curve) != len(jwk.Y.data) {
		return nil, ErrInvalidKey
	}

	if jwk.D != nil && dSize(curve) != len(jwk.D.data) {
		return nil, ErrInvalidKey
	}

	x := jwk.X.bigInt()
	y := jwk.Y.bigInt()

	if !curve.IsOnCurve(x, y) {
		return nil, ErrInvalidKey
	}

	var key interface{}

	if jwk.D != nil {
		key = &ecdsa.PrivateKey{
			PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
			D:         jwk.D.bigInt(),
		}
	} else {
		key = &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	}

	return &JWK{
		JSONWebKey: josejwk.JSONWebKey{Key: key, KeyID: jwk.Kid, Algorithm: jwk.Alg, Use: jwk.Use},
		Kty:        secp256k1Kty,
		Crv:        secp256k1Crv,
		Nonce:      jwk.Nonce,
	}, nil
}

func marshalSecp256k1(jwk *JWK) ([]byte, error) {
	var raw jsonWebKey

	switch ecdsaKey := jwk.Key.(type) {
	case *ecdsa.PublicKey:
		raw = jsonWebKey{
			Kty: secp256k1Kty,
			Crv: secp256k1Crv,
			X:   newFixedSizeBuffer(ecdsaKey.X.Bytes(), secp256k1Size),
			Y:   newFixedSizeBuffer(ecdsaKey.Y.Bytes(), secp256k1Size),
		}
	case *ecdsa.PrivateKey:
		raw = jsonWebKey{
			Kty: secp256k1Kty,
			Crv: secp256k1Crv,
			X:   newFixedSizeBuffer(ecdsaKey.X.Bytes(), secp256k1Size),
			Y:   newFixedSizeBuffer(ecdsaKey.Y.Bytes(), secp256k1Size),
			D:   newFixedSizeBuffer(ecdsaKey.D.Bytes(), dSize(ecdsaKey.Curve)),
		}
	}

	raw.Kid = jwk.KeyID
	raw.Alg = jwk.Algorithm
	raw.Use = jwk.Use
	raw.Nonce = jwk.Nonce

	return json.Marshal(raw)
}

// jsonWebKey contains the subset of JSON Web Key properties this package
// round-trips, plus the Sidetree-specific nonce extension.
type jsonWebKey struct {
	Use   string `json:"use,omitempty"`
	Kty   string `json:"kty,omitempty"`
	Kid   string `json:"kid,omitempty"`
	Crv   string `json:"crv,omitempty"`
	Alg   string `json:"alg,omitempty"`
	Nonce string `json:"nonce,omitempty"`

	X *byteBuffer `json:"x,omitempty"`
	Y *byteBuffer `json:"y,omitempty"`

	D *byteBuffer `json:"d,omitempty"`
}

func curveSize(crv elliptic.Curve) int {
	bits := crv.Params().BitSize

	div := bits / bitsPerByte
	mod := bits % bitsPerByte

	if mod == 0 {
		return div
	}

	return div + 1
}

func dSize(curve elliptic.Curve) int {
	order := curve.Params().P
	bitLen := order.BitLen()
	size := bitLen / bitsPerByte

	if bitLen%bitsPerByte != 0 {
		size++
	}

	return size
}

// byteBuffer represents a slice of bytes serialized as url-safe base64.
type byteBuffer struct {
	data []byte
}

func (b *byteBuffer) UnmarshalJSON(data []byte) error {
	var encoded string

	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}

	if encoded == "" {
		return nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return err
	}

	*b = byteBuffer{data: decoded}

	return nil
}

func (b *byteBuffer) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.base64())
}

func (b *byteBuffer) base64() string {
	return base64.RawURLEncoding.EncodeToString(b.data)
}

func (b byteBuffer) bigInt() *big.Int {
	return new(big.Int).SetBytes(b.data)
}

func newFixedSizeBuffer(data []byte, length int) *byteBuffer {
	padded := make([]byte, length-len(data))

	return &byteBuffer{data: append(padded, data...)}
}
