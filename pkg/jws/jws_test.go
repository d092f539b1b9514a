// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package jws

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, priv *ecdsa.PrivateKey, payload []byte) string {
	t.Helper()

	header := EncodeSegment([]byte(`{"alg":"ES256K"}`))
	body := EncodeSegment(payload)

	digest := sha256.Sum256([]byte(header + "." + body))

	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	require.NoError(t, err)

	sig := append(leftPad(r.Bytes(), 32), leftPad(s.Bytes(), 32)...)

	return header + "." + body + "." + EncodeSegment(sig)
}

func leftPad(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}

	out := make([]byte, size-len(b))

	return append(out, b...)
}

func TestParseCompact_InvalidShape(t *testing.T) {
	_, err := ParseCompact("only.two")
	require.Error(t, err)

	_, err = ParseCompact("not-base64!.not-base64!.not-base64!")
	require.Error(t, err)
}

func TestParseCompact_Headers(t *testing.T) {
	priv, err := ecdsa.GenerateKey(btcec.S256(), rand.Reader)
	require.NoError(t, err)

	compact := sign(t, priv, []byte(`{"hello":"world"}`))

	parsed, err := ParseCompact(compact)
	require.NoError(t, err)

	alg, ok := parsed.ProtectedHeaders.Algorithm()
	require.True(t, ok)
	require.Equal(t, "ES256K", alg)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(parsed.Payload, &payload))
	require.Equal(t, "world", payload["hello"])
}

func TestVerify_ValidSignature(t *testing.T) {
	priv, err := ecdsa.GenerateKey(btcec.S256(), rand.Reader)
	require.NoError(t, err)

	jwk, err := FromECDSAPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	compact := sign(t, priv, []byte(`{"foo":"bar"}`))

	parsed, err := ParseCompact(compact)
	require.NoError(t, err)

	require.NoError(t, parsed.Verify(jwk))
}

func TestVerify_WrongKeyFails(t *testing.T) {
	priv, err := ecdsa.GenerateKey(btcec.S256(), rand.Reader)
	require.NoError(t, err)

	other, err := ecdsa.GenerateKey(btcec.S256(), rand.Reader)
	require.NoError(t, err)

	otherJWK, err := FromECDSAPublicKey(&other.PublicKey)
	require.NoError(t, err)

	compact := sign(t, priv, []byte(`{"foo":"bar"}`))

	parsed, err := ParseCompact(compact)
	require.NoError(t, err)

	require.Error(t, parsed.Verify(otherJWK))
}

func TestVerify_TamperedPayloadFails(t *testing.T) {
	priv, err := ecdsa.GenerateKey(btcec.S256(), rand.Reader)
	require.NoError(t, err)

	jwk, err := FromECDSAPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	compact := sign(t, priv, []byte(`{"foo":"bar"}`))

	parts := strings.Split(compact, ".")
	parts[1] = EncodeSegment([]byte(`{"foo":"baz"}`))
	tampered := strings.Join(parts, ".")

	parsed, err := ParseCompact(tampered)
	require.NoError(t, err)

	require.Error(t, parsed.Verify(jwk))
}

func TestVerify_UnsupportedAlgorithm(t *testing.T) {
	header := EncodeSegment([]byte(`{"alg":"none"}`))
	body := EncodeSegment([]byte(`{}`))
	compact := header + "." + body + "." + EncodeSegment([]byte{0x01})

	parsed, err := ParseCompact(compact)
	require.NoError(t, err)

	jwk := &JWK{}
	require.Error(t, parsed.Verify(jwk))
}

func TestJWK_MarshalUnmarshalRoundTrip(t *testing.T) {
	priv, err := ecdsa.GenerateKey(btcec.S256(), rand.Reader)
	require.NoError(t, err)

	jwk, err := FromECDSAPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	raw, err := json.Marshal(jwk)
	require.NoError(t, err)

	var roundTripped JWK
	require.NoError(t, json.Unmarshal(raw, &roundTripped))

	require.NoError(t, roundTripped.Validate())
	require.Equal(t, secp256k1Crv, roundTripped.Crv)
}

func TestJWK_Validate_Nil(t *testing.T) {
	var jwk *JWK
	require.ErrorIs(t, jwk.Validate(), ErrInvalidKey)
}
