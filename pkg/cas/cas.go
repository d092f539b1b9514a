// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package cas defines the content-addressed storage collaborator the
// resolver's operation bag is ultimately sourced from. The fetch path
// itself lives outside this module: this package only carries the address
// type and the Reader/Writer contracts a batch writer/observer would use
// to dereference a multihash into the batch file bytes that are then
// split into anchored operations.
package cas

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	gomultihash "github.com/multiformats/go-multihash"

	"github.com/decentralized-identity/sidetree-resolver/pkg/multihash"
)

// rawCodec is the codec CAS blobs are addressed under. Sidetree batch
// files are opaque byte blobs, not IPLD DAG nodes, but go-cid requires a
// codec to mint a CID and this is the value the reference CAS
// implementations use for raw data.
const rawCodec = 0x55

// Address is a content address: a multihash-encoded digest of a CAS blob,
// wrapped as a CID so it composes with IPFS-family tooling.
type Address struct {
	cid cid.Cid
}

// NewAddress wraps an already base64url-encoded multihash string (the form
// operation.buffer hashes and reveal values use elsewhere in this module)
// as a CAS Address.
func NewAddress(encodedMultihash string) (Address, error) {
	raw, err := multihash.DecodeString(encodedMultihash)
	if err != nil {
		return Address{}, fmt.Errorf("cas: decode multihash: %w", err)
	}

	mh, err := gomultihash.Cast(raw)
	if err != nil {
		return Address{}, fmt.Errorf("cas: cast multihash: %w", err)
	}

	return Address{cid: cid.NewCidV1(rawCodec, mh)}, nil
}

// AddressOf hashes content under code and returns its Address, mirroring
// the encoding a CAS writer performs when it stores a new blob.
func AddressOf(code uint, content []byte) (Address, error) {
	encoded, err := multihash.HashThenEncode(code, content)
	if err != nil {
		return Address{}, err
	}

	return NewAddress(encoded)
}

// ParseAddress parses a multibase-prefixed CIDv1 string (the form String
// and StringOfBase produce) back into an Address.
func ParseAddress(s string) (Address, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("cas: decode address: %w", err)
	}

	return Address{cid: c}, nil
}

// String returns the address's canonical CIDv1 string form (base32lower),
// suitable for use as a cache key or log field.
func (a Address) String() string {
	return a.cid.String()
}

// StringOfBase renders the address under the given multibase encoding, for
// interop with CAS backends that key blobs under a different base (e.g.
// multibase.Base58BTC).
func (a Address) StringOfBase(base multibase.Encoding) (string, error) {
	s, err := a.cid.StringOfBase(base)
	if err != nil {
		return "", fmt.Errorf("cas: encode address: %w", err)
	}

	return s, nil
}

// EncodedMultihash returns the address's underlying multihash in the
// base64url encoding used elsewhere in this module (delta hashes, reveal
// values, commitments).
func (a Address) EncodedMultihash() string {
	return multihash.EncodeToString(a.cid.Hash())
}

// Reader fetches blobs by content address. A batch writer/observer
// implementation (out of scope for this module) dereferences
// core/provisional/chunk file addresses found on-ledger through this
// interface before handing the resulting bytes to a txnprovider for
// splitting into operation.AnchoredOperation.OperationRequest buffers.
type Reader interface {
	// Read returns the blob stored at addr, or an error if it cannot be
	// retrieved (not found, exceeds maxSize, network failure).
	Read(ctx context.Context, addr Address, maxSize uint64) ([]byte, error)
}

// Writer stores a blob and returns the Address it can later be read back
// by.
type Writer interface {
	Write(ctx context.Context, content []byte) (Address, error)
}
