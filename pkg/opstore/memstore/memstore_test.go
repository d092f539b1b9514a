// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package memstore_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
	"github.com/decentralized-identity/sidetree-resolver/pkg/opstore/memstore"
)

func op(suffix string, txn uint64, idx uint) *operation.AnchoredOperation {
	return &operation.AnchoredOperation{
		Type:              operation.TypeUpdate,
		UniqueSuffix:      suffix,
		TransactionNumber: txn,
		OperationIndex:    idx,
	}
}

func TestStore_PutIsIdempotent(t *testing.T) {
	s := memstore.New(nil)

	require.NoError(t, s.Put(op("abc", 1, 0)))
	require.NoError(t, s.Put(op("abc", 1, 0)))
	require.NoError(t, s.Put(op("abc", 1, 0)))

	ops, err := s.Get("abc")
	require.NoError(t, err)
	require.Len(t, ops, 1)
}

func TestStore_GetOrderedByTransaction(t *testing.T) {
	s := memstore.New(nil)

	require.NoError(t, s.Put(
		op("abc", 3, 0),
		op("abc", 1, 1),
		op("abc", 1, 0),
		op("abc", 2, 0),
	))

	ops, err := s.Get("abc")
	require.NoError(t, err)
	require.Len(t, ops, 4)

	for i := 1; i < len(ops); i++ {
		require.True(t, ops[i-1].Less(ops[i]))
	}
}

func TestStore_GetUnknownSuffix(t *testing.T) {
	s := memstore.New(nil)

	ops, err := s.Get("nope")
	require.NoError(t, err)
	require.Empty(t, ops)
}

func TestStore_DeleteAboveThreshold(t *testing.T) {
	s := memstore.New(nil)

	require.NoError(t, s.Put(op("abc", 1, 0), op("abc", 2, 0), op("abc", 3, 0)))

	threshold := uint64(2)
	require.NoError(t, s.Delete(&threshold))

	ops, err := s.Get("abc")
	require.NoError(t, err)
	require.Len(t, ops, 2)
}

func TestStore_DeleteAllowsReinsertionAfterRollback(t *testing.T) {
	s := memstore.New(nil)

	require.NoError(t, s.Put(op("abc", 1, 0), op("abc", 2, 0)))

	threshold := uint64(1)
	require.NoError(t, s.Delete(&threshold))

	require.NoError(t, s.Put(op("abc", 2, 0)))

	ops, err := s.Get("abc")
	require.NoError(t, err)
	require.Len(t, ops, 2)
}

func TestStore_DeleteNilClearsEverything(t *testing.T) {
	s := memstore.New(nil)

	require.NoError(t, s.Put(op("abc", 1, 0), op("def", 1, 0)))
	require.NoError(t, s.Delete(nil))

	ops, err := s.Get("abc")
	require.NoError(t, err)
	require.Empty(t, ops)
}

func TestStore_ErrorInjection(t *testing.T) {
	wantErr := errors.New("boom")
	s := memstore.New(wantErr)

	require.ErrorIs(t, s.Put(op("abc", 1, 0)), wantErr)

	_, err := s.Get("abc")
	require.ErrorIs(t, err, wantErr)

	require.ErrorIs(t, s.Delete(nil), wantErr)
}
