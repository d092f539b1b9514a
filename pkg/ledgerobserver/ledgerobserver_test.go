// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package ledgerobserver_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/decentralized-identity/sidetree-resolver/pkg/ledgerobserver"
	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
	"github.com/decentralized-identity/sidetree-resolver/pkg/opstore/memstore"
	"github.com/decentralized-identity/sidetree-resolver/pkg/quantile"
	quantilememstore "github.com/decentralized-identity/sidetree-resolver/pkg/quantile/memstore"
)

func newCalculator(store *quantilememstore.Store) *quantile.Calculator {
	approximator := quantile.NewValueApproximator(1_000_000)

	return quantile.NewCalculator(approximator, 5, 0.5, 0.5, store)
}

func TestObserver_ObserveIndexesOperations(t *testing.T) {
	store := memstore.New(nil)
	observer := ledgerobserver.New(store, nil, 0)

	txn := ledgerobserver.Transaction{
		TransactionNumber: 1,
		TransactionTime:   100,
		AnchorString:      "anchor1",
		Operations: []ledgerobserver.UnindexedOperation{
			{Type: operation.TypeCreate, UniqueSuffix: "abc", OperationRequest: []byte("req0")},
			{Type: operation.TypeUpdate, UniqueSuffix: "def", OperationRequest: []byte("req1")},
		},
	}

	require.NoError(t, observer.Observe(txn))

	abcOps, err := store.Get("abc")
	require.NoError(t, err)
	require.Len(t, abcOps, 1)
	require.EqualValues(t, 0, abcOps[0].OperationIndex)
	require.Equal(t, "anchor1", abcOps[0].CanonicalReference)

	defOps, err := store.Get("def")
	require.NoError(t, err)
	require.Len(t, defOps, 1)
	require.EqualValues(t, 1, defOps[0].OperationIndex)
}

func TestObserver_ObserveIsIdempotent(t *testing.T) {
	store := memstore.New(nil)
	observer := ledgerobserver.New(store, nil, 0)

	txn := ledgerobserver.Transaction{
		TransactionNumber: 1,
		Operations: []ledgerobserver.UnindexedOperation{
			{Type: operation.TypeCreate, UniqueSuffix: "abc", OperationRequest: []byte("req0")},
		},
	}

	require.NoError(t, observer.Observe(txn))
	require.NoError(t, observer.Observe(txn))

	ops, err := store.Get("abc")
	require.NoError(t, err)
	require.Len(t, ops, 1)
}

func TestObserver_FoldsFeeGroupAtThreshold(t *testing.T) {
	opStore := memstore.New(nil)
	quantileStore := quantilememstore.New()
	calc := newCalculator(quantileStore)

	observer := ledgerobserver.New(opStore, calc, 3)

	for i := uint64(1); i <= 2; i++ {
		require.NoError(t, observer.Observe(ledgerobserver.Transaction{TransactionNumber: i, Fee: 100}))
	}

	_, ok, err := quantileStore.Get(1)
	require.NoError(t, err)
	require.False(t, ok, "group should not flush before groupSize transactions accumulate")

	require.NoError(t, observer.Observe(ledgerobserver.Transaction{TransactionNumber: 3, Fee: 100}))

	_, ok, err = quantileStore.Get(1)
	require.NoError(t, err)
	require.True(t, ok, "group should flush once groupSize transactions have been folded in")
}

func TestObserver_RollbackUnwindsStoreAndQuantile(t *testing.T) {
	opStore := memstore.New(nil)
	quantileStore := quantilememstore.New()
	calc := newCalculator(quantileStore)

	observer := ledgerobserver.New(opStore, calc, 1)

	require.NoError(t, observer.Observe(ledgerobserver.Transaction{
		TransactionNumber: 1,
		Fee:               50,
		Operations: []ledgerobserver.UnindexedOperation{
			{Type: operation.TypeCreate, UniqueSuffix: "abc", OperationRequest: []byte("req0")},
		},
	}))

	require.NoError(t, observer.Observe(ledgerobserver.Transaction{
		TransactionNumber: 2,
		Fee:               50,
		Operations: []ledgerobserver.UnindexedOperation{
			{Type: operation.TypeUpdate, UniqueSuffix: "abc", OperationRequest: []byte("req1")},
		},
	}))

	_, ok, err := quantileStore.Get(2)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, observer.Rollback(1))

	ops, err := opStore.Get("abc")
	require.NoError(t, err)
	require.Len(t, ops, 1)

	_, ok, err = quantileStore.Get(2)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestObserver_WithoutQuantileCalculatorSkipsFeeFolding(t *testing.T) {
	store := memstore.New(nil)
	observer := ledgerobserver.New(store, nil, 2)

	require.NoError(t, observer.Observe(ledgerobserver.Transaction{TransactionNumber: 1, Fee: 10}))
	require.NoError(t, observer.Observe(ledgerobserver.Transaction{TransactionNumber: 2, Fee: 10}))
	require.NoError(t, observer.Rollback(1))
}
