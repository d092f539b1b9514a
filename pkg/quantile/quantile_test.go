// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package quantile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/decentralized-identity/sidetree-resolver/pkg/quantile"
	"github.com/decentralized-identity/sidetree-resolver/pkg/quantile/memstore"
)

func newCalculator(store *memstore.Store) *quantile.Calculator {
	approximator := quantile.NewValueApproximator(10000)

	return quantile.NewCalculator(approximator, 3, 0.5, 0.5, store)
}

func TestCalculator_AddRejectsNonSequentialGroupID(t *testing.T) {
	c := newCalculator(memstore.New())

	_, err := c.Add(1, []uint64{10, 10, 10})
	require.NoError(t, err)

	_, err = c.Add(3, []uint64{10, 10, 10})
	require.Error(t, err)
}

func TestCalculator_QuantileClampedToMaxDeviation(t *testing.T) {
	store := memstore.New()
	c := quantile.NewCalculator(quantile.NewValueApproximator(1_000_000), 2, 0.5, 0.1, store)

	q1, err := c.Add(1, []uint64{100, 100, 100})
	require.NoError(t, err)
	require.Greater(t, q1, float64(0))

	q2, err := c.Add(2, []uint64{100000, 100000, 100000})
	require.NoError(t, err)

	require.LessOrEqual(t, q2, q1*1.1+1)
	require.GreaterOrEqual(t, q2, q1*0.9-1)
}

func TestCalculator_SlidingWindowDropsOldGroups(t *testing.T) {
	store := memstore.New()
	c := quantile.NewCalculator(quantile.NewValueApproximator(1000), 2, 0.5, 1, store)

	_, err := c.Add(1, []uint64{1, 1, 1})
	require.NoError(t, err)

	_, err = c.Add(2, []uint64{1, 1, 1})
	require.NoError(t, err)

	q3, err := c.Add(3, []uint64{500, 500, 500, 500})
	require.NoError(t, err)

	// Window size 2 means group 1's samples have already been evicted by
	// the time group 3 is folded in, so the median is taken over group 2's
	// three 1s and group 3's four 500s and lands in the 500 bucket; the
	// clamp then caps it at twice the previous quantile of 1. Were group 1
	// still counted, its three extra 1s would hold the median at 1.
	require.Greater(t, q3, float64(1))
}

func TestCalculator_RemoveGroupsGEUnwindsStore(t *testing.T) {
	store := memstore.New()
	c := newCalculator(store)

	_, err := c.Add(1, []uint64{10, 10, 10})
	require.NoError(t, err)

	_, err = c.Add(2, []uint64{20, 20, 20})
	require.NoError(t, err)

	require.NoError(t, c.RemoveGroupsGE(2))

	_, ok, err := store.Get(2)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = store.Get(1)
	require.NoError(t, err)
	require.True(t, ok)

	// The calculator must accept group 2 again after the rollback.
	_, err = c.Add(2, []uint64{15, 15, 15})
	require.NoError(t, err)
}

func TestCalculator_Initialize_BootstrapsBeforeGenesis(t *testing.T) {
	store := memstore.New()
	c := newCalculator(store)

	require.NoError(t, c.Initialize(100, 5, 3, 50))

	lastID, ok, err := store.GetLastGroupID()
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 98, lastID)

	firstID, ok, err := store.GetFirstGroupID()
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 94, firstID)
}

func TestCalculator_Initialize_ReloadsExistingGroups(t *testing.T) {
	store := memstore.New()
	c := newCalculator(store)

	_, err := c.Add(1, []uint64{10, 10, 10})
	require.NoError(t, err)

	c2 := newCalculator(store)
	require.NoError(t, c2.Initialize(100, 5, 3, 50))

	lastID, ok, err := store.GetLastGroupID()
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 1, lastID)
}

func TestRecord_EncodedFreqVectorRoundTrips(t *testing.T) {
	store := memstore.New()
	c := newCalculator(store)

	_, err := c.Add(1, []uint64{10, 20, 30})
	require.NoError(t, err)

	record, ok, err := store.Get(1)
	require.NoError(t, err)
	require.True(t, ok)

	decoded, err := quantile.DecodeRunLength(record.EncodedFreqVector)
	require.NoError(t, err)
	require.NotEmpty(t, decoded)
}
