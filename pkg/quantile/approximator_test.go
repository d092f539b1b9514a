// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package quantile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueApproximator_ZeroIsBucketZero(t *testing.T) {
	a := NewValueApproximator(1000)
	require.Equal(t, 0, a.Normalize(0))
	require.EqualValues(t, 0, a.Denormalize(0))
}

func TestValueApproximator_MonotonicBuckets(t *testing.T) {
	a := NewValueApproximator(10000)

	prev := a.Normalize(1)
	for v := uint64(2); v < 5000; v *= 2 {
		next := a.Normalize(v)
		require.GreaterOrEqual(t, next, prev)
		prev = next
	}
}

func TestValueApproximator_CapsAtMaxValue(t *testing.T) {
	a := NewValueApproximator(100)
	require.Equal(t, a.Normalize(100), a.Normalize(100000))
}

func TestValueApproximator_MaxBucket(t *testing.T) {
	a := NewValueApproximator(1000)
	require.Equal(t, a.Normalize(1000), a.MaxBucket())
}

func TestValueApproximator_DenormalizeApproximatesNormalize(t *testing.T) {
	a := NewValueApproximator(1_000_000)

	for _, v := range []uint64{1, 10, 100, 1000, 100000} {
		bucket := a.Normalize(v)
		denorm := a.Denormalize(bucket)

		// denormalize is a representative value for the bucket, not an
		// exact inverse; it should be in the same order of magnitude.
		require.InDelta(t, float64(v), float64(denorm), float64(v)+1)
	}
}
