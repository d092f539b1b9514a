// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package quantile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeRunLength_Empty(t *testing.T) {
	require.Empty(t, EncodeRunLength(nil))
	require.Empty(t, EncodeRunLength([]uint64{}))
}

func TestEncodeDecodeRunLength_RoundTrip(t *testing.T) {
	cases := [][]uint64{
		{1},
		{0, 0, 0, 5, 5, 1},
		{7, 7, 7, 7},
		{1, 2, 3, 4, 5},
	}

	for _, vec := range cases {
		encoded := EncodeRunLength(vec)
		decoded, err := DecodeRunLength(encoded)
		require.NoError(t, err)
		require.Equal(t, vec, decoded)
	}
}

func TestEncodeRunLength_PairShape(t *testing.T) {
	encoded := EncodeRunLength([]uint64{3, 3, 3, 9})
	require.Equal(t, []uint64{3, 3, 9, 1}, encoded)
}

func TestDecodeRunLength_EmptyIsError(t *testing.T) {
	_, err := DecodeRunLength(nil)
	require.Error(t, err)
}

func TestDecodeRunLength_OddLengthIsError(t *testing.T) {
	_, err := DecodeRunLength([]uint64{1, 2, 3})
	require.Error(t, err)
}
