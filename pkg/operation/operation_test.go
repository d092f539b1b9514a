// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package operation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortByTransaction(t *testing.T) {
	ops := []*AnchoredOperation{
		{TransactionNumber: 2, OperationIndex: 0},
		{TransactionNumber: 1, OperationIndex: 1},
		{TransactionNumber: 1, OperationIndex: 0},
	}

	SortByTransaction(ops)

	require.Equal(t, uint64(1), ops[0].TransactionNumber)
	require.Equal(t, uint(0), ops[0].OperationIndex)
	require.Equal(t, uint64(1), ops[1].TransactionNumber)
	require.Equal(t, uint(1), ops[1].OperationIndex)
	require.Equal(t, uint64(2), ops[2].TransactionNumber)
}

func TestPublished(t *testing.T) {
	require.True(t, (&AnchoredOperation{CanonicalReference: "txn-1"}).Published())
	require.False(t, (&AnchoredOperation{}).Published())
}
