// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package quantile

import "github.com/pkg/errors"

// EncodeRunLength run-length encodes a frequency vector as alternating
// (value, count) pairs, one pair per maximal run of equal values. An empty
// vector encodes to an empty slice.
func EncodeRunLength(vector []uint64) []uint64 {
	encoded := make([]uint64, 0, len(vector))

	i := 0
	for i < len(vector) {
		j := i + 1
		for j < len(vector) && vector[j] == vector[i] {
			j++
		}

		encoded = append(encoded, vector[i], uint64(j-i))
		i = j
	}

	return encoded
}

// DecodeRunLength reverses EncodeRunLength. Both an empty input and an
// odd-length input are malformed and return an error: a real encoding of
// even an empty frequency vector is never itself empty once generated by
// EncodeRunLength over a non-empty vector, so an empty encoded value
// signals a store read that found nothing rather than a legitimate
// all-zero vector.
func DecodeRunLength(encoded []uint64) ([]uint64, error) {
	if len(encoded) == 0 {
		return nil, errors.New("run-length decode: empty input")
	}

	if len(encoded)%2 != 0 {
		return nil, errors.New("run-length decode: odd-length input")
	}

	vector := make([]uint64, 0, len(encoded))

	for i := 0; i < len(encoded); i += 2 {
		value, count := encoded[i], encoded[i+1]
		for k := uint64(0); k < count; k++ {
			vector = append(vector, value)
		}
	}

	return vector, nil
}
