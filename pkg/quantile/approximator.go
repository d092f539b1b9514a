// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package quantile implements the sliding-window quantile calculator used
// to track an adaptive per-operation fee threshold: a value approximator
// that buckets raw sample values logarithmically, a run-length codec for
// the resulting frequency vectors, and the calculator itself.
package quantile

import "math"

// DefaultBase is the logarithm base the value approximator buckets with
// (b = sqrt(2) ≈ 1.414): each bucket's lower bound is sqrt(2) times the
// previous one's, so the bounds double every two buckets.
const DefaultBase = math.Sqrt2

// ValueApproximator maps a raw positive sample value to a small integer
// bucket index and back, so a quantile calculation can track a frequency
// vector instead of the full set of raw values. Bucket 0 always represents
// the value zero; buckets 1..MaxBucket cover (0, MaxValue] logarithmically.
type ValueApproximator struct {
	Base     float64
	MaxValue uint64
}

// NewValueApproximator returns a ValueApproximator using DefaultBase.
func NewValueApproximator(maxValue uint64) ValueApproximator {
	return ValueApproximator{Base: DefaultBase, MaxValue: maxValue}
}

// MaxBucket returns the highest bucket index a sample can normalize to,
// i.e. Normalize(MaxValue). Callers use this to size frequency vectors.
func (a ValueApproximator) MaxBucket() int {
	return a.Normalize(a.MaxValue)
}

// Normalize buckets v: 0 maps to bucket 0, and any v > 0 (capped at
// MaxValue) maps to 1 + floor(log_base(v)).
func (a ValueApproximator) Normalize(v uint64) int {
	if v == 0 {
		return 0
	}

	capped := v
	if capped > a.MaxValue {
		capped = a.MaxValue
	}

	return 1 + int(math.Floor(math.Log(float64(capped))/math.Log(a.Base)))
}

// Denormalize returns the representative value for bucket: 0 for bucket 0,
// and base^(bucket-1) otherwise.
func (a ValueApproximator) Denormalize(bucket int) uint64 {
	if bucket <= 0 {
		return 0
	}

	return uint64(math.Round(math.Pow(a.Base, float64(bucket-1))))
}
