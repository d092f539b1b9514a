// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package quantile

import (
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/pkg/errors"
)

var logger = log.New("sidetree-resolver/quantile")

// Record is one group's persisted quantile state: the clamped quantile
// computed when the group was added, and that group's own (not the
// window's aggregate) run-length encoded frequency vector.
type Record struct {
	GroupID           uint64
	Quantile          float64
	EncodedFreqVector []uint64
}

// QuantileStore persists per-group quantile Records, keyed by group id.
// Implementations must tolerate reads concurrent with writes without
// tearing individual records.
type QuantileStore interface {
	Put(record *Record) error
	Get(groupID uint64) (*Record, bool, error)
	GetFirstGroupID() (uint64, bool, error)
	GetLastGroupID() (uint64, bool, error)
	RemoveGroupsGE(groupID uint64) error
	Clear() error
}

// Calculator tracks a configured quantile (e.g. the median) of per-group
// sample values over a sliding window of the last WindowSize groups, using
// compact per-bucket frequency vectors rather than the raw samples.
//
// Calculator is not safe for concurrent use: callers (the ledger observer)
// must serialize Add and RemoveGroupsGE calls themselves, per the single
// observer assumption in this module's concurrency model.
type Calculator struct {
	Approximator     ValueApproximator
	WindowSize       int
	QuantileFraction float64
	MaxDeviation     float64
	Store            QuantileStore

	window        [][]uint64
	aggregate     []uint64
	havePrevGroup bool
	prevGroupID   uint64
	prevQuantile  float64
}

// NewCalculator returns a Calculator configured with the given parameters,
// with an empty in-memory window. Call Initialize (typical) or rely on the
// first Add to establish prevGroupID before use.
func NewCalculator(approximator ValueApproximator, windowSize int, quantileFraction, maxDeviation float64, store QuantileStore) *Calculator {
	return &Calculator{
		Approximator:     approximator,
		WindowSize:       windowSize,
		QuantileFraction: quantileFraction,
		MaxDeviation:     maxDeviation,
		Store:            store,
		aggregate:        make([]uint64, approximator.MaxBucket()+1),
	}
}

// Add folds one group's raw sample values into the window, advances the
// aggregate frequency vector, computes and clamps the new quantile, and
// persists the result. groupID must equal the previously added group's id
// plus one; violating the sequential invariant is fatal and returned as an
// error, per this calculator's precondition contract.
func (c *Calculator) Add(groupID uint64, samples []uint64) (float64, error) {
	if c.havePrevGroup && groupID != c.prevGroupID+1 {
		return 0, errors.Errorf("quantile: non-sequential group id: got %d, expected %d", groupID, c.prevGroupID+1)
	}

	freqVec := c.buildFrequencyVector(samples)

	c.pushGroup(freqVec)

	quantile := c.computeQuantile()
	quantile = c.clamp(quantile)

	record := &Record{
		GroupID:           groupID,
		Quantile:          quantile,
		EncodedFreqVector: EncodeRunLength(freqVec),
	}

	if err := c.Store.Put(record); err != nil {
		return 0, errors.Wrap(err, "quantile: persist group record")
	}

	c.havePrevGroup = true
	c.prevGroupID = groupID
	c.prevQuantile = quantile

	return quantile, nil
}

// RemoveGroupsGE truncates the store at groupID (removing it and every
// later group) and rebuilds the in-memory window from what remains, per
// the reorg-recovery contract this calculator and its observer share.
func (c *Calculator) RemoveGroupsGE(groupID uint64) error {
	if err := c.Store.RemoveGroupsGE(groupID); err != nil {
		return errors.Wrap(err, "quantile: remove groups")
	}

	return c.reloadFromStore()
}

// Initialize prepares the calculator for a fresh ledger: if the store
// already holds groups, it simply reloads the in-memory window from them
// (the restart path). Otherwise, when bootstrapGroups > 0, it seeds the
// store with bootstrapGroups synthetic groups of sampleSize copies of
// initialValue each, ending two groups before genesisGroupID, then
// reloads from them. The two-group gap before genesis is load-bearing:
// stored history produced under it cannot be reinterpreted.
func (c *Calculator) Initialize(genesisGroupID uint64, bootstrapGroups int, sampleSize int, initialValue uint64) error {
	_, hasFirst, err := c.Store.GetFirstGroupID()
	if err != nil {
		return errors.Wrap(err, "quantile: check existing groups")
	}

	if hasFirst {
		return c.reloadFromStore()
	}

	if bootstrapGroups <= 0 {
		return nil
	}

	const bootstrapEndOffset = 2

	lastBootstrapID := genesisGroupID - bootstrapEndOffset
	firstBootstrapID := lastBootstrapID - uint64(bootstrapGroups) + 1

	samples := make([]uint64, sampleSize)
	for i := range samples {
		samples[i] = initialValue
	}

	freqVec := c.buildFrequencyVector(samples)
	encoded := EncodeRunLength(freqVec)

	quantile := c.Approximator.Denormalize(c.Approximator.Normalize(initialValue))

	for id := firstBootstrapID; id <= lastBootstrapID; id++ {
		record := &Record{GroupID: id, Quantile: float64(quantile), EncodedFreqVector: encoded}
		if err := c.Store.Put(record); err != nil {
			return errors.Wrap(err, "quantile: bootstrap group")
		}
	}

	return c.reloadFromStore()
}

// reloadFromStore rebuilds the in-memory window, aggregate and prevQuantile
// from the last WindowSize groups recorded in the store.
func (c *Calculator) reloadFromStore() error {
	c.window = nil
	c.aggregate = make([]uint64, c.Approximator.MaxBucket()+1)
	c.havePrevGroup = false
	c.prevQuantile = 0

	lastID, hasLast, err := c.Store.GetLastGroupID()
	if err != nil {
		return errors.Wrap(err, "quantile: get last group id")
	}

	if !hasLast {
		return nil
	}

	firstID, hasFirst, err := c.Store.GetFirstGroupID()
	if err != nil {
		return errors.Wrap(err, "quantile: get first group id")
	}

	if !hasFirst {
		return nil
	}

	windowStart := firstID
	if lastID-firstID+1 > uint64(c.WindowSize) {
		windowStart = lastID - uint64(c.WindowSize) + 1
	}

	var lastRecord *Record

	for id := windowStart; id <= lastID; id++ {
		record, ok, err := c.Store.Get(id)
		if err != nil {
			return errors.Wrapf(err, "quantile: load group %d", id)
		}

		if !ok {
			logger.Infof("quantile: expected group %d missing from store during reload, skipping", id)
			continue
		}

		vec, err := DecodeRunLength(record.EncodedFreqVector)
		if err != nil {
			return errors.Wrapf(err, "quantile: decode group %d", id)
		}

		c.pushGroup(vec)

		lastRecord = record
	}

	c.havePrevGroup = true
	c.prevGroupID = lastID

	if lastRecord != nil {
		c.prevQuantile = lastRecord.Quantile
	}

	return nil
}

func (c *Calculator) buildFrequencyVector(samples []uint64) []uint64 {
	vec := make([]uint64, c.Approximator.MaxBucket()+1)

	for _, s := range samples {
		vec[c.Approximator.Normalize(s)]++
	}

	return vec
}

func (c *Calculator) pushGroup(freqVec []uint64) {
	c.window = append(c.window, freqVec)
	addInto(c.aggregate, freqVec)

	if len(c.window) > c.WindowSize {
		oldest := c.window[0]
		c.window = c.window[1:]
		subtractFrom(c.aggregate, oldest)
	}
}

// computeQuantile finds the bucket whose cumulative frequency first
// reaches QuantileFraction of the aggregate's total count, and denormalizes
// it.
func (c *Calculator) computeQuantile() float64 {
	var total uint64
	for _, n := range c.aggregate {
		total += n
	}

	if total == 0 {
		return 0
	}

	threshold := c.QuantileFraction * float64(total)

	var cumulative uint64

	for bucket, n := range c.aggregate {
		cumulative += n
		if float64(cumulative) >= threshold {
			return float64(c.Approximator.Denormalize(bucket))
		}
	}

	return float64(c.Approximator.Denormalize(len(c.aggregate) - 1))
}

// clamp bounds quantile to [prevQuantile*(1-MaxDeviation),
// prevQuantile*(1+MaxDeviation)], unless this is the first group or the
// previous quantile was zero (nothing to deviate from).
func (c *Calculator) clamp(quantile float64) float64 {
	if !c.havePrevGroup || c.prevQuantile == 0 {
		return quantile
	}

	lower := c.prevQuantile * (1 - c.MaxDeviation)
	upper := c.prevQuantile * (1 + c.MaxDeviation)

	if quantile < lower {
		return lower
	}

	if quantile > upper {
		return upper
	}

	return quantile
}

func addInto(dst, src []uint64) {
	for i := range src {
		dst[i] += src[i]
	}
}

func subtractFrom(dst, src []uint64) {
	for i := range src {
		dst[i] -= src[i]
	}
}
