// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package resolver walks the operation store's anchored operations for a
// unique suffix into a single resolved document, per the create-first,
// then-recover-or-deactivate, then-update chain-walk algorithm. It owns
// store access and chain bucketing; the actual per-operation state
// transition is delegated to pkg/processor, which this package treats as a
// pure function.
package resolver

import (
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/pkg/errors"

	"github.com/decentralized-identity/sidetree-resolver/pkg/commitment"
	"github.com/decentralized-identity/sidetree-resolver/pkg/document"
	"github.com/decentralized-identity/sidetree-resolver/pkg/opparser"
	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
	"github.com/decentralized-identity/sidetree-resolver/pkg/opstore"
	"github.com/decentralized-identity/sidetree-resolver/pkg/processor"
	"github.com/decentralized-identity/sidetree-resolver/pkg/protocol"
	"github.com/decentralized-identity/sidetree-resolver/pkg/sidetreeerr"
)

var logger = log.New("sidetree-resolver/resolver")

// Resolver resolves a unique suffix's anchored operations, held in store,
// into a protocol.ResolutionModel.
type Resolver struct {
	name      string
	store     opstore.Store
	processor *processor.OperationProcessor
	parser    *opparser.Parser
}

// New returns a Resolver named name, backed by store and configured per p.
func New(name string, store opstore.Store, p protocol.Protocol) *Resolver {
	return &Resolver{
		name:      name,
		store:     store,
		processor: processor.New(name, p),
		parser:    opparser.New(p),
	}
}

// Resolve returns the resolved state for suffix. It returns a
// *sidetreeerr.Error with CodeNotFound if no create operation for suffix
// ever succeeds, and CodeInvalidDID if a requested version-id is never
// reached by the chain walk.
func (r *Resolver) Resolve(suffix string, opts ...document.ResolutionOption) (*protocol.ResolutionModel, error) {
	resOpts := document.GetResolutionOptions(opts)

	stored, err := r.store.Get(suffix)
	if err != nil {
		return nil, sidetreeerr.New(sidetreeerr.CodeInternal, errors.Wrap(err, "load operations"))
	}

	ops := append(append([]*operation.AnchoredOperation{}, stored...), resOpts.AdditionalOperations...)

	if resOpts.VersionTime != "" {
		cutoff, err := time.Parse(time.RFC3339, resOpts.VersionTime)
		if err != nil {
			return nil, sidetreeerr.New(sidetreeerr.CodeInvalidDID, errors.Wrap(err, "parse version time"))
		}

		ops = filterByVersionTime(ops, cutoff)
	}

	operation.SortByTransaction(ops)

	buckets := bucketByType(ops)

	history := make([]step, 0, len(ops))

	state := r.applyCreates(buckets[operation.TypeCreate], &history)
	if state == nil {
		return nil, sidetreeerr.New(sidetreeerr.CodeNotFound, errors.New("no valid create operation found"))
	}

	state = r.walkChain(state, buckets[operation.TypeRecover], buckets[operation.TypeDeactivate], recoveryCommitmentOf, &history)
	state = r.walkChain(state, buckets[operation.TypeUpdate], nil, updateCommitmentOf, &history)

	if resOpts.VersionID != "" {
		return resolveAtVersion(history, resOpts.VersionID)
	}

	state.PublishedOperations, state.UnpublishedOperations = splitByPublication(history)

	return state, nil
}

// step records one successfully-applied operation and the resulting state,
// in application order, for version-id lookups and publication bookkeeping.
type step struct {
	op    *operation.AnchoredOperation
	state *protocol.ResolutionModel
}

func bucketByType(ops []*operation.AnchoredOperation) map[operation.Type][]*operation.AnchoredOperation {
	buckets := map[operation.Type][]*operation.AnchoredOperation{}
	for _, op := range ops {
		buckets[op.Type] = append(buckets[op.Type], op)
	}

	return buckets
}

func filterByVersionTime(ops []*operation.AnchoredOperation, cutoff time.Time) []*operation.AnchoredOperation {
	filtered := make([]*operation.AnchoredOperation, 0, len(ops))

	for _, op := range ops {
		if int64(op.TransactionTime) <= cutoff.Unix() {
			filtered = append(filtered, op)
		}
	}

	return filtered
}

// applyCreates tries each candidate create operation in order, returning
// the state produced by the first one the processor accepts. Per the
// protocol, only one create may ever win; the rest (duplicates, or simply
// invalid) are ignored.
func (r *Resolver) applyCreates(creates []*operation.AnchoredOperation, history *[]step) *protocol.ResolutionModel {
	for _, op := range creates {
		state := r.processor.Apply(op, nil)
		if state != nil {
			*history = append(*history, step{op: op, state: state})
			return state
		}

		logger.Infof("candidate create operation rejected, trying next: suffix=%s", op.UniqueSuffix)
	}

	return nil
}

// walkChain advances state by repeatedly finding, among candidates (plus
// optional terminal ops such as deactivate), the operation that reveals
// the value committed to by state's current commitment (as read by
// commitmentOf), applying it, and removing it from further consideration.
// The walk stops when no candidate reveals the current commitment, or the
// commitment goes empty (deactivated).
func (r *Resolver) walkChain(
	state *protocol.ResolutionModel,
	candidates []*operation.AnchoredOperation,
	terminal []*operation.AnchoredOperation,
	commitmentOf func(*protocol.ResolutionModel) string,
	history *[]step,
) *protocol.ResolutionModel {
	pending := make(map[string][]*operation.AnchoredOperation)

	for _, op := range append(append([]*operation.AnchoredOperation{}, candidates...), terminal...) {
		rv, err := r.parser.GetRevealValue(op.OperationRequest)
		if err != nil {
			logger.Infof("skipping unparseable operation in chain walk: %s", err)
			continue
		}

		derived, err := commitment.GetCommitmentFromRevealValue(rv)
		if err != nil {
			logger.Infof("skipping operation with invalid reveal value in chain walk: %s", err)
			continue
		}

		pending[derived] = append(pending[derived], op)
	}

	for {
		current := commitmentOf(state)
		if current == "" {
			return state
		}

		bucket, ok := pending[current]
		if !ok {
			return state
		}

		operation.SortByTransaction(bucket)

		var advanced *protocol.ResolutionModel

		for _, op := range bucket {
			next := r.processor.Apply(op, state)
			if next != state {
				advanced = next
				*history = append(*history, step{op: op, state: next})
				break
			}
		}

		delete(pending, current)

		if advanced == nil {
			return state
		}

		state = advanced
	}
}

func recoveryCommitmentOf(s *protocol.ResolutionModel) string {
	return s.RecoveryCommitment
}

func updateCommitmentOf(s *protocol.ResolutionModel) string {
	if s.Deactivated {
		return ""
	}

	return s.UpdateCommitment
}

func resolveAtVersion(history []step, versionID string) (*protocol.ResolutionModel, error) {
	for _, s := range history {
		if s.op.CanonicalReference == versionID {
			result := *s.state
			result.PublishedOperations, result.UnpublishedOperations = splitByPublication(historyThrough(history, s.op))
			return &result, nil
		}
	}

	return nil, sidetreeerr.New(sidetreeerr.CodeInvalidDID, errors.Errorf("version %q not found in operation history", versionID))
}

func historyThrough(history []step, target *operation.AnchoredOperation) []step {
	out := make([]step, 0, len(history))

	for _, s := range history {
		out = append(out, s)
		if s.op == target {
			break
		}
	}

	return out
}

func splitByPublication(history []step) (published, unpublished []string) {
	for _, s := range history {
		if s.op.Published() {
			published = append(published, s.op.CanonicalReference)
		} else {
			unpublished = append(unpublished, s.op.UniqueSuffix)
		}
	}

	return published, unpublished
}
