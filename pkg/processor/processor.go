// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package processor implements the pure Sidetree state-machine: folding
// a single anchored operation and the current resolution state into the
// next resolution state. It never errors for operation-level invalidity;
// an operation that fails validation simply leaves the state unchanged,
// and the failure is logged here at info level.
package processor

import (
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/pkg/errors"

	"github.com/decentralized-identity/sidetree-resolver/pkg/commitment"
	"github.com/decentralized-identity/sidetree-resolver/pkg/doccomposer"
	"github.com/decentralized-identity/sidetree-resolver/pkg/document"
	"github.com/decentralized-identity/sidetree-resolver/pkg/document/model"
	"github.com/decentralized-identity/sidetree-resolver/pkg/jws"
	"github.com/decentralized-identity/sidetree-resolver/pkg/opparser"
	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
	"github.com/decentralized-identity/sidetree-resolver/pkg/protocol"
)

var logger = log.New("sidetree-resolver/processor")

// OperationProcessor turns one anchored operation plus the current
// resolution state into the next resolution state, per the per-kind rules
// in this package. It holds no mutable state of its own; Apply is called
// once per operation by the resolver's chain walk.
type OperationProcessor struct {
	name     string
	protocol protocol.Protocol
	parser   *opparser.Parser
	composer *doccomposer.DocumentComposer
}

// New returns an OperationProcessor named name, configured with p. name is
// carried only for log correlation across multiple processor instances in
// the same process (e.g. one per DID method).
func New(name string, p protocol.Protocol) *OperationProcessor {
	return &OperationProcessor{
		name:     name,
		protocol: p,
		parser:   opparser.New(p),
		composer: doccomposer.New(),
	}
}

// Apply folds op into state, returning the resulting state. state is nil
// only when op is expected to be a Create; any other kind applied against
// a nil state is rejected (returns nil unchanged) since there is no
// document to update, recover or deactivate yet.
//
// Apply never returns an error: malformed requests, signature failures,
// reveal/commitment mismatches and already-deactivated documents all
// result in state being returned unchanged (or nil, for a failed Create).
func (p *OperationProcessor) Apply(op *operation.AnchoredOperation, state *protocol.ResolutionModel) *protocol.ResolutionModel {
	if op == nil {
		return state
	}

	switch op.Type {
	case operation.TypeCreate:
		return p.applyCreate(op, state)
	case operation.TypeUpdate:
		return p.applyUpdate(op, state)
	case operation.TypeRecover:
		return p.applyRecover(op, state)
	case operation.TypeDeactivate:
		return p.applyDeactivate(op, state)
	default:
		logger.Infof("operation type not supported for process operation: %s", op.Type)

		return state
	}
}

func (p *OperationProcessor) applyCreate(op *operation.AnchoredOperation, state *protocol.ResolutionModel) *protocol.ResolutionModel {
	if state != nil {
		logger.Infof("create has to be the first operation, ignoring: suffix=%s", op.UniqueSuffix)

		return state
	}

	parsed, err := p.parser.ParseCreateOperation(op.OperationRequest)
	if err != nil {
		logger.Infof("failed to parse create operation: %s", err)

		return nil
	}

	suffix, err := p.parser.UniqueSuffix(parsed.SuffixData)
	if err != nil {
		logger.Infof("failed to compute unique suffix: %s", err)

		return nil
	}

	if suffix != op.UniqueSuffix {
		logger.Infof("computed unique suffix doesn't match anchored suffix: computed=%s anchored=%s",
			suffix, op.UniqueSuffix)

		return nil
	}

	next := &protocol.ResolutionModel{
		Doc:                            make(document.Document),
		UniqueSuffix:                   suffix,
		RecoveryCommitment:             parsed.SuffixData.RecoveryCommitment,
		LastOperationTransactionTime:   op.TransactionTime,
		LastOperationTransactionNumber: op.TransactionNumber,
	}

	if parsed.Delta == nil || !opparser.DeltaMatchesHash(parsed.Delta, parsed.SuffixData.DeltaHash) {
		logger.Infof("create delta missing or doesn't match delta hash, document left empty: suffix=%s", suffix)

		return next
	}

	next.UpdateCommitment = parsed.Delta.UpdateCommitment

	doc, err := p.composer.ApplyPatches(next.Doc, parsed.Delta.Patches)
	if err != nil {
		logger.Infof("failed to apply create patches, document left empty: %s", err)

		return next
	}

	next.Doc = doc

	return next
}

func (p *OperationProcessor) applyUpdate(op *operation.AnchoredOperation, state *protocol.ResolutionModel) *protocol.ResolutionModel {
	if state == nil {
		logger.Infof("update can only be applied to an existing document: suffix=%s", op.UniqueSuffix)

		return state
	}

	if state.Deactivated {
		return state
	}

	parsed, err := p.parser.ParseUpdateOperation(op.OperationRequest)
	if err != nil {
		logger.Infof("failed to parse update operation: %s", err)

		return state
	}

	if err := verifyAnchorWindow(parsed, op.TransactionTime); err != nil {
		logger.Infof("update anchored outside its signed anchor window: %s", err)

		return state
	}

	if err := verifyReveal(parsed.RevealValue, state.UpdateCommitment); err != nil {
		logger.Infof("update reveal value doesn't match current update commitment: %s", err)

		return state
	}

	sig, err := jws.ParseCompact(parsed.SignedData)
	if err != nil {
		logger.Infof("failed to parse update signed data: %s", err)

		return state
	}

	if err := sig.Verify(parsed.UpdateKey); err != nil {
		logger.Infof("update signature verification failed: %s", err)

		return state
	}

	if parsed.Delta == nil || !opparser.DeltaMatchesHash(parsed.Delta, parsed.DeltaHash) {
		logger.Infof("update delta missing or doesn't match delta hash, document left unchanged: suffix=%s", state.UniqueSuffix)

		return state
	}

	doc, err := p.composer.ApplyPatches(state.Doc, parsed.Delta.Patches)
	if err != nil {
		logger.Infof("failed to apply update patches, document left unchanged: %s", err)

		return state
	}

	return &protocol.ResolutionModel{
		Doc:                            doc,
		UniqueSuffix:                   state.UniqueSuffix,
		RecoveryCommitment:             state.RecoveryCommitment,
		UpdateCommitment:               parsed.Delta.UpdateCommitment,
		LastOperationTransactionTime:   op.TransactionTime,
		LastOperationTransactionNumber: op.TransactionNumber,
		CanonicalReference:             op.CanonicalReference,
	}
}

func (p *OperationProcessor) applyRecover(op *operation.AnchoredOperation, state *protocol.ResolutionModel) *protocol.ResolutionModel {
	if state == nil {
		logger.Infof("recover can only be applied to an existing document: suffix=%s", op.UniqueSuffix)

		return state
	}

	if state.Deactivated {
		return state
	}

	parsed, err := p.parser.ParseRecoverOperation(op.OperationRequest)
	if err != nil {
		logger.Infof("failed to parse recover operation: %s", err)

		return state
	}

	if err := verifyAnchorWindow(parsed, op.TransactionTime); err != nil {
		logger.Infof("recover anchored outside its signed anchor window: %s", err)

		return state
	}

	if err := verifyReveal(parsed.RevealValue, state.RecoveryCommitment); err != nil {
		logger.Infof("recover reveal value doesn't match current recovery commitment: %s", err)

		return state
	}

	sig, err := jws.ParseCompact(parsed.SignedData)
	if err != nil {
		logger.Infof("failed to parse recover signed data: %s", err)

		return state
	}

	if err := sig.Verify(parsed.RecoveryKey); err != nil {
		logger.Infof("recover signature verification failed: %s", err)

		return state
	}

	next := &protocol.ResolutionModel{
		Doc:                            make(document.Document),
		UniqueSuffix:                   state.UniqueSuffix,
		RecoveryCommitment:             parsed.RecoveryCommitment,
		LastOperationTransactionTime:   op.TransactionTime,
		LastOperationTransactionNumber: op.TransactionNumber,
		CanonicalReference:             op.CanonicalReference,
	}

	if parsed.Delta == nil || !opparser.DeltaMatchesHash(parsed.Delta, parsed.DeltaHash) {
		logger.Infof("recover delta missing or doesn't match delta hash, document left empty: suffix=%s", state.UniqueSuffix)

		return next
	}

	next.UpdateCommitment = parsed.Delta.UpdateCommitment

	doc, err := p.composer.ApplyPatches(next.Doc, parsed.Delta.Patches)
	if err != nil {
		logger.Infof("failed to apply recover patches, document left empty: %s", err)

		return next
	}

	next.Doc = doc

	return next
}

func (p *OperationProcessor) applyDeactivate(op *operation.AnchoredOperation, state *protocol.ResolutionModel) *protocol.ResolutionModel {
	if state == nil {
		logger.Infof("deactivate can only be applied to an existing document: suffix=%s", op.UniqueSuffix)

		return state
	}

	if state.Deactivated {
		return state
	}

	parsed, err := p.parser.ParseDeactivateOperation(op.OperationRequest)
	if err != nil {
		logger.Infof("failed to parse deactivate operation: %s", err)

		return state
	}

	if err := verifyAnchorWindow(parsed, op.TransactionTime); err != nil {
		logger.Infof("deactivate anchored outside its signed anchor window: %s", err)

		return state
	}

	if err := verifyReveal(parsed.RevealValue, state.RecoveryCommitment); err != nil {
		logger.Infof("deactivate reveal value doesn't match current recovery commitment: %s", err)

		return state
	}

	sig, err := jws.ParseCompact(parsed.SignedData)
	if err != nil {
		logger.Infof("failed to parse deactivate signed data: %s", err)

		return state
	}

	if err := sig.Verify(parsed.RecoveryKey); err != nil {
		logger.Infof("deactivate signature verification failed: %s", err)

		return state
	}

	return &protocol.ResolutionModel{
		Doc:                            state.Doc,
		UniqueSuffix:                   state.UniqueSuffix,
		RecoveryCommitment:             "",
		UpdateCommitment:               "",
		Deactivated:                    true,
		LastOperationTransactionTime:   op.TransactionTime,
		LastOperationTransactionNumber: op.TransactionNumber,
		CanonicalReference:             op.CanonicalReference,
	}
}

// verifyAnchorWindow checks that the operation's anchoring transaction
// time falls inside the window its signed data declared. A zero bound is
// open on that side.
func verifyAnchorWindow(parsed *model.Operation, transactionTime uint64) error {
	if parsed.AnchorFrom > 0 && int64(transactionTime) < parsed.AnchorFrom {
		return errors.Errorf("anchored at time %d, before anchorFrom %d", transactionTime, parsed.AnchorFrom)
	}

	if parsed.AnchorUntil > 0 && int64(transactionTime) > parsed.AnchorUntil {
		return errors.Errorf("anchored at time %d, after anchorUntil %d", transactionTime, parsed.AnchorUntil)
	}

	return nil
}

// verifyReveal checks that revealValue's double-hash reproduces
// commitment, i.e. that the operation revealing it is entitled to act
// against the state that published commitment.
func verifyReveal(revealValue, commitmentValue string) error {
	if commitmentValue == "" {
		return errors.New("no commitment to reveal against")
	}

	derived, err := commitment.GetCommitmentFromRevealValue(revealValue)
	if err != nil {
		return err
	}

	if derived != commitmentValue {
		return errors.New("reveal value does not match the expected commitment")
	}

	return nil
}
