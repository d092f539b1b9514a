// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package opparser

import (
	"github.com/pkg/errors"

	"github.com/decentralized-identity/sidetree-resolver/pkg/document/model"
)

// ValidateDelta checks a delta's structural rules: it must be present,
// its update commitment must be a multihash computed with one of the
// configured algorithms, and every patch it carries must validate.
func (p *Parser) ValidateDelta(delta *model.DeltaModel) error {
	if delta == nil {
		return errors.New("missing delta")
	}

	if err := p.validateMultihash(delta.UpdateCommitment, "update commitment"); err != nil {
		return err
	}

	if len(delta.Patches) == 0 {
		return errors.New("missing patches")
	}

	for _, patch := range delta.Patches {
		if err := patch.Validate(); err != nil {
			return errors.Wrap(err, "invalid patch")
		}
	}

	return nil
}

// SanitizeDelta returns delta unchanged if it passes ValidateDelta, and
// nil otherwise. An operation's delta is optional data: a CAS node that
// never received it, or a client that sent a malformed one, shouldn't
// cause the whole operation to be rejected. Downstream, a nil delta
// simply means the processor can't advance the document, only the
// commitment it's chained from.
func (p *Parser) SanitizeDelta(delta *model.DeltaModel) *model.DeltaModel {
	if err := p.ValidateDelta(delta); err != nil {
		return nil
	}

	return delta
}
