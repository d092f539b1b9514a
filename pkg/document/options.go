// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package document

import "github.com/decentralized-identity/sidetree-resolver/pkg/operation"

// ResolutionOptions configures a single Resolve call.
type ResolutionOptions struct {
	AdditionalOperations []*operation.AnchoredOperation
	VersionID            string
	VersionTime          string
}

// ResolutionOption mutates ResolutionOptions.
type ResolutionOption func(opts *ResolutionOptions)

// WithAdditionalOperations supplies operations (published or unpublished)
// that aren't yet in the operation store but should be considered for this
// resolution, e.g. operations observed in the same batch as the request.
func WithAdditionalOperations(ops []*operation.AnchoredOperation) ResolutionOption {
	return func(opts *ResolutionOptions) {
		opts.AdditionalOperations = ops
	}
}

// WithVersionID resolves the document as of the version whose hash is id,
// per the `versionId` DID URL parameter.
func WithVersionID(id string) ResolutionOption {
	return func(opts *ResolutionOptions) {
		opts.VersionID = id
	}
}

// WithVersionTime resolves the document as it stood at the given RFC3339
// timestamp, per the `versionTime` DID URL parameter.
func WithVersionTime(t string) ResolutionOption {
	return func(opts *ResolutionOptions) {
		opts.VersionTime = t
	}
}

// GetResolutionOptions applies opts in order and returns the result.
func GetResolutionOptions(opts []ResolutionOption) ResolutionOptions {
	var rOpts ResolutionOptions

	for _, opt := range opts {
		opt(&rOpts)
	}

	return rOpts
}
