// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package sidetreeerr defines the closed set of error codes the resolver
// surfaces at its external boundary (pkg/resolverapi), independent of the
// error strings returned by internal packages.
package sidetreeerr

import "fmt"

// Code is a closed enumeration of resolver-facing error classifications.
type Code string

const (
	// CodeNotFound means no operations exist for the requested DID.
	CodeNotFound Code = "not_found"

	// CodeInvalidDID means the DID or its long-form initial state could
	// not be parsed.
	CodeInvalidDID Code = "invalid_did"

	// CodeInvalidOperation means an operation request failed schema or
	// signature validation.
	CodeInvalidOperation Code = "invalid_operation"

	// CodeInternal means an unexpected failure occurred (store error,
	// protocol misconfiguration).
	CodeInternal Code = "internal"
)

// Error wraps an underlying error with a resolver-facing Code.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an Error for the given code wrapping err.
func New(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}
