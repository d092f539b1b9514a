// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package resolverapi is the thin HTTP surface over pkg/resolver: 200
// with the resolved document on success, 404 when no create operation is
// ever found for the requested suffix, and 500 on an operation-store
// failure. Batch writing and operation submission are not part of this
// surface.
package resolverapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/decentralized-identity/sidetree-resolver/pkg/document"
	"github.com/decentralized-identity/sidetree-resolver/pkg/document/model"
	"github.com/decentralized-identity/sidetree-resolver/pkg/opparser"
	"github.com/decentralized-identity/sidetree-resolver/pkg/operation"
	"github.com/decentralized-identity/sidetree-resolver/pkg/protocol"
	"github.com/decentralized-identity/sidetree-resolver/pkg/sidetreeerr"
)

var logger = log.New("sidetree-resolver/resolverapi")

// resolverFunc is the subset of *resolver.Resolver this handler depends on.
// Accepting the method value rather than the concrete type keeps this
// package free of a direct import cycle risk and makes the handler easy to
// exercise with a stub in tests.
type resolverFunc func(suffix string, opts ...document.ResolutionOption) (*protocol.ResolutionModel, error)

// Handler serves DID resolution requests for a single method namespace.
type Handler struct {
	namespace string
	resolve   resolverFunc
	parser    *opparser.Parser
}

// New returns a Handler that resolves DIDs under namespace (e.g. "ion",
// "elem") using resolve, parsing short- and long-form identifiers with
// parser.
func New(namespace string, resolve resolverFunc, parser *opparser.Parser) *Handler {
	return &Handler{namespace: namespace, resolve: resolve, parser: parser}
}

// RegisterRoutes mounts the resolution endpoint on router:
// GET /identifiers/{did}.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/identifiers/{did}", h.resolveHandler).Methods(http.MethodGet)
}

// resolutionResult is the minimal DID-resolution-result envelope: the
// external document view plus the method metadata this module's
// protocol.ResolutionModel carries. It intentionally omits the fuller
// did-resolution-result fields (@context, contentType) that no caller of
// this surface consumes.
type resolutionResult struct {
	DIDDocument         document.Document      `json:"didDocument"`
	DIDDocumentMetadata map[string]interface{} `json:"didDocumentMetadata"`
}

func (h *Handler) resolveHandler(w http.ResponseWriter, r *http.Request) {
	did := mux.Vars(r)["did"]

	resolvedDID, createRequestBytes, err := h.parser.ParseDID(h.namespace, did)
	if err != nil {
		writeError(w, sidetreeerr.New(sidetreeerr.CodeInvalidDID, err))
		return
	}

	var opts []document.ResolutionOption

	suffix := strings.TrimPrefix(resolvedDID, "did:"+h.namespace+":")

	if createRequestBytes != nil {
		parsed, err := h.parser.ParseCreateOperation(createRequestBytes)
		if err != nil {
			writeError(w, sidetreeerr.New(sidetreeerr.CodeInvalidDID, err))
			return
		}

		suffix, err = h.parser.UniqueSuffix(parsed.SuffixData)
		if err != nil {
			writeError(w, sidetreeerr.New(sidetreeerr.CodeInvalidDID, err))
			return
		}

		anchoredCreate, err := model.GetAnchoredOperation(parsed)
		if err != nil {
			writeError(w, sidetreeerr.New(sidetreeerr.CodeInternal, err))
			return
		}

		opts = append(opts, document.WithAdditionalOperations([]*operation.AnchoredOperation{anchoredCreate}))
	}

	state, err := h.resolve(suffix, opts...)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &resolutionResult{
		DIDDocument:         state.Doc,
		DIDDocumentMetadata: metadataOf(state),
	})
}

func metadataOf(state *protocol.ResolutionModel) map[string]interface{} {
	md := map[string]interface{}{
		document.DeactivatedProperty: state.Deactivated,
	}

	if !state.Deactivated {
		md[document.RecoveryCommitmentProperty] = state.RecoveryCommitment
		md[document.UpdateCommitmentProperty] = state.UpdateCommitment
	}

	md["publishedOperationCount"] = len(state.PublishedOperations)
	md["unpublishedOperationCount"] = len(state.UnpublishedOperations)

	return md
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var sErr *sidetreeerr.Error
	if asSidetreeErr(err, &sErr) {
		switch sErr.Code {
		case sidetreeerr.CodeNotFound:
			status = http.StatusNotFound
		case sidetreeerr.CodeInvalidDID, sidetreeerr.CodeInvalidOperation:
			status = http.StatusBadRequest
		case sidetreeerr.CodeInternal:
			status = http.StatusInternalServerError
		}
	}

	logger.Infof("resolution failed: %s", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func asSidetreeErr(err error, target **sidetreeerr.Error) bool {
	for err != nil {
		if sErr, ok := err.(*sidetreeerr.Error); ok { //nolint:errorlint
			*target = sErr
			return true
		}

		u, ok := err.(interface{ Unwrap() error }) //nolint:errorlint
		if !ok {
			return false
		}

		err = u.Unwrap()
	}

	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("write response: %s", err)
	}
}
