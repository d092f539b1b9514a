// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

// Package doccomposer applies a sequence of validated patches to a
// document, producing the next document state.
package doccomposer

import (
	"fmt"

	"github.com/decentralized-identity/sidetree-resolver/pkg/document"
	"github.com/decentralized-identity/sidetree-resolver/pkg/patch"
)

// DocumentComposer applies patches to build the next document state. It
// holds no state itself; it exists as a named type so the processor can
// depend on an interface rather than a package-level function.
type DocumentComposer struct{}

// New returns a DocumentComposer.
func New() *DocumentComposer {
	return &DocumentComposer{}
}

// ApplyPatches returns the document that results from applying patches, in
// order, to doc. Patches are assumed to have already passed
// patch.Patch.Validate.
func (c *DocumentComposer) ApplyPatches(doc document.Document, patches []patch.Patch) (document.Document, error) {
	result := doc
	if result == nil {
		result = make(document.Document)
	}

	for _, p := range patches {
		var err error

		result, err = applyPatch(result, p)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

func applyPatch(doc document.Document, p patch.Patch) (document.Document, error) {
	action, err := p.GetAction()
	if err != nil {
		return nil, err
	}

	value, err := p.GetValue()
	if err != nil {
		return nil, err
	}

	switch action {
	case patch.ActionReplace:
		raw, ok := value.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("replace patch: unexpected value type")
		}

		return document.Document(raw), nil

	case patch.ActionAddPublicKeys:
		return addEntries(doc, document.PublicKeyProperty, value)

	case patch.ActionRemovePublicKeys:
		return removeEntries(doc, document.PublicKeyProperty, value)

	case patch.ActionAddServices:
		return addEntries(doc, document.ServiceProperty, value)

	case patch.ActionRemoveServices:
		return removeEntries(doc, document.ServiceProperty, value)

	case patch.ActionIETFJSONPatch:
		return applyJSONPatch(doc, value)

	default:
		return nil, fmt.Errorf("action '%s' is not supported", action)
	}
}

func addEntries(doc document.Document, property string, value interface{}) (document.Document, error) {
	incoming, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s patch: expected array value", property)
	}

	existing, _ := doc[property].([]interface{})

	for _, entry := range incoming {
		existing = appendIfAbsent(existing, entry)
	}

	result := cloneShallow(doc)
	result[property] = existing

	return result, nil
}

func removeEntries(doc document.Document, property string, value interface{}) (document.Document, error) {
	ids, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s patch: expected array of ids", property)
	}

	remove := make(map[string]bool, len(ids))

	for _, id := range ids {
		if s, ok := id.(string); ok {
			remove[s] = true
		}
	}

	existing, _ := doc[property].([]interface{})
	kept := make([]interface{}, 0, len(existing))

	for _, entry := range existing {
		if m, ok := entry.(map[string]interface{}); ok {
			if id, _ := m[document.IDProperty].(string); remove[id] {
				continue
			}
		}

		kept = append(kept, entry)
	}

	result := cloneShallow(doc)
	result[property] = kept

	return result, nil
}

// appendIfAbsent appends incoming unless an existing entry already carries
// its id. An entry whose id is already present keeps its original
// definition; the incoming duplicate is dropped.
func appendIfAbsent(existing []interface{}, incoming interface{}) []interface{} {
	incomingMap, ok := incoming.(map[string]interface{})
	if !ok {
		return append(existing, incoming)
	}

	incomingID, _ := incomingMap[document.IDProperty].(string)

	if incomingID != "" {
		for _, entry := range existing {
			if m, ok := entry.(map[string]interface{}); ok {
				if id, _ := m[document.IDProperty].(string); id == incomingID {
					return existing
				}
			}
		}
	}

	return append(existing, incomingMap)
}

func cloneShallow(doc document.Document) document.Document {
	out := make(document.Document, len(doc))

	for k, v := range doc {
		out[k] = v
	}

	return out
}
