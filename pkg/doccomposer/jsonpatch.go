// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package doccomposer

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/decentralized-identity/sidetree-resolver/pkg/document"
)

// jsonPatchOp is one RFC 6902 operation from an "ietf-json-patch" value.
type jsonPatchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	From  string          `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// applyJSONPatch applies an array of RFC 6902 operations to doc. The
// publicKeys and services properties may not be touched through a generic
// JSON patch; callers use the dedicated add/remove patch actions for those
// so that id uniqueness and key validation rules cannot be bypassed.
func applyJSONPatch(doc document.Document, value interface{}) (document.Document, error) {
	rawOps, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("ietf-json-patch: marshal operations: %w", err)
	}

	var ops []jsonPatchOp
	if err := json.Unmarshal(rawOps, &ops); err != nil {
		return nil, fmt.Errorf("ietf-json-patch: expected array of operations: %w", err)
	}

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("ietf-json-patch: marshal document: %w", err)
	}

	for _, op := range ops {
		docBytes, err = applyJSONPatchOp(docBytes, op)
		if err != nil {
			return nil, err
		}
	}

	var result document.Document
	if err := json.Unmarshal(docBytes, &result); err != nil {
		return nil, fmt.Errorf("ietf-json-patch: unmarshal patched document: %w", err)
	}

	return result, nil
}

func applyJSONPatchOp(docBytes []byte, op jsonPatchOp) ([]byte, error) {
	path, err := jsonPointerToPath(op.Path)
	if err != nil {
		return nil, err
	}

	switch op.Op {
	case "add", "replace":
		if op.Value == nil {
			return nil, fmt.Errorf("ietf-json-patch: %s operation requires a value", op.Op)
		}

		return sjson.SetRawBytes(docBytes, path, op.Value)

	case "remove":
		if !gjson.GetBytes(docBytes, path).Exists() {
			return nil, fmt.Errorf("ietf-json-patch: remove path %q does not exist", op.Path)
		}

		return sjson.DeleteBytes(docBytes, path)

	case "copy", "move":
		fromPath, err := jsonPointerToPath(op.From)
		if err != nil {
			return nil, err
		}

		source := gjson.GetBytes(docBytes, fromPath)
		if !source.Exists() {
			return nil, fmt.Errorf("ietf-json-patch: %s from path %q does not exist", op.Op, op.From)
		}

		patched, err := sjson.SetRawBytes(docBytes, path, []byte(source.Raw))
		if err != nil {
			return nil, err
		}

		if op.Op == "move" {
			return sjson.DeleteBytes(patched, fromPath)
		}

		return patched, nil

	case "test":
		current := gjson.GetBytes(docBytes, path)
		if !current.Exists() {
			return nil, fmt.Errorf("ietf-json-patch: test path %q does not exist", op.Path)
		}

		var expected, actual interface{}
		if err := json.Unmarshal(op.Value, &expected); err != nil {
			return nil, fmt.Errorf("ietf-json-patch: test value: %w", err)
		}

		if err := json.Unmarshal([]byte(current.Raw), &actual); err != nil {
			return nil, fmt.Errorf("ietf-json-patch: test target: %w", err)
		}

		if !reflect.DeepEqual(expected, actual) {
			return nil, fmt.Errorf("ietf-json-patch: test failed at %q", op.Path)
		}

		return docBytes, nil

	default:
		return nil, fmt.Errorf("ietf-json-patch: operation '%s' is not supported", op.Op)
	}
}

// jsonPointerToPath converts an RFC 6901 pointer into the dotted path
// syntax gjson/sjson operate on. The RFC's "-" array-append token becomes
// sjson's "-1".
func jsonPointerToPath(pointer string) (string, error) {
	if pointer == "" || !strings.HasPrefix(pointer, "/") {
		return "", fmt.Errorf("ietf-json-patch: invalid path %q", pointer)
	}

	tokens := strings.Split(pointer[1:], "/")

	if tokens[0] == document.PublicKeyProperty || tokens[0] == document.ServiceProperty {
		return "", fmt.Errorf("ietf-json-patch: patching %q is not allowed", tokens[0])
	}

	for i, token := range tokens {
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")

		if token == "-" {
			token = "-1"
		}

		token = strings.ReplaceAll(token, "\\", "\\\\")
		token = strings.ReplaceAll(token, ".", "\\.")

		tokens[i] = token
	}

	return strings.Join(tokens, "."), nil
}
