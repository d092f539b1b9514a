// Copyright Gen Digital Inc. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0

package doccomposer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/decentralized-identity/sidetree-resolver/pkg/document"
	"github.com/decentralized-identity/sidetree-resolver/pkg/patch"
)

func TestApplyPatches_JSONPatch_AddReplaceRemove(t *testing.T) {
	c := New()

	add, err := patch.NewJSONPatch(`[{"op":"add","path":"/alsoKnownAs","value":["https://example.com"]}]`)
	require.NoError(t, err)

	doc, err := c.ApplyPatches(document.Document{}, []patch.Patch{add})
	require.NoError(t, err)
	require.Equal(t, []interface{}{"https://example.com"}, doc["alsoKnownAs"])

	replace, err := patch.NewJSONPatch(`[{"op":"replace","path":"/alsoKnownAs/0","value":"https://other.example.com"}]`)
	require.NoError(t, err)

	doc, err = c.ApplyPatches(doc, []patch.Patch{replace})
	require.NoError(t, err)
	require.Equal(t, []interface{}{"https://other.example.com"}, doc["alsoKnownAs"])

	remove, err := patch.NewJSONPatch(`[{"op":"remove","path":"/alsoKnownAs"}]`)
	require.NoError(t, err)

	doc, err = c.ApplyPatches(doc, []patch.Patch{remove})
	require.NoError(t, err)
	require.NotContains(t, doc, "alsoKnownAs")
}

func TestApplyPatches_JSONPatch_AppendToken(t *testing.T) {
	c := New()

	p, err := patch.NewJSONPatch(
		`[{"op":"add","path":"/alsoKnownAs","value":["a"]},{"op":"add","path":"/alsoKnownAs/-","value":"b"}]`)
	require.NoError(t, err)

	doc, err := c.ApplyPatches(document.Document{}, []patch.Patch{p})
	require.NoError(t, err)
	require.Equal(t, []interface{}{"a", "b"}, doc["alsoKnownAs"])
}

func TestApplyPatches_JSONPatch_CopyMoveTest(t *testing.T) {
	c := New()

	p, err := patch.NewJSONPatch(`[
		{"op":"add","path":"/foo","value":"bar"},
		{"op":"test","path":"/foo","value":"bar"},
		{"op":"copy","from":"/foo","path":"/baz"},
		{"op":"move","from":"/foo","path":"/qux"}
	]`)
	require.NoError(t, err)

	doc, err := c.ApplyPatches(document.Document{}, []patch.Patch{p})
	require.NoError(t, err)
	require.Equal(t, "bar", doc["baz"])
	require.Equal(t, "bar", doc["qux"])
	require.NotContains(t, doc, "foo")
}

func TestApplyPatches_JSONPatch_TestFailure(t *testing.T) {
	c := New()

	p, err := patch.NewJSONPatch(`[
		{"op":"add","path":"/foo","value":"bar"},
		{"op":"test","path":"/foo","value":"other"}
	]`)
	require.NoError(t, err)

	_, err = c.ApplyPatches(document.Document{}, []patch.Patch{p})
	require.Error(t, err)
	require.Contains(t, err.Error(), "test failed")
}

func TestApplyPatches_JSONPatch_ProtectedPropertiesRejected(t *testing.T) {
	c := New()

	for _, path := range []string{"/publicKeys", "/services/0"} {
		p := patch.Patch{
			"action":  "ietf-json-patch",
			"patches": []interface{}{map[string]interface{}{"op": "remove", "path": path}},
		}

		_, err := c.ApplyPatches(document.Document{}, []patch.Patch{p})
		require.Error(t, err)
		require.Contains(t, err.Error(), "not allowed")
	}
}

func TestApplyPatches_JSONPatch_RemoveMissingPath(t *testing.T) {
	c := New()

	p, err := patch.NewJSONPatch(`[{"op":"remove","path":"/nope"}]`)
	require.NoError(t, err)

	_, err = c.ApplyPatches(document.Document{}, []patch.Patch{p})
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestJSONPointerToPath(t *testing.T) {
	path, err := jsonPointerToPath("/a~1b/c~0d/0")
	require.NoError(t, err)
	require.Equal(t, "a/b.c~d.0", path)

	_, err = jsonPointerToPath("no-leading-slash")
	require.Error(t, err)
}
