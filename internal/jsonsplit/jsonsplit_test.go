package jsonsplit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestObjects_SingleObject tests that a line holding exactly one
// well-formed object yields that object verbatim.
func TestObjects_SingleObject(t *testing.T) {
	line := `{"type":"message","id":"msg1"}`

	objects := Objects(line)

	require.Equal(t, []string{line}, objects)
}

// TestObjects_ConcatenatedObjects tests that two objects glued together
// with no separator are split in left-to-right order.
func TestObjects_ConcatenatedObjects(t *testing.T) {
	first := `{"type":"message","id":"msg1"}`
	second := `{"type":"result","id":"res1"}`

	objects := Objects(first + second)

	require.Equal(t, []string{first, second}, objects)
}

// TestObjects_ManyConcatenatedObjects tests splitting more than two
// adjacent objects, including nested ones.
func TestObjects_ManyConcatenatedObjects(t *testing.T) {
	parts := []string{
		`{"a":1}`,
		`{"b":{"nested":{"deep":true}}}`,
		`{"c":[1,2,3]}`,
	}

	var line string
	for _, p := range parts {
		line += p
	}

	require.Equal(t, parts, Objects(line))
}

// TestObjects_BracesInsideStrings tests that braces and escaped quotes
// inside string literals never open or close an object boundary.
func TestObjects_BracesInsideStrings(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"open brace", "text with { inside"},
		{"close brace", "text with } inside"},
		{"both braces", "{}{}{}"},
		{"escaped quote", `she said \"hi\"`},
		{"escaped quote then brace", `quote \" then }`},
		{"backslash before quote", `trailing backslash \\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Build real JSON so escapes are well-formed, then round-trip
			// through the scanner.
			encoded, err := json.Marshal(map[string]any{"content": tt.value})
			require.NoError(t, err)

			line := string(encoded) + `{"type":"next"}`

			objects := Objects(line)
			require.Len(t, objects, 2)
			require.Equal(t, string(encoded), objects[0])
			require.Equal(t, `{"type":"next"}`, objects[1])

			var decoded map[string]any

			require.NoError(t, json.Unmarshal([]byte(objects[0]), &decoded))
			require.JSONEq(t, string(encoded), objects[0])
		})
	}
}

// TestObjects_RoundTrip tests decode(extract(encode(x))) == x for values
// stuffed with scanner-hostile characters.
func TestObjects_RoundTrip(t *testing.T) {
	original := map[string]any{
		"a": `{"fake":"object"}`,
		"b": "unbalanced }}} {{{",
		"c": "escaped \" quote and backslash \\",
		"d": map[string]any{"nested": "{}"},
	}

	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	objects := Objects(string(encoded))
	require.Len(t, objects, 1)

	var decoded map[string]any

	require.NoError(t, json.Unmarshal([]byte(objects[0]), &decoded))
	require.Equal(t, original["a"], decoded["a"])
	require.Equal(t, original["b"], decoded["b"])
	require.Equal(t, original["c"], decoded["c"])
}

// TestObjects_NoObjects tests inputs without any balanced object.
func TestObjects_NoObjects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"plain text", "starting up..."},
		{"bare literal", "42"},
		{"array only", `[1,2,3]`},
		{"unbalanced open", `{"type":"message"`},
		{"stray close", "}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Empty(t, Objects(tt.line))
		})
	}
}

// TestObjects_ObjectWithSurroundingText tests that a balanced object is
// extracted even when flanked by incidental text.
func TestObjects_ObjectWithSurroundingText(t *testing.T) {
	objects := Objects(`prefix noise {"type":"message"} trailing`)

	require.Equal(t, []string{`{"type":"message"}`}, objects)
}

// TestLooksLikeJSON tests the intended-to-be-JSON heuristic.
func TestLooksLikeJSON(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{`{"a":1}`, true},
		{`  {"a":1}`, true},
		{`[1,2]`, true},
		{`{broken`, true},
		{"plain log line", false},
		{"", false},
		{"42", false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, LooksLikeJSON(tt.input), "input: %q", tt.input)
	}
}
