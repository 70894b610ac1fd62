// Package jsonsplit segments raw CLI output lines into complete
// top-level JSON object texts.
//
// Under load the CLI can emit several complete JSON messages on what is
// nominally one line of output, with no separator other than adjacent
// braces. Naive line-based parsing would either fail or silently drop
// messages. This package re-segments such lines with a single-pass
// brace-depth scan that respects string literals and escapes, without
// a full JSON tokenizer.
package jsonsplit

import "strings"

// Objects scans line and returns, in left-to-right order, every
// substring that forms a balanced top-level {...} span. The scan is a
// three-state machine (normal, in-string, escape-pending):
//
//   - an escape-pending backslash consumes exactly the next character
//   - an unescaped quote toggles string mode
//   - outside strings, '{' at depth zero marks an object start and
//     '}' returning the depth to zero closes it
//
// Braces inside string literals never open or close an object. Spans
// whose depth does not return to zero are not returned. The returned
// slices alias line's backing array.
func Objects(line string) []string {
	var (
		objects  []string
		depth    int
		inString bool
		escaped  bool
		start    int
	)

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case escaped:
			escaped = false

		case c == '\\' && inString:
			escaped = true

		case c == '"':
			inString = !inString

		case inString:
			// Structural characters inside strings are literal text.

		case c == '{':
			if depth == 0 {
				start = i
			}

			depth++

		case c == '}':
			if depth > 0 {
				depth--

				if depth == 0 {
					objects = append(objects, line[start:i+1])
				}
			}
		}
	}

	return objects
}

// LooksLikeJSON reports whether s unmistakably intended to be JSON:
// its first non-space character is '{' or '['. Candidates failing to
// parse are only surfaced as decode errors when this holds; anything
// else is incidental non-JSON text (e.g. a stray log line).
func LooksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)

	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
