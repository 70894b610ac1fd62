// Package cli locates the Claude CLI binary and builds its invocation.
//
// Discovery is a one-shot, synchronous lookup: explicit path first, then
// the system PATH, then well-known install locations. Command building is
// a pure translation from Options to an argument vector, testable by
// asserting argv equality.
package cli
