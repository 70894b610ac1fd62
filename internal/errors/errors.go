package errors

import (
	"errors"
	"fmt"
)

// TransportError is the base interface for all transport errors.
type TransportError interface {
	error
	IsTransportError() bool
}

// Compile-time verification that all error types implement TransportError.
var (
	_ TransportError = (*CLINotFoundError)(nil)
	_ TransportError = (*CLIConnectionError)(nil)
	_ TransportError = (*ProcessError)(nil)
	_ TransportError = (*CLIJSONDecodeError)(nil)
)

// ErrNotConnected indicates the transport is not connected.
var ErrNotConnected = errors.New("transport not connected")

// CLINotFoundError indicates the Claude CLI binary was not found.
// Message carries installation guidance for the user; SearchedPaths
// lists every location that was checked.
type CLINotFoundError struct {
	Message       string
	SearchedPaths []string
}

func (e *CLINotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return fmt.Sprintf("claude CLI not found in: %v", e.SearchedPaths)
}

// IsTransportError implements TransportError.
func (e *CLINotFoundError) IsTransportError() bool { return true }

// CLIConnectionError indicates failure to spawn or talk to the CLI process.
type CLIConnectionError struct {
	Err error
}

func (e *CLIConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to CLI: %v", e.Err)
}

func (e *CLIConnectionError) Unwrap() error {
	return e.Err
}

// IsTransportError implements TransportError.
func (e *CLIConnectionError) IsTransportError() bool { return true }

// ProcessError indicates the CLI process exited non-zero with
// recognizable error text on stderr.
type ProcessError struct {
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("CLI process failed (exit %d): %s", e.ExitCode, e.Stderr)
}

// IsTransportError implements TransportError.
func (e *ProcessError) IsTransportError() bool { return true }

// CLIJSONDecodeError indicates JSON parsing failed for CLI output.
// This error preserves the original raw text that failed to parse.
type CLIJSONDecodeError struct {
	RawData string
	Err     error
}

func (e *CLIJSONDecodeError) Error() string {
	return fmt.Sprintf("failed to decode JSON from CLI: %v", e.Err)
}

func (e *CLIJSONDecodeError) Unwrap() error {
	return e.Err
}

// IsTransportError implements TransportError.
func (e *CLIJSONDecodeError) IsTransportError() bool { return true }
