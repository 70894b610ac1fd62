package clitransport

import "github.com/wagiedev/claude-cli-transport/internal/errors"

// Re-export error types from internal package

// CLINotFoundError indicates the Claude CLI binary was not found.
type CLINotFoundError = errors.CLINotFoundError

// CLIConnectionError indicates failure to spawn or talk to the CLI process.
type CLIConnectionError = errors.CLIConnectionError

// ProcessError indicates the CLI process exited non-zero with
// recognizable error text on stderr.
type ProcessError = errors.ProcessError

// CLIJSONDecodeError indicates JSON parsing failed for CLI output.
type CLIJSONDecodeError = errors.CLIJSONDecodeError

// TransportError is the base interface for all transport errors.
type TransportError = errors.TransportError

// Re-export sentinel errors from internal package.
var (
	// ErrNotConnected indicates the transport is not connected.
	ErrNotConnected = errors.ErrNotConnected
)
