package config

import (
	"context"
	"iter"
)

// Transport defines the interface for Claude CLI communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods (e.g., remote connections).
//
// The default implementation spawns the CLI as a subprocess.
type Transport interface {
	// Connect spawns the CLI process. It is a no-op when the transport
	// is already starting or running.
	Connect(ctx context.Context) error

	// Disconnect terminates the CLI process, escalating from graceful
	// termination to a forced kill. It is idempotent: calling it on an
	// idle or already-terminated transport is a no-op.
	Disconnect() error

	// IsConnected reports whether a process handle exists and its exit
	// status is still unknown.
	IsConnected() bool

	// SendRequest is a documented no-op for subprocess transports:
	// all input travels via command-line arguments, not a runtime channel.
	SendRequest(ctx context.Context, messages []map[string]any, options map[string]any) error

	// ReceiveMessages returns the lazy, finite sequence of JSON messages
	// decoded from the CLI's stdout. Iteration may be stopped at any
	// point; teardown of the underlying read loops is never skipped.
	ReceiveMessages(ctx context.Context) iter.Seq2[map[string]any, error]
}
