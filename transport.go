package clitransport

import (
	"context"
	"iter"
	"log/slog"

	"github.com/wagiedev/claude-cli-transport/internal/cli"
	"github.com/wagiedev/claude-cli-transport/internal/config"
	"github.com/wagiedev/claude-cli-transport/internal/subprocess"
)

// Transport defines the interface for Claude CLI communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods (e.g., remote connections).
//
// The default implementation is SubprocessTransport.
type Transport = config.Transport

// SubprocessTransport talks to the Claude CLI over a subprocess: the
// prompt travels via argv, messages come back as streaming JSON on
// stdout. Create one per prompt with New.
type SubprocessTransport struct {
	log   *slog.Logger
	inner *subprocess.CLITransport
}

// Compile-time verification that SubprocessTransport implements Transport.
var _ Transport = (*SubprocessTransport)(nil)

// New creates a transport for one prompt.
//
// CLI discovery runs here, as a one-shot synchronous lookup: the explicit
// WithCLIPath override first, then the system PATH, then well-known
// install locations. Returns CLINotFoundError (with installation
// guidance) when the binary cannot be located.
func New(prompt string, opts ...Option) (*SubprocessTransport, error) {
	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	log = log.With("component", "cli_transport")

	cliPath, err := cli.Locate(context.Background(), &cli.DiscoveryConfig{
		ExplicitPath:     options.CLIPath,
		SkipVersionCheck: options.SkipVersionCheck,
		Logger:           log,
	})
	if err != nil {
		return nil, err
	}

	return &SubprocessTransport{
		log:   log,
		inner: subprocess.NewCLITransport(log, prompt, cliPath, options),
	}, nil
}

// Connect spawns the CLI subprocess. It is a no-op when the transport is
// already starting or running.
func (t *SubprocessTransport) Connect(ctx context.Context) error {
	return t.inner.Start(ctx)
}

// Disconnect terminates the CLI process, waiting up to five seconds for
// graceful termination before killing it. Calling Disconnect on an idle
// or already-terminated transport is a no-op.
func (t *SubprocessTransport) Disconnect() error {
	return t.inner.Stop()
}

// IsConnected reports whether the subprocess is running: a process
// handle exists and its exit status is still unknown.
func (t *SubprocessTransport) IsConnected() bool {
	return t.inner.Running()
}

// SendRequest is a no-op for this transport: all input is passed via
// command-line arguments at spawn time, not a runtime channel. It exists
// to satisfy the Transport interface.
func (t *SubprocessTransport) SendRequest(
	_ context.Context,
	_ []map[string]any,
	_ map[string]any,
) error {
	return nil
}

// ReceiveMessages returns the lazy, finite sequence of JSON messages
// decoded from the CLI stdout, in arrival order.
//
// Iteration may stop at any point (break, or an early return from the
// loop body); the underlying read loops are then torn down without
// error and a subsequent Disconnect is never blocked. Decode failures
// for unmistakably-JSON-looking output yield a CLIJSONDecodeError and
// end the stream. After stdout is exhausted, a non-zero exit with
// recognizable error text on stderr yields a ProcessError as the final
// element.
func (t *SubprocessTransport) ReceiveMessages(
	ctx context.Context,
) iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		// The derived context is the cancellation token: breaking out of
		// the loop cancels it, which releases both read loops.
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		messages, errs := t.inner.ReadMessages(ctx)

		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					// Message stream ended; surface any terminal error.
					for err := range errs {
						if !yield(nil, err) {
							return
						}
					}

					return
				}

				if !yield(msg, nil) {
					t.log.Debug("Consumer stopped iteration")

					return
				}

			case err, ok := <-errs:
				if !ok {
					for msg := range messages {
						if !yield(msg, nil) {
							return
						}
					}

					return
				}

				if !yield(nil, err) {
					return
				}

			case <-ctx.Done():
				yield(nil, ctx.Err())

				return
			}
		}
	}
}
