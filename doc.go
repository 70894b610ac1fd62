// Package clitransport drives the Claude CLI as a subprocess and exposes
// its streaming JSON output as a lazy message stream.
//
// The transport feeds the prompt to the CLI via command-line arguments,
// decodes newline-delimited JSON from stdout (tolerating several
// concatenated objects per line), and concurrently drains stderr for
// diagnostics. Message schemas are not interpreted at this layer: each
// message is an opaque map[string]any.
//
// # Basic Usage
//
//	transport, err := clitransport.New("What is 2+2?",
//	    clitransport.WithModel("claude-sonnet-4-5"),
//	    clitransport.WithMaxTurns(1),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := transport.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer transport.Disconnect()
//
//	for msg, err := range transport.ReceiveMessages(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(msg["type"])
//	}
//
// # Logging
//
// By default the transport is silent. Use WithLogger for operation
// tracking:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	transport, err := clitransport.New(prompt, clitransport.WithLogger(logger))
//
// # Error Handling
//
// Typed errors cover the failure scenarios:
//
//	if notFound, ok := errors.AsType[*clitransport.CLINotFoundError](err); ok {
//	    // notFound.Message carries installation guidance
//	}
//	if procErr, ok := errors.AsType[*clitransport.ProcessError](err); ok {
//	    // procErr.ExitCode, procErr.Stderr
//	}
//
// # Requirements
//
// The Claude CLI must be installed and discoverable in PATH or one of
// the well-known install locations. Use WithCLIPath to point at a
// specific binary.
package clitransport
