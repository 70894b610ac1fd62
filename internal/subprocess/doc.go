// Package subprocess owns the Claude CLI process lifecycle.
//
// A CLITransport moves through the states Idle, Starting, Running,
// Stopping and Terminated. Start spawns the CLI with stdin discarded and
// stdout/stderr captured; Stop escalates from graceful termination to a
// forced kill. ReadMessages drains stderr in the background while
// decoding stdout line by line, re-segmenting lines that carry several
// concatenated JSON objects.
package subprocess
