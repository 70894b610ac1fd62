package subprocess

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/claude-cli-transport/internal/cli"
	"github.com/wagiedev/claude-cli-transport/internal/config"
	"github.com/wagiedev/claude-cli-transport/internal/errors"
	"github.com/wagiedev/claude-cli-transport/internal/jsonsplit"
)

const (
	// terminateTimeout is the graceful-termination budget before Stop
	// escalates to SIGKILL. The kill wait itself is unbounded.
	terminateTimeout = 5 * time.Second

	// defaultMaxBufferSize is the default limit for a single stdout line.
	defaultMaxBufferSize = 1024 * 1024 // 1MB

	// maxStderrBufferSize caps the accumulated stderr buffer. Draining
	// continues past the cap (the callback still sees every line), but
	// the buffer stops growing to prevent unbounded memory usage.
	maxStderrBufferSize = 10 * 1024 * 1024 // 10MB
)

// state tracks the process controller lifecycle.
type state int

const (
	stateIdle state = iota
	stateStarting
	stateRunning
	stateStopping
	stateTerminated
)

// procHandle owns one spawned CLI process: its command, pipe ends, and
// exit status. Wait is funneled through a sync.Once so the read loop and
// Stop can both reap without racing.
type procHandle struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser

	waitOnce sync.Once
	waitDone chan struct{}
	waitErr  error
}

// wait reaps the process exactly once and returns its wait error.
// Safe for concurrent use; late callers block until the reap completes.
func (h *procHandle) wait() error {
	h.waitOnce.Do(func() {
		h.waitErr = h.cmd.Wait()
		close(h.waitDone)
	})

	<-h.waitDone

	return h.waitErr
}

// exited reports whether the process has been reaped.
func (h *procHandle) exited() bool {
	select {
	case <-h.waitDone:
		return true
	default:
		return false
	}
}

// exitCode returns the process exit code after wait has completed.
func (h *procHandle) exitCode() int {
	if ps := h.cmd.ProcessState; ps != nil {
		return ps.ExitCode()
	}

	return 0
}

// closePipes releases both pipe ends. Closing an already-closed pipe is
// harmless, which keeps teardown idempotent across Stop and the read loop.
func (h *procHandle) closePipes() {
	_ = h.stdout.Close()
	_ = h.stderr.Close()
}

// CLITransport drives the Claude CLI as a subprocess: the prompt travels
// via argv, messages come back as streaming JSON on stdout.
type CLITransport struct {
	log     *slog.Logger
	options *config.Options
	prompt  string
	cliPath string

	mu         sync.Mutex
	state      state
	handle     *procHandle
	sessionLog *slog.Logger
}

// NewCLITransport creates a transport for one prompt. The CLI binary must
// already be located; discovery happens at construction of the public
// transport, not here.
func NewCLITransport(
	log *slog.Logger,
	prompt string,
	cliPath string,
	options *config.Options,
) *CLITransport {
	return &CLITransport{
		log:        log,
		options:    options,
		prompt:     prompt,
		cliPath:    cliPath,
		sessionLog: log,
	}
}

// Start spawns the CLI subprocess with stdin discarded, stdout and stderr
// captured, the configured working directory, and the parent environment
// plus the SDK entrypoint marker. It is a no-op when already starting or
// running.
//
// Returns CLINotFoundError when the binary vanished between discovery and
// spawn, or CLIConnectionError for any other spawn failure.
func (t *CLITransport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == stateStarting || t.state == stateRunning {
		t.log.Debug("Start called while already connected, ignoring")

		return nil
	}

	t.state = stateStarting

	// One ULID per spawn, threaded through every log line of the session.
	log := t.log.With("session_id", ulid.Make().String())

	args := cli.BuildArgs(t.prompt, t.options)
	log.Debug("Built command arguments", "args", args)

	//nolint:gosec // G204: subprocess launching with dynamic args is the point of this transport
	cmd := exec.Command(t.cliPath, args...)
	cmd.Dir = t.options.Cwd
	cmd.Env = cli.BuildEnvironment(t.options)
	// Stdin stays nil so the child reads from the null device. The CLI
	// must never block waiting on input it will not receive.
	cmd.Stdin = nil

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.state = stateIdle

		return &errors.CLIConnectionError{Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		t.state = stateIdle

		return &errors.CLIConnectionError{Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		t.state = stateIdle

		if stderrors.Is(err, exec.ErrNotFound) || stderrors.Is(err, fs.ErrNotExist) {
			log.Error("CLI binary disappeared between discovery and spawn", "cli_path", t.cliPath)

			return &errors.CLINotFoundError{
				Message:       "Claude CLI not found at: " + t.cliPath,
				SearchedPaths: []string{t.cliPath},
			}
		}

		log.Error("Failed to start CLI process", "error", err)

		return &errors.CLIConnectionError{Err: fmt.Errorf("start process: %w", err)}
	}

	t.handle = &procHandle{
		cmd:      cmd,
		stdout:   stdout,
		stderr:   stderr,
		waitDone: make(chan struct{}),
	}
	t.sessionLog = log
	t.state = stateRunning

	log.Info("Claude CLI subprocess started", "pid", cmd.Process.Pid)

	return nil
}

// Stop terminates the CLI process. A still-running process gets SIGTERM
// and up to terminateTimeout to exit; on timeout the process is killed
// and the wait is unconditional. A process that already exited during
// this sequence is tolerated, not an error. Pipes are always released
// and the handle cleared, so calling Stop twice is a no-op the second
// time.
func (t *CLITransport) Stop() error {
	t.mu.Lock()

	if t.state == stateIdle || t.state == stateTerminated || t.handle == nil {
		t.mu.Unlock()

		return nil
	}

	handle := t.handle
	log := t.sessionLog
	t.state = stateStopping
	t.mu.Unlock()

	if !handle.exited() {
		log.Debug("Requesting graceful termination", "pid", handle.cmd.Process.Pid)

		// Already-exited race: the signal fails with ErrProcessDone and
		// the wait below returns immediately.
		if err := handle.cmd.Process.Signal(syscall.SIGTERM); err != nil &&
			!stderrors.Is(err, os.ErrProcessDone) {
			log.Debug("Terminate signal failed", "error", err)
		}

		go func() { _ = handle.wait() }()

		select {
		case <-handle.waitDone:
		case <-time.After(terminateTimeout):
			log.Warn("Graceful termination timed out, killing process")

			if err := handle.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
				log.Debug("Kill failed", "error", err)
			}

			<-handle.waitDone
		}
	}

	handle.closePipes()

	t.mu.Lock()
	t.handle = nil
	t.state = stateTerminated
	t.mu.Unlock()

	log.Info("CLI process terminated", "exit_code", handle.exitCode())

	return nil
}

// Running reports whether a process handle exists and its exit status is
// still unknown.
func (t *CLITransport) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.handle != nil && !t.handle.exited()
}

// ReadMessages decodes the message stream from the CLI stdout.
//
// Two tasks run for the lifetime of the request: a background goroutine
// draining stderr into a bounded buffer, and the stdout loop producing
// messages. Each stdout line is trimmed, re-segmented into complete JSON
// objects (see jsonsplit), and decoded. Candidates that look like JSON
// but fail to parse surface a CLIJSONDecodeError and end the stream;
// incidental non-JSON text is skipped silently.
//
// After stdout is exhausted the process is reaped. A non-zero exit
// surfaces a ProcessError only when the stderr buffer is non-empty and
// contains "error" (case-insensitive); absence of stderr text never
// raises. Cancelling ctx stops both loops without error and never skips
// pipe teardown.
//
// Both returned channels are closed when reading completes.
func (t *CLITransport) ReadMessages(
	ctx context.Context,
) (<-chan map[string]any, <-chan error) {
	messages := make(chan map[string]any)
	errs := make(chan error, 1)

	t.mu.Lock()
	handle := t.handle
	log := t.sessionLog
	running := t.state == stateRunning
	t.mu.Unlock()

	if !running || handle == nil {
		errs <- &errors.CLIConnectionError{Err: errors.ErrNotConnected}
		close(messages)
		close(errs)

		return messages, errs
	}

	stderrCallback := t.options.Stderr

	maxBuf := t.options.MaxBufferSize
	if maxBuf <= 0 {
		maxBuf = defaultMaxBufferSize
	}

	// StderrBuffer: written only by the drain goroutine, read only after
	// the group join, so the mutex just orders the cap check.
	var (
		stderrMu  sync.Mutex
		stderrBuf strings.Builder
	)

	var g errgroup.Group

	g.Go(func() error {
		scanner := bufio.NewScanner(handle.stderr)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			stderrMu.Lock()

			if stderrBuf.Len() < maxStderrBufferSize {
				if stderrBuf.Len() > 0 {
					stderrBuf.WriteByte('\n')
				}

				stderrBuf.WriteString(line)
			}

			stderrMu.Unlock()

			if stderrCallback != nil {
				stderrCallback(line)
			}
		}

		// A closed pipe is the expected teardown signal; anything else
		// is worth a debug line but never fails the drain.
		if err := scanner.Err(); err != nil && !stderrors.Is(err, fs.ErrClosed) {
			log.Debug("Stderr scanner error", "error", err)
		}

		return nil
	})

	go func() {
		defer close(messages)
		defer close(errs)

		// A blocked pipe read cannot observe ctx directly; closing the
		// pipes on cancellation unblocks both loops.
		stopWatch := context.AfterFunc(ctx, handle.closePipes)
		defer stopWatch()

		completed := false

		defer func() {
			if !completed {
				// Early exit (decode error, consumer stop): closing the
				// pipes unblocks the stderr drain so the group join below
				// cannot hang on a still-running process.
				handle.closePipes()
			}

			_ = g.Wait()
		}()

		scanner := bufio.NewScanner(handle.stdout)
		buf := make([]byte, maxBuf)
		scanner.Buffer(buf, maxBuf)

		messageCount := 0

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				log.Debug("Read cancelled during scan")

				return
			default:
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			// One nominal line may carry several concatenated JSON
			// objects; when the scan finds none, the whole line is the
			// single candidate so bare literals and garbage still get a
			// decode attempt.
			candidates := jsonsplit.Objects(line)
			if len(candidates) == 0 {
				candidates = []string{line}
			}

			for _, candidate := range candidates {
				if strings.TrimSpace(candidate) == "" {
					continue
				}

				var msg map[string]any

				if err := json.Unmarshal([]byte(candidate), &msg); err != nil {
					if jsonsplit.LooksLikeJSON(candidate) {
						log.Debug("Failed to decode JSON from CLI", "error", err, "raw", candidate)
						sendErr(ctx, errs, &errors.CLIJSONDecodeError{RawData: candidate, Err: err})

						return
					}

					// Incidental non-JSON text, e.g. a stray log line.
					continue
				}

				messageCount++
				log.Debug("Received message from CLI", "message_count", messageCount)

				select {
				case messages <- msg:
				case <-ctx.Done():
					log.Debug("Read cancelled during message send")

					return
				}
			}
		}

		if ctx.Err() != nil {
			// Consumer-driven stop: normal termination, no exit
			// correlation. Disconnect owns the process from here.
			log.Debug("Read cancelled")

			return
		}

		if err := scanner.Err(); err != nil {
			if stderrors.Is(err, fs.ErrClosed) {
				// Pipes torn down underneath us (Stop during read); the
				// exit correlation below still runs.
				log.Debug("Stdout closed during read")
			} else {
				log.Error("Scanner error while reading CLI output", "error", err)
				sendErr(ctx, errs, fmt.Errorf("read stdout: %w", err))
			}
		}

		completed = true

		// Stderr drains to EOF once the process exits; join before the
		// buffer is read.
		_ = g.Wait()

		if err := handle.wait(); err != nil {
			log.Debug("CLI process exited with error", "error", err)
		}

		code := handle.exitCode()
		if code == 0 {
			log.Info("CLI process exited successfully")

			return
		}

		stderrMu.Lock()
		stderrText := stderrBuf.String()
		stderrMu.Unlock()

		if stderrText != "" && strings.Contains(strings.ToLower(stderrText), "error") {
			log.Error("CLI process failed", "exit_code", code)
			sendErr(ctx, errs, &errors.ProcessError{ExitCode: code, Stderr: stderrText})

			return
		}

		// Non-zero exit without recognizable error text is tolerated:
		// some tools warn on stderr without failing semantically.
		log.Warn("CLI exited non-zero without recognizable error text", "exit_code", code)
	}()

	return messages, errs
}

// sendErr delivers err unless the consumer is already gone.
func sendErr(ctx context.Context, errs chan<- error, err error) {
	select {
	case errs <- err:
	case <-ctx.Done():
	}
}
