package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/wagiedev/claude-cli-transport/internal/config"
)

// BuildArgs constructs the CLI argument vector for a one-shot query.
//
// The translation is deterministic and order-preserving: the streaming
// output flags come first, conditional flags follow in a fixed order,
// and the prompt is always the final two tokens (--print <prompt>).
// A flag is omitted when its option is unset. BuildArgs has no side
// effects and is testable by asserting argv equality.
func BuildArgs(prompt string, options *config.Options) []string {
	args := []string{
		"--output-format", "stream-json",
		"--verbose",
	}

	if options.SystemPrompt != "" {
		args = append(args, "--system-prompt", options.SystemPrompt)
	}

	if options.AppendSystemPrompt != "" {
		args = append(args, "--append-system-prompt", options.AppendSystemPrompt)
	}

	if len(options.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(options.AllowedTools, ","))
	}

	if options.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(options.MaxTurns))
	}

	if len(options.DisallowedTools) > 0 {
		args = append(args, "--disallowedTools", strings.Join(options.DisallowedTools, ","))
	}

	if options.Model != "" {
		args = append(args, "--model", options.Model)
	}

	if options.PermissionPromptToolName != "" {
		args = append(args, "--permission-prompt-tool", options.PermissionPromptToolName)
	}

	if options.PermissionMode != "" {
		args = append(args, "--permission-mode", options.PermissionMode)
	}

	if options.ContinueConversation {
		args = append(args, "--continue")
	}

	if options.Resume != "" {
		args = append(args, "--resume", options.Resume)
	}

	if len(options.MCPServers) > 0 {
		// The server configs are opaque here; the whole map travels as
		// one JSON argument under the mcpServers wrapper.
		configJSON, err := json.Marshal(map[string]any{"mcpServers": options.MCPServers})
		if err == nil {
			args = append(args, "--mcp-config", string(configJSON))
		}
	}

	args = append(args, "--print", prompt)

	return args
}

// BuildEnvironment constructs the environment for the CLI process:
// the parent environment, the SDK entrypoint marker, and the overlay
// from options merged last. The parent environment is never mutated.
func BuildEnvironment(options *config.Options) []string {
	env := os.Environ()

	env = append(env, "CLAUDE_CODE_ENTRYPOINT=sdk-go")

	// Sorted for a deterministic argv-adjacent surface in tests.
	keys := make([]string, 0, len(options.Env))
	for key := range options.Env {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		env = append(env, fmt.Sprintf("%s=%s", key, options.Env[key]))
	}

	return env
}
