// Package config provides configuration types for the CLI transport.
package config

import "log/slog"

// Options configures a subprocess transport. Fields map one-to-one to
// CLI flags (see internal/cli.BuildArgs) or to process spawn parameters.
// The zero value of every field means "omit the corresponding flag".
type Options struct {
	// Logger receives debug output. If nil, logging is disabled.
	Logger *slog.Logger

	// CLIPath is an explicit path to the claude binary.
	// If set, discovery skips the PATH and well-known-location search.
	CLIPath string

	// Cwd is the working directory for the CLI process.
	// If empty, the process inherits the parent's working directory.
	Cwd string

	// Env is an environment overlay merged over the parent environment
	// at spawn time. The parent environment is never mutated.
	Env map[string]string

	// SystemPrompt overrides the CLI system prompt.
	SystemPrompt string

	// AppendSystemPrompt appends to the CLI system prompt.
	AppendSystemPrompt string

	// AllowedTools pre-approves tools (comma-joined into one flag).
	AllowedTools []string

	// DisallowedTools blocks tools (comma-joined into one flag).
	DisallowedTools []string

	// MaxTurns limits the number of conversation turns.
	MaxTurns int

	// Model selects the model.
	Model string

	// PermissionPromptToolName names the tool used for permission prompts.
	PermissionPromptToolName string

	// PermissionMode controls how permissions are handled.
	PermissionMode string

	// ContinueConversation continues the most recent conversation.
	ContinueConversation bool

	// Resume is a session ID to resume from.
	Resume string

	// MCPServers is the MCP server configuration, keyed by server name.
	// Values are opaque at this layer; the whole map is serialized as
	// JSON into a single --mcp-config argument.
	MCPServers map[string]any

	// Stderr, if set, receives each stderr line as it is drained.
	Stderr func(line string)

	// MaxBufferSize caps the stdout line buffer in bytes.
	// Zero means the default (1MiB).
	MaxBufferSize int

	// SkipVersionCheck disables the CLI version probe at construction.
	SkipVersionCheck bool
}
