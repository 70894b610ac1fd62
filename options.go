package clitransport

import (
	"log/slog"

	"github.com/wagiedev/claude-cli-transport/internal/config"
)

// Option configures the transport using the functional options pattern.
type Option func(*config.Options)

// applyOptions applies functional options to a fresh Options struct.
func applyOptions(opts []Option) *config.Options {
	options := &config.Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *config.Options) {
		o.Logger = logger
	}
}

// WithCLIPath sets the explicit path to the claude CLI binary,
// skipping the PATH and well-known-location search.
func WithCLIPath(path string) Option {
	return func(o *config.Options) {
		o.CLIPath = path
	}
}

// WithCwd sets the working directory for the CLI process.
func WithCwd(cwd string) Option {
	return func(o *config.Options) {
		o.Cwd = cwd
	}
}

// WithEnv provides additional environment variables for the CLI process,
// merged over the parent environment at spawn time.
func WithEnv(env map[string]string) Option {
	return func(o *config.Options) {
		o.Env = env
	}
}

// ===== Prompting =====

// WithSystemPrompt overrides the system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(o *config.Options) {
		o.SystemPrompt = prompt
	}
}

// WithAppendSystemPrompt appends to the default system prompt.
func WithAppendSystemPrompt(prompt string) Option {
	return func(o *config.Options) {
		o.AppendSystemPrompt = prompt
	}
}

// WithModel specifies which model to use.
func WithModel(model string) Option {
	return func(o *config.Options) {
		o.Model = model
	}
}

// WithMaxTurns limits the maximum number of conversation turns.
func WithMaxTurns(maxTurns int) Option {
	return func(o *config.Options) {
		o.MaxTurns = maxTurns
	}
}

// ===== Tools & Permissions =====

// WithAllowedTools sets pre-approved tools that can be used without prompting.
func WithAllowedTools(tools ...string) Option {
	return func(o *config.Options) {
		o.AllowedTools = tools
	}
}

// WithDisallowedTools sets tools that are explicitly blocked.
func WithDisallowedTools(tools ...string) Option {
	return func(o *config.Options) {
		o.DisallowedTools = tools
	}
}

// WithPermissionPromptToolName specifies the tool name used for
// permission prompts.
func WithPermissionPromptToolName(name string) Option {
	return func(o *config.Options) {
		o.PermissionPromptToolName = name
	}
}

// WithPermissionMode controls how permissions are handled.
// Valid values: "default", "acceptEdits", "plan", "bypassPermissions".
func WithPermissionMode(mode string) Option {
	return func(o *config.Options) {
		o.PermissionMode = mode
	}
}

// ===== Session =====

// WithContinueConversation continues the most recent conversation.
func WithContinueConversation(cont bool) Option {
	return func(o *config.Options) {
		o.ContinueConversation = cont
	}
}

// WithResume sets a session ID to resume from.
func WithResume(sessionID string) Option {
	return func(o *config.Options) {
		o.Resume = sessionID
	}
}

// ===== MCP =====

// WithMCPServers configures external MCP servers to connect to.
// Map key is the server name; values are opaque server configurations
// serialized as JSON into a single --mcp-config argument.
func WithMCPServers(servers map[string]any) Option {
	return func(o *config.Options) {
		o.MCPServers = servers
	}
}

// ===== Advanced =====

// WithStderr sets a callback receiving each stderr line as it is drained.
// The full stderr text is still buffered for error reporting.
func WithStderr(handler func(string)) Option {
	return func(o *config.Options) {
		o.Stderr = handler
	}
}

// WithMaxBufferSize caps a single stdout line in bytes (default 1MiB).
func WithMaxBufferSize(size int) Option {
	return func(o *config.Options) {
		o.MaxBufferSize = size
	}
}

// WithSkipVersionCheck disables the CLI version probe at construction.
func WithSkipVersionCheck(skip bool) Option {
	return func(o *config.Options) {
		o.SkipVersionCheck = skip
	}
}
