package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/claude-cli-transport/internal/config"
)

// TestBuildArgs_Defaults tests the baseline invocation: streaming output
// flags first, the prompt as the final two tokens, nothing else.
func TestBuildArgs_Defaults(t *testing.T) {
	args := BuildArgs("hello", &config.Options{})

	require.Equal(t, []string{
		"--output-format", "stream-json",
		"--verbose",
		"--print", "hello",
	}, args)
}

// TestBuildArgs_ModelAndMaxTurns tests the documented ordering property:
// streaming flags, then --max-turns, then --model, then the prompt last.
func TestBuildArgs_ModelAndMaxTurns(t *testing.T) {
	args := BuildArgs("count to three", &config.Options{
		Model:    "fast",
		MaxTurns: 3,
	})

	require.Equal(t, []string{
		"--output-format", "stream-json",
		"--verbose",
		"--max-turns", "3",
		"--model", "fast",
		"--print", "count to three",
	}, args)
}

// TestBuildArgs_AllOptions tests the full fixed flag order.
func TestBuildArgs_AllOptions(t *testing.T) {
	args := BuildArgs("prompt", &config.Options{
		SystemPrompt:             "be brief",
		AppendSystemPrompt:       "and kind",
		AllowedTools:             []string{"Read", "Write"},
		MaxTurns:                 5,
		DisallowedTools:          []string{"Bash"},
		Model:                    "claude-sonnet-4-5",
		PermissionPromptToolName: "approver",
		PermissionMode:           "acceptEdits",
		ContinueConversation:     true,
		Resume:                   "session-123",
	})

	require.Equal(t, []string{
		"--output-format", "stream-json",
		"--verbose",
		"--system-prompt", "be brief",
		"--append-system-prompt", "and kind",
		"--allowedTools", "Read,Write",
		"--max-turns", "5",
		"--disallowedTools", "Bash",
		"--model", "claude-sonnet-4-5",
		"--permission-prompt-tool", "approver",
		"--permission-mode", "acceptEdits",
		"--continue",
		"--resume", "session-123",
		"--print", "prompt",
	}, args)
}

// TestBuildArgs_MCPServers tests that the server map travels as one JSON
// argument under the mcpServers wrapper.
func TestBuildArgs_MCPServers(t *testing.T) {
	args := BuildArgs("prompt", &config.Options{
		MCPServers: map[string]any{
			"calc": map[string]any{"command": "calc-server"},
		},
	})

	require.Len(t, args, 7)
	require.Equal(t, "--mcp-config", args[3])

	var parsed map[string]any

	require.NoError(t, json.Unmarshal([]byte(args[4]), &parsed))

	servers, ok := parsed["mcpServers"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, servers, "calc")

	require.Equal(t, []string{"--print", "prompt"}, args[5:])
}

// TestBuildArgs_PromptAlwaysLast tests that --print and the prompt close
// the argv regardless of which options are set.
func TestBuildArgs_PromptAlwaysLast(t *testing.T) {
	tests := []struct {
		name    string
		options *config.Options
	}{
		{"no options", &config.Options{}},
		{"model only", &config.Options{Model: "fast"}},
		{"continue only", &config.Options{ContinueConversation: true}},
		{"everything empty but tools", &config.Options{AllowedTools: []string{"Read"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := BuildArgs("the prompt", tt.options)

			require.GreaterOrEqual(t, len(args), 5)
			require.Equal(t, "--print", args[len(args)-2])
			require.Equal(t, "the prompt", args[len(args)-1])
		})
	}
}

// TestBuildArgs_IsPure tests that BuildArgs does not mutate its options.
func TestBuildArgs_IsPure(t *testing.T) {
	options := &config.Options{Model: "fast", AllowedTools: []string{"Read"}}

	first := BuildArgs("p", options)
	second := BuildArgs("p", options)

	require.Equal(t, first, second)
	require.Equal(t, "fast", options.Model)
	require.Equal(t, []string{"Read"}, options.AllowedTools)
}

// TestBuildEnvironment_Marker tests that the entrypoint marker is always present.
func TestBuildEnvironment_Marker(t *testing.T) {
	env := BuildEnvironment(&config.Options{})

	require.Contains(t, env, "CLAUDE_CODE_ENTRYPOINT=sdk-go")
}

// TestBuildEnvironment_Overlay tests that the overlay is appended after
// the parent environment so it wins on duplicate keys.
func TestBuildEnvironment_Overlay(t *testing.T) {
	env := BuildEnvironment(&config.Options{
		Env: map[string]string{
			"ZED_VAR": "zz",
			"A_VAR":   "aa",
		},
	})

	// Overlay entries come last, sorted by key.
	require.Equal(t, "ZED_VAR=zz", env[len(env)-1])
	require.Equal(t, "A_VAR=aa", env[len(env)-2])

	markerIdx := -1

	for i, kv := range env {
		if strings.HasPrefix(kv, "CLAUDE_CODE_ENTRYPOINT=") {
			markerIdx = i

			break
		}
	}

	require.GreaterOrEqual(t, markerIdx, 0)
	require.Less(t, markerIdx, len(env)-2)
}
