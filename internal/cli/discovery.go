package cli

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wagiedev/claude-cli-transport/internal/errors"
)

const (
	// MinimumVersion is the minimum supported Claude CLI version.
	MinimumVersion = "2.0.0"

	// VersionProbeTimeout bounds the CLI version probe command.
	VersionProbeTimeout = 2 * time.Second
)

// DiscoveryConfig holds configuration for CLI discovery.
type DiscoveryConfig struct {
	// ExplicitPath is an explicit CLI path that skips all searching.
	ExplicitPath string

	// SkipVersionCheck skips the version probe after discovery.
	// Can also be set via the CLAUDE_TRANSPORT_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	Logger *slog.Logger
}

// Locate finds the Claude CLI binary.
//
// Search order: the explicit path (if configured), the system PATH under
// the canonical name "claude", then a fixed list of well-known install
// locations. The first existing regular file wins. When nothing is found
// the returned CLINotFoundError carries installation guidance: if Node.js
// itself is missing the guidance says to install it first, otherwise it
// names the npm package, the explicit-path override, and a PATH hint.
func Locate(ctx context.Context, cfg *DiscoveryConfig) (string, error) {
	if cfg == nil {
		cfg = &DiscoveryConfig{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	if cfg.ExplicitPath != "" {
		log.Debug("Using explicit CLI path", "cli_path", cfg.ExplicitPath)

		if info, err := os.Stat(cfg.ExplicitPath); err == nil && info.Mode().IsRegular() {
			probeVersion(ctx, log, cfg, cfg.ExplicitPath)

			return cfg.ExplicitPath, nil
		}

		return "", &errors.CLINotFoundError{
			Message:       "Claude CLI not found at: " + cfg.ExplicitPath,
			SearchedPaths: []string{cfg.ExplicitPath},
		}
	}

	searched := make([]string, 0, 6)

	log.Debug("Searching for 'claude' in PATH")

	if path, err := exec.LookPath("claude"); err == nil {
		log.Debug("Found 'claude' in PATH", "path", path)
		probeVersion(ctx, log, cfg, path)

		return path, nil
	}

	searched = append(searched, "$PATH")

	for _, path := range wellKnownLocations() {
		searched = append(searched, path)
		log.Debug("Checking well-known location", "path", path)

		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			log.Debug("Found CLI at well-known location", "path", path)
			probeVersion(ctx, log, cfg, path)

			return path, nil
		}
	}

	log.Warn("Claude CLI not found in any searched location", "searched_paths", searched)

	return "", &errors.CLINotFoundError{
		Message:       notFoundGuidance(),
		SearchedPaths: searched,
	}
}

// wellKnownLocations returns the fixed list of install locations checked
// after the PATH search: global npm prefix, /usr/local/bin, per-user
// local bin, per-user node_modules bin, per-user yarn bin.
func wellKnownLocations() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return []string{"/usr/local/bin/claude"}
	}

	return []string{
		filepath.Join(home, ".npm-global/bin/claude"),
		"/usr/local/bin/claude",
		filepath.Join(home, ".local/bin/claude"),
		filepath.Join(home, "node_modules/.bin/claude"),
		filepath.Join(home, ".yarn/bin/claude"),
	}
}

// notFoundGuidance builds the installation guidance embedded in
// CLINotFoundError. The CLI is distributed via npm, so a missing Node.js
// runtime gets its own message.
func notFoundGuidance() string {
	if _, err := exec.LookPath("node"); err != nil {
		return "Claude CLI requires Node.js, which is not installed.\n\n" +
			"Install Node.js from: https://nodejs.org/\n" +
			"\nAfter installing Node.js, install the Claude CLI:\n" +
			"  npm install -g @anthropic-ai/claude-code"
	}

	return "Claude CLI not found. Install with:\n" +
		"  npm install -g @anthropic-ai/claude-code\n" +
		"\nIf already installed locally, try:\n" +
		`  export PATH="$HOME/node_modules/.bin:$PATH"` + "\n" +
		"\nOr specify the path when creating the transport:\n" +
		"  clitransport.New(prompt, clitransport.WithCLIPath(\"/path/to/claude\"))"
}

// probeVersion runs `<cli> -v` and warns when the reported version is
// below MinimumVersion. Probe failures are silently ignored: the probe
// never blocks or fails discovery.
func probeVersion(ctx context.Context, log *slog.Logger, cfg *DiscoveryConfig, cliPath string) {
	if cfg.SkipVersionCheck {
		log.Debug("Skipping CLI version probe (configured)")

		return
	}

	if os.Getenv("CLAUDE_TRANSPORT_SKIP_VERSION_CHECK") != "" {
		log.Debug("Skipping CLI version probe (CLAUDE_TRANSPORT_SKIP_VERSION_CHECK set)")

		return
	}

	ctx, cancel := context.WithTimeout(ctx, VersionProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cliPath, "-v")

	output, err := cmd.Output()
	if err != nil {
		log.Debug("CLI version probe failed", "error", err)

		return
	}

	versionStr := strings.TrimSpace(string(output))
	re := regexp.MustCompile(`^([0-9]+\.[0-9]+\.[0-9]+)`)

	match := re.FindStringSubmatch(versionStr)
	if match == nil {
		log.Debug("Could not parse CLI version", "output", versionStr)

		return
	}

	version := match[1]
	if compareVersions(version, MinimumVersion) < 0 {
		log.Warn("Claude CLI version is below the minimum supported version",
			"version", version,
			"minimum_required", MinimumVersion,
		)
	} else {
		log.Debug("CLI version probe passed", "version", version, "minimum", MinimumVersion)
	}
}

// compareVersions compares two semantic versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := range 3 {
		aNum := 0
		bNum := 0

		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}

		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}

		if aNum < bNum {
			return -1
		}

		if aNum > bNum {
			return 1
		}
	}

	return 0
}
