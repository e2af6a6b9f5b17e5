// Package ffmpegtool runs ffmpeg command lines as subprocesses.
package ffmpegtool

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/user/reelcut/pkg/ports"
)

// maxStderr bounds the stderr text kept on a ToolError.
const maxStderr = 4096

// waitDelay bounds how long Run waits for output pipes after the process
// was killed on cancellation.
const waitDelay = 5 * time.Second

// Tool implements ports.MediaTool for one executable.
type Tool struct {
	path      string
	name      string
	log       ports.Logger
	dryRun    bool
	base      []string
	waitDelay time.Duration
}

// New creates a Tool for the executable at path.
func New(path string, log ports.Logger) *Tool {
	return &Tool{
		path:      path,
		name:      "ffmpeg",
		log:       log.WithComponent("ffmpeg"),
		base:      []string{"-hide_banner", "-nostdin", "-loglevel", "error"},
		waitDelay: waitDelay,
	}
}

// WithDryRun makes Run log the command line instead of executing it.
func (t *Tool) WithDryRun(dryRun bool) *Tool {
	t.dryRun = dryRun
	return t
}

// Run executes the tool and waits for it to exit.
func (t *Tool) Run(ctx context.Context, args []string) (ports.ToolResult, error) {
	full := append(append([]string(nil), t.base...), args...)
	result := ports.ToolResult{Args: full}

	if t.dryRun {
		t.log.Info("Dry run: %s", CommandLine(t.path, full))
		return result, nil
	}
	t.log.Debug("Running %s", CommandLine(t.path, full))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.path, full...)
	cmd.Stderr = &stderr
	cmd.WaitDelay = t.waitDelay

	err := cmd.Run()
	result.Stderr = tail(stderr.String(), maxStderr)
	if err == nil {
		return result, nil
	}

	toolErr := &ports.ToolError{Tool: t.name, Args: full, ExitCode: -1, Stderr: result.Stderr, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		toolErr.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		toolErr.Err = ctxErr
		toolErr.ExitCode = -1
	}
	result.ExitCode = toolErr.ExitCode
	return result, toolErr
}

// CommandLine renders an invocation for logs, quoting arguments with spaces.
func CommandLine(path string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quote(path))
	for _, a := range args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t'\"") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

var _ ports.MediaTool = (*Tool)(nil)
