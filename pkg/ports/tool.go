package ports

import (
	"context"
	"fmt"
	"strings"
)

// ToolResult captures one invocation of the external transcoding tool.
type ToolResult struct {
	Args     []string
	ExitCode int
	Stderr   string
}

// MediaTool runs the external media transcoding tool (ffmpeg) as a subprocess.
type MediaTool interface {
	// Run executes the tool with args and blocks until it exits.
	// A non-zero exit is returned as *ToolError.
	Run(ctx context.Context, args []string) (ToolResult, error)
}

// ToolError reports a failed external tool invocation.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	if e.Err != nil && e.ExitCode < 0 {
		msg = fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Unwrap lets errors.Is match ErrToolFailed as well as the underlying cause,
// such as context.Canceled when the run was interrupted.
func (e *ToolError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrToolFailed}
	}
	return []error{ErrToolFailed, e.Err}
}

// CommandLine renders the invocation for logs.
func (e *ToolError) CommandLine() string {
	return e.Tool + " " + strings.Join(e.Args, " ")
}
