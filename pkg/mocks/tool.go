package mocks

import (
	"context"
	"sync"

	"github.com/user/reelcut/pkg/ports"
)

// MediaTool is a mock implementation of ports.MediaTool.
type MediaTool struct {
	mu sync.Mutex

	// RunFunc overrides the default successful result.
	RunFunc func(ctx context.Context, args []string) (ports.ToolResult, error)

	// Calls records the arguments of every invocation.
	Calls [][]string
}

// NewMediaTool creates a MediaTool that succeeds on every call.
func NewMediaTool() *MediaTool {
	return &MediaTool{}
}

func (m *MediaTool) Run(ctx context.Context, args []string) (ports.ToolResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]string(nil), args...))
	fn := m.RunFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, args)
	}
	return ports.ToolResult{Args: args}, nil
}

// CallCount returns the number of recorded invocations.
func (m *MediaTool) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// ArgValue returns the argument following the first occurrence of flag.
func ArgValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

var _ ports.MediaTool = (*MediaTool)(nil)
