package ports

import "fmt"

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for per-frame and per-command details inside stages.
	LevelDebug LogLevel = iota
	// LevelInfo is for pipeline-level progress.
	LevelInfo
	// LevelWarn is for skipped inputs, truncated segments and drift.
	LevelWarn
	// LevelError is for failures that stop an operation.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

var levelNames = []string{"debug", "info", "warn", "error", "quiet"}

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelQuiet {
		return "unknown"
	}
	return levelNames[l]
}

// LogLevelNames lists the accepted level names in order of severity.
func LogLevelNames() []string {
	names := make([]string, len(levelNames))
	copy(names, levelNames)
	return names
}

// ParseLogLevel parses a level name.
func ParseLogLevel(s string) (LogLevel, error) {
	for i, name := range levelNames {
		if name == s {
			return LogLevel(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger abstracts logging operations with multi-language support.
// msg is a message key that may be translated before formatting.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}
