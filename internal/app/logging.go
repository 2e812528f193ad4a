package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("inkpost.app")

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LogLevelDebug is for detailed debugging information.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for warning messages.
	LogLevelWarn
	// LogLevelError is for error messages.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Verbosity converts l to a commonlog verbosity, where 0 is notice.
func (l LogLevel) Verbosity() int {
	switch l {
	case LogLevelDebug:
		return 2
	case LogLevelWarn:
		return -1
	case LogLevelError:
		return -2
	default:
		return 1
	}
}

// DefaultLogFile is where the editor logs while tcell owns the terminal.
func DefaultLogFile(stateDir string) string {
	return filepath.Join(stateDir, "inkpost.log")
}

// ConfigureLogging sets the global log level and destination. An empty
// file logs to stderr.
func ConfigureLogging(level, file string) error {
	lvl := ParseLogLevel(level)
	if file == "" {
		commonlog.Configure(lvl.Verbosity(), nil)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return &FileError{Op: "create log directory", Path: filepath.Dir(file), Err: err}
	}
	commonlog.Configure(lvl.Verbosity(), &file)
	return nil
}
