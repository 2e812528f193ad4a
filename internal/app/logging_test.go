package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input     string
		want      LogLevel
		verbosity int
	}{
		{"debug", LogLevelDebug, 2},
		{"DEBUG", LogLevelDebug, 2},
		{"info", LogLevelInfo, 1},
		{"warn", LogLevelWarn, -1},
		{"warning", LogLevelWarn, -1},
		{"error", LogLevelError, -2},
		{"", LogLevelInfo, 1},
		{"chatty", LogLevelInfo, 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if v := got.Verbosity(); v != tt.verbosity {
				t.Errorf("Verbosity() = %d, want %d", v, tt.verbosity)
			}
		})
	}
}

func TestLogLevel_String(t *testing.T) {
	if LogLevelWarn.String() != "WARN" || LogLevel(42).String() != "UNKNOWN" {
		t.Error("unexpected level names")
	}
}

func TestConfigureLogging_CreatesDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state", "inkpost.log")
	if err := ConfigureLogging("debug", file); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ConfigureLogging("info", "") })
	if _, err := os.Stat(filepath.Dir(file)); err != nil {
		t.Errorf("log directory not created: %v", err)
	}
}
