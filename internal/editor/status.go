package editor

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/inkpost/internal/document"
)

// Status holds what the status bar shows besides the document statistics.
type Status struct {
	Name     string
	Modified bool
	Checking bool
	Message  string
	Autosave string
}

// SetMessage replaces the transient message.
func (s *Status) SetMessage(format string, args ...any) {
	s.Message = fmt.Sprintf(format, args...)
}

// Autosaved records a successful autosave.
func (s *Status) Autosaved(at time.Time) {
	s.Autosave = "Auto-saved at " + at.Format("15:04:05")
}

// Line renders the status bar text.
func (s *Status) Line(stats document.Stats) string {
	name := s.Name
	if name == "" {
		name = "[untitled]"
	}
	if s.Modified {
		name += " *"
	}
	parts := []string{
		name,
		fmt.Sprintf("Words: %d", stats.Words),
		fmt.Sprintf("Estimated Reading Time: %d min", stats.ReadingMinutes),
	}
	if s.Checking {
		parts = append(parts, "checking...")
	}
	if s.Message != "" {
		parts = append(parts, s.Message)
	}
	if s.Autosave != "" {
		parts = append(parts, s.Autosave)
	}
	return strings.Join(parts, " | ")
}
