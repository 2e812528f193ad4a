package grammar

import (
	"context"

	"github.com/dshills/inkpost/internal/document"
)

// MaxSuggestions is the maximum number of replacements offered for a match.
const MaxSuggestions = 5

// Match is one problem reported by a Checker. Offset and Length are rune
// offsets into the checked text.
type Match struct {
	Offset       int
	Length       int
	Replacements []string
	Message      string
	RuleID       string
}

// End returns the offset just past the match.
func (m Match) End() int {
	return m.Offset + m.Length
}

// Intersects reports whether [start, end) overlaps the match.
func (m Match) Intersects(start, end int) bool {
	return start < m.End() && m.Offset < end
}

// Suggestions returns at most MaxSuggestions replacements.
func (m Match) Suggestions() []string {
	if len(m.Replacements) > MaxSuggestions {
		return m.Replacements[:MaxSuggestions]
	}
	return m.Replacements
}

// Checker proofreads a complete text. Implementations may block for a long
// time and must be safe to call from any goroutine.
type Checker interface {
	Check(ctx context.Context, text string) ([]Match, error)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, text string) ([]Match, error)

// Check calls f(ctx, text).
func (f CheckerFunc) Check(ctx context.Context, text string) ([]Match, error) {
	return f(ctx, text)
}

// Result is what a worker hands back to the main loop.
type Result struct {
	Matches []Match
	Version document.Version
	Err     error
}

// adjust moves matches to follow an edit the same way text markers do:
// matches before the edit stay, matches after it shift by the edit delta
// and matches touched by it are dropped until the next check.
func adjust(matches []Match, c document.Change) []Match {
	if len(matches) == 0 {
		return matches
	}
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		switch {
		case m.End() <= c.Start:
			out = append(out, m)
		case m.Offset >= c.OldEnd:
			m.Offset += c.Delta()
			out = append(out, m)
		}
	}
	return out
}
