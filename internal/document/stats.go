package document

import "strings"

// WordsPerMinute is the reading speed used for reading time estimates.
const WordsPerMinute = 200

// Stats summarizes a text for the status bar.
type Stats struct {
	Words          int
	ReadingMinutes int
}

// ComputeStats counts whitespace-separated words. Reading time is at least
// one minute for any non-empty text.
func ComputeStats(text string) Stats {
	words := len(strings.Fields(text))
	minutes := 0
	if words > 0 {
		minutes = max(1, words/WordsPerMinute)
	}
	return Stats{Words: words, ReadingMinutes: minutes}
}
