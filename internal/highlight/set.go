package highlight

import "github.com/dshills/inkpost/internal/grammar"

// Set holds the current spans in draw order.
type Set struct {
	spans []Span
}

// Add appends spans.
func (s *Set) Add(spans ...Span) {
	s.spans = append(s.spans, spans...)
}

// Clear removes every span of the given kinds.
func (s *Set) Clear(kinds ...Kind) {
	if len(kinds) == 0 {
		return
	}
	kept := s.spans[:0]
	for _, sp := range s.spans {
		if !containsKind(kinds, sp.Kind) {
			kept = append(kept, sp)
		}
	}
	s.spans = kept
}

// Spans returns a copy of the spans in draw order.
func (s *Set) Spans() []Span {
	out := make([]Span, len(s.spans))
	copy(out, s.spans)
	return out
}

// Len returns the number of spans.
func (s *Set) Len() int {
	return len(s.spans)
}

func containsKind(kinds []Kind, k Kind) bool {
	for _, kk := range kinds {
		if kk == k {
			return true
		}
	}
	return false
}

// Renderer keeps a Set up to date from the document text and the current
// grammar matches. Syntax spans are always added before error spans so
// that error styling is drawn on top.
type Renderer struct {
	syntax Set
	errors Set
}

// Syntax replaces all syntax spans with those computed from text.
func (r *Renderer) Syntax(text string) {
	r.syntax.Clear(SyntaxKinds...)
	r.syntax.Add(Markdown(text)...)
}

// Errors replaces all grammar error spans. Matches extending past n runes
// are clamped; matches starting at or past n are skipped.
func (r *Renderer) Errors(matches []grammar.Match, n int) {
	r.errors.Clear(KindGrammarError)
	for _, m := range matches {
		start, end := m.Offset, m.End()
		if start < 0 || start >= n || end <= start {
			continue
		}
		if end > n {
			end = n
		}
		r.errors.Add(Span{Kind: KindGrammarError, Start: start, End: end})
	}
}

// Spans returns syntax spans followed by error spans.
func (r *Renderer) Spans() []Span {
	out := r.syntax.Spans()
	return append(out, r.errors.spans...)
}
