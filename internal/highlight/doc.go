// Package highlight computes the styled spans drawn over the Markdown
// source: syntax spans (headers, emphasis, code, links) and grammar error
// spans.
//
// Spans are derived data. A Renderer recomputes every span of a kind from
// the full text each time it is asked, after clearing the old spans of that
// kind; nothing is merged incrementally. Overlapping spans are kept as they
// are and painted in order, so a later span wins for the attributes it
// sets.
package highlight
