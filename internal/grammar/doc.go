// Package grammar runs proofreading in the background while the user types.
//
// The pipeline has four stages, all owned by a Pipeline:
//
//	document edit ─▶ Debouncer ─▶ Worker ─▶ Router ─▶ listeners (highlighting)
//	                 (quiet period) (one goroutine) (version check)
//
// The Debouncer waits until edits stop for a quiet period and then fires on
// the main loop. The Worker checks an immutable snapshot of the text on its
// own goroutine; if a check is already running the request is dropped. The
// Router takes the finished result back onto the main loop and applies it
// only if the document version still equals the version of the snapshot.
// Stale results are discarded.
//
// Check failures are logged at debug level and otherwise ignored: the
// feature degrades to "no highlighting" until the next successful cycle.
package grammar
