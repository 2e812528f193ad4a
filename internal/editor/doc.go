// Package editor is the terminal user interface: a Markdown text area with
// syntax and grammar highlighting, a status bar, a one-line prompt and the
// suggestion menu opened by right-clicking a flagged word.
//
// The editor only edits text. Everything else (files, publishing, model
// calls) is returned to the caller as a Command and carried out there.
// All methods must be called on the main loop.
package editor
