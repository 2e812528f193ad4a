// Package document holds the Markdown source being edited.
//
// A Document is owned by the main loop: only that goroutine mutates it.
// Every mutation is stamped with a new Version and publishes an immutable
// Snapshot, so background readers (the grammar worker, the autosaver) can
// read the text from any goroutine without locking.
//
// Offsets throughout the package are rune offsets, not byte offsets:
//
//	doc := document.New("héllo")
//	doc.Insert(5, " world")   // "héllo world"
//	snap := doc.Snapshot()    // {Text: "héllo world", Version: 2}
//
// The Stamper that produces versions can be shared between documents so
// that versions stay unique for the lifetime of an editor session, even
// across New/Open.
package document
