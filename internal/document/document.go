package document

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/rivo/uniseg"
)

// ErrOutOfRange is returned when an offset falls outside the document.
var ErrOutOfRange = errors.New("offset out of range")

// Change describes one mutation in rune offsets. The range [Start, OldEnd)
// of the previous text was replaced by [Start, NewEnd) of the new text.
type Change struct {
	Start   int
	OldEnd  int
	NewEnd  int
	Version Version
}

// Delta returns how far text after the change moved.
func (c Change) Delta() int {
	return c.NewEnd - c.OldEnd
}

// Document is the editable text buffer.
//
// Only the main loop may call mutating methods. Snapshot, Version and Text
// are safe from any goroutine.
type Document struct {
	stamper *Stamper
	runes   []rune
	snap    atomic.Pointer[Snapshot]

	cursor int
	anchor int // selection anchor, -1 when nothing is selected

	modified  bool
	listeners []func(Change)
}

// New creates a document with its own Stamper.
func New(text string) *Document {
	return NewWithStamper(&Stamper{}, text)
}

// NewWithStamper creates a document whose versions come from s.
func NewWithStamper(s *Stamper, text string) *Document {
	if s == nil {
		s = &Stamper{}
	}
	d := &Document{
		stamper: s,
		runes:   []rune(text),
		anchor:  -1,
	}
	d.publish(s.Next())
	return d
}

// OnChange registers fn to be called synchronously after every mutation.
func (d *Document) OnChange(fn func(Change)) {
	d.listeners = append(d.listeners, fn)
}

// Snapshot returns the current immutable snapshot.
func (d *Document) Snapshot() Snapshot {
	return *d.snap.Load()
}

// Version returns the version of the current content.
func (d *Document) Version() Version {
	return d.snap.Load().Version
}

// Text returns the current content.
func (d *Document) Text() string {
	return d.snap.Load().Text
}

// Len returns the length of the document in runes.
func (d *Document) Len() int {
	return len(d.runes)
}

// Slice returns the text in [start, end).
func (d *Document) Slice(start, end int) (string, error) {
	if err := d.checkRange(start, end); err != nil {
		return "", err
	}
	return string(d.runes[start:end]), nil
}

// Modified reports whether the content changed since the last MarkSaved.
func (d *Document) Modified() bool {
	return d.modified
}

// MarkSaved clears the modified flag.
func (d *Document) MarkSaved() {
	d.modified = false
}

// Insert inserts text at offset.
func (d *Document) Insert(offset int, text string) error {
	return d.Replace(offset, offset, text)
}

// Delete removes [start, end).
func (d *Document) Delete(start, end int) error {
	return d.Replace(start, end, "")
}

// Replace substitutes [start, end) with text and moves the cursor to the
// end of the inserted text.
func (d *Document) Replace(start, end int, text string) error {
	if err := d.checkRange(start, end); err != nil {
		return err
	}
	ins := []rune(text)
	if start == end && len(ins) == 0 {
		return nil
	}

	next := make([]rune, 0, len(d.runes)-(end-start)+len(ins))
	next = append(next, d.runes[:start]...)
	next = append(next, ins...)
	next = append(next, d.runes[end:]...)
	d.runes = next

	d.cursor = start + len(ins)
	d.anchor = -1
	d.commit(Change{Start: start, OldEnd: end, NewEnd: start + len(ins)})
	return nil
}

// SetText replaces the whole content and moves the cursor to the start.
// The result is reported as a single change covering the old text.
func (d *Document) SetText(text string) {
	old := len(d.runes)
	d.runes = []rune(text)
	d.cursor = 0
	d.anchor = -1
	d.commit(Change{Start: 0, OldEnd: old, NewEnd: len(d.runes)})
}

func (d *Document) commit(c Change) {
	d.modified = true
	c.Version = d.stamper.Next()
	d.publish(c.Version)
	for _, fn := range d.listeners {
		fn(c)
	}
}

func (d *Document) publish(v Version) {
	d.snap.Store(&Snapshot{Text: string(d.runes), Version: v})
}

func (d *Document) checkRange(start, end int) error {
	if start < 0 || end < start || end > len(d.runes) {
		return fmt.Errorf("%w: [%d, %d) in document of length %d", ErrOutOfRange, start, end, len(d.runes))
	}
	return nil
}

// Cursor returns the cursor offset.
func (d *Document) Cursor() int {
	return d.cursor
}

// SetCursor moves the cursor, clamping to the document bounds, and clears
// the selection.
func (d *Document) SetCursor(offset int) {
	d.cursor = clamp(offset, 0, len(d.runes))
	d.anchor = -1
}

// Select selects [anchor, cursor). Either order is accepted.
func (d *Document) Select(anchor, cursor int) {
	d.anchor = clamp(anchor, 0, len(d.runes))
	d.cursor = clamp(cursor, 0, len(d.runes))
}

// Selection returns the ordered selection range and whether one exists.
func (d *Document) Selection() (start, end int, ok bool) {
	if d.anchor < 0 || d.anchor == d.cursor {
		return d.cursor, d.cursor, false
	}
	if d.anchor < d.cursor {
		return d.anchor, d.cursor, true
	}
	return d.cursor, d.anchor, true
}

// InsertAtCursor replaces the selection (if any) with text.
func (d *Document) InsertAtCursor(text string) error {
	start, end, _ := d.Selection()
	return d.Replace(start, end, text)
}

// Backspace deletes the selection or the rune before the cursor.
func (d *Document) Backspace() error {
	start, end, ok := d.Selection()
	if ok {
		return d.Delete(start, end)
	}
	if d.cursor == 0 {
		return nil
	}
	return d.Delete(d.cursor-1, d.cursor)
}

// DeleteForward deletes the selection or the rune after the cursor.
func (d *Document) DeleteForward() error {
	start, end, ok := d.Selection()
	if ok {
		return d.Delete(start, end)
	}
	if d.cursor >= len(d.runes) {
		return nil
	}
	return d.Delete(d.cursor, d.cursor+1)
}

// WordAt returns the rune range of the word containing offset. Word
// boundaries follow Unicode text segmentation (UAX #29); segments without a
// letter or digit (spaces, punctuation) are not words.
func (d *Document) WordAt(offset int) (start, end int, ok bool) {
	if offset < 0 || offset >= len(d.runes) {
		return 0, 0, false
	}
	rest := d.Text()
	state := -1
	pos := 0
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		n := len([]rune(word))
		if offset < pos+n {
			if !isWord(word) {
				return 0, 0, false
			}
			return pos, pos + n, true
		}
		pos += n
	}
	return 0, 0, false
}

func isWord(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
