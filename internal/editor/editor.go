package editor

import (
	"github.com/gdamore/tcell/v2"
	"github.com/tliron/commonlog"

	"github.com/dshills/inkpost/internal/document"
	"github.com/dshills/inkpost/internal/grammar"
	"github.com/dshills/inkpost/internal/highlight"
)

var log = commonlog.GetLogger("inkpost.editor")

// Editor draws one document and turns terminal events into edits.
type Editor struct {
	screen tcell.Screen
	doc    *document.Document
	pipe   *grammar.Pipeline
	theme  *highlight.Theme
	keymap Keymap

	hl          highlight.Renderer
	syntaxDirty bool
	view        View
	anchor      int

	menu    *Menu
	prompt  *Prompt
	notices []string
	status  Status
	buttons tcell.ButtonMask
}

// New returns an editor drawing doc on screen. pipe may be nil when
// grammar checking is off.
func New(screen tcell.Screen, doc *document.Document, pipe *grammar.Pipeline, theme *highlight.Theme) *Editor {
	if theme == nil {
		theme = highlight.DefaultTheme()
	}
	e := &Editor{
		screen:      screen,
		doc:         doc,
		pipe:        pipe,
		theme:       theme,
		keymap:      DefaultKeymap(),
		syntaxDirty: true,
		anchor:      -1,
	}
	doc.OnChange(func(document.Change) { e.syntaxDirty = true })
	return e
}

// Status returns the status bar state for the caller to update.
func (e *Editor) Status() *Status { return &e.status }

// SetTheme switches the highlight theme.
func (e *Editor) SetTheme(t *highlight.Theme) { e.theme = t }

// SetTabSize sets the tab display width.
func (e *Editor) SetTabSize(n int) { e.view.TabSize = n }

// Prompting reports whether a prompt or menu has the keyboard.
func (e *Editor) Prompting() bool { return e.prompt != nil || e.menu != nil }

// Ask opens a line prompt. done runs on the main loop with the text and
// false when cancelled.
func (e *Editor) Ask(label, initial string, done func(text string, ok bool)) {
	e.prompt = NewPrompt(label, initial, done)
}

// Confirm opens a yes/no prompt.
func (e *Editor) Confirm(question string, done func(yes bool)) {
	e.prompt = NewConfirm(question, done)
}

// Notify shows message until the user dismisses it. Notices raised while
// another prompt is open wait for it to close.
func (e *Editor) Notify(message string) {
	e.notices = append(e.notices, message)
	if e.prompt == nil {
		e.nextNotice()
	}
}

func (e *Editor) nextNotice() {
	if len(e.notices) == 0 {
		return
	}
	msg := e.notices[0]
	e.notices = e.notices[1:]
	e.prompt = NewNotice(msg, func() {})
}

// Choose opens a menu at the cursor.
func (e *Editor) Choose(title string, items []string, pick func(i int)) {
	x, y, _ := e.view.Cursor(e.doc)
	e.menu = NewMenu(x, y, title, items, pick)
}

// HandleEvent processes one terminal event. Edits are applied directly;
// anything else is returned as a command.
func (e *Editor) HandleEvent(ev tcell.Event) Command {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		e.screen.Sync()
	case *tcell.EventKey:
		return e.handleKey(ev)
	case *tcell.EventMouse:
		e.handleMouse(ev)
	}
	return CmdNone
}

func (e *Editor) handleKey(ev *tcell.EventKey) Command {
	if e.prompt != nil {
		p := e.prompt
		if p.HandleKey(ev) && e.prompt == p {
			e.prompt = nil
			e.nextNotice()
		}
		return CmdNone
	}
	if e.menu != nil {
		m := e.menu
		if m.HandleKey(ev) && e.menu == m {
			e.menu = nil
		}
		return CmdNone
	}
	if cmd, ok := e.keymap[ev.Key()]; ok {
		return cmd
	}

	var err error
	shift := ev.Modifiers()&tcell.ModShift != 0
	switch ev.Key() {
	case tcell.KeyRune:
		err = e.doc.InsertAtCursor(string(ev.Rune()))
	case tcell.KeyEnter:
		err = e.doc.InsertAtCursor("\n")
	case tcell.KeyTab:
		err = e.doc.InsertAtCursor("\t")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		err = e.doc.Backspace()
	case tcell.KeyDelete:
		err = e.doc.DeleteForward()
	case tcell.KeyLeft:
		e.move(shift, e.doc.MoveLeft)
	case tcell.KeyRight:
		e.move(shift, e.doc.MoveRight)
	case tcell.KeyUp:
		e.move(shift, e.doc.MoveUp)
	case tcell.KeyDown:
		e.move(shift, e.doc.MoveDown)
	case tcell.KeyHome:
		e.move(shift, e.doc.MoveHome)
	case tcell.KeyEnd:
		e.move(shift, e.doc.MoveEnd)
	case tcell.KeyPgUp:
		e.move(shift, func() { e.repeat(e.view.Height, e.doc.MoveUp) })
	case tcell.KeyPgDn:
		e.move(shift, func() { e.repeat(e.view.Height, e.doc.MoveDown) })
	case tcell.KeyCtrlA:
		e.anchor = 0
		e.doc.Select(0, e.doc.Len())
	case tcell.KeyCtrlSpace:
		// The cursor usually sits just past the word it follows.
		if off := e.doc.Cursor(); !e.SuggestAt(off) && off > 0 {
			e.SuggestAt(off - 1)
		}
	case tcell.KeyEscape:
		e.anchor = -1
		e.doc.SetCursor(e.doc.Cursor())
	}
	if err != nil {
		log.Warning("edit failed", "error", err.Error())
	}
	if ev.Key() == tcell.KeyRune || ev.Key() == tcell.KeyEnter || ev.Key() == tcell.KeyTab ||
		ev.Key() == tcell.KeyBackspace || ev.Key() == tcell.KeyBackspace2 || ev.Key() == tcell.KeyDelete {
		e.anchor = -1
	}
	e.view.Follow(e.doc)
	return CmdNone
}

// move runs fn, extending the selection when shift is held.
func (e *Editor) move(shift bool, fn func()) {
	if !shift {
		e.anchor = -1
		fn()
		return
	}
	if e.anchor < 0 {
		e.anchor = e.doc.Cursor()
	}
	fn()
	e.doc.Select(e.anchor, e.doc.Cursor())
}

func (e *Editor) repeat(n int, fn func()) {
	for i := 0; i < max(1, n); i++ {
		fn()
	}
}

func (e *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	// Only presses count; drags and releases repeat the held buttons.
	buttons := ev.Buttons() &^ e.buttons
	e.buttons = ev.Buttons() & (tcell.Button1 | tcell.Button2 | tcell.Button3)

	if e.menu != nil {
		if buttons&(tcell.Button1|tcell.Button2) != 0 {
			w, h := e.screen.Size()
			m := e.menu
			m.HandleClick(x, y, w, h)
			if e.menu == m {
				e.menu = nil
			}
		}
		return
	}
	if e.prompt != nil {
		return
	}

	switch {
	case buttons&tcell.WheelUp != 0:
		e.view.ScrollBy(e.doc, -3)
	case buttons&tcell.WheelDown != 0:
		e.view.ScrollBy(e.doc, 3)
	case buttons&tcell.Button1 != 0:
		if off, ok := e.view.OffsetAt(e.doc, x, y); ok {
			e.anchor = -1
			e.doc.SetCursor(off)
		}
	case buttons&tcell.Button2 != 0:
		if off, ok := e.view.OffsetAt(e.doc, x, y); ok {
			e.openSuggestions(off, x, y)
		}
	}
}

// SuggestAt opens the suggestion menu for the word at offset, anchored at
// the cursor. It reports whether a menu was opened.
func (e *Editor) SuggestAt(offset int) bool {
	x, y, _ := e.view.Cursor(e.doc)
	return e.openSuggestions(offset, x, y)
}

func (e *Editor) openSuggestions(offset, x, y int) bool {
	if e.pipe == nil {
		return false
	}
	s, ok := e.pipe.SuggestionsAt(offset)
	if !ok || len(s.Replacements) == 0 {
		return false
	}
	e.menu = NewMenu(x, y, s.Message, s.Replacements, func(i int) {
		if i < 0 {
			return
		}
		if err := e.pipe.Apply(s, i); err != nil {
			e.status.SetMessage("Could not apply suggestion: %v", err)
			return
		}
		e.view.Follow(e.doc)
	})
	return true
}

// Draw repaints the whole screen.
func (e *Editor) Draw() {
	s := e.screen
	w, h := s.Size()
	e.view.X, e.view.Y = 0, 0
	e.view.Width, e.view.Height = w, max(0, h-2)
	e.view.Follow(e.doc)

	if e.syntaxDirty {
		e.hl.Syntax(e.doc.Text())
		e.syntaxDirty = false
	}
	var matches []grammar.Match
	if e.pipe != nil {
		matches = e.pipe.Matches()
	}
	e.hl.Errors(matches, e.doc.Len())
	styles := e.theme.Paint(e.doc.Len(), e.hl.Spans())

	selStart, selEnd, ok := e.doc.Selection()
	if !ok {
		selStart, selEnd = 0, 0
	}
	s.HideCursor()
	e.view.Draw(s, e.doc, styles, e.theme.Base, selStart, selEnd)

	if h >= 2 {
		e.status.Modified = e.doc.Modified()
		if e.pipe != nil {
			e.status.Checking = e.pipe.Busy()
		}
		stats := document.ComputeStats(e.doc.Snapshot().Text)
		drawText(s, 0, h-2, w, e.status.Line(stats), e.theme.Base.Reverse(true))
	}

	switch {
	case e.prompt != nil:
		e.prompt.Draw(s, h-1, w, e.theme.Base)
	default:
		drawText(s, 0, h-1, w, HelpText, e.theme.Base.Dim(true))
		if x, y, visible := e.view.Cursor(e.doc); visible {
			s.ShowCursor(x, y)
		}
	}
	if e.menu != nil {
		e.menu.Draw(s, e.theme.Base.Reverse(true))
	}
	s.Show()
}
