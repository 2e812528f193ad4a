package editor

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Prompt reads one line of input, a yes/no answer or an acknowledgement
// on the bottom row.
type Prompt struct {
	Label string

	input  []rune
	cursor int
	yesNo  bool
	ack    bool
	done   func(text string, ok bool)
}

// NewPrompt asks for a line of text, starting from initial.
func NewPrompt(label, initial string, done func(string, bool)) *Prompt {
	in := []rune(initial)
	return &Prompt{Label: label, input: in, cursor: len(in), done: done}
}

// NewConfirm asks a yes/no question. done receives "y" and true for yes.
func NewConfirm(question string, done func(bool)) *Prompt {
	return &Prompt{
		Label: question + " (y/n) ",
		yesNo: true,
		done:  func(_ string, ok bool) { done(ok) },
	}
}

// NewNotice shows message until Enter, Escape or Space is pressed.
func NewNotice(message string, done func()) *Prompt {
	return &Prompt{
		Label: message + " [Enter] ",
		ack:   true,
		done:  func(string, bool) { done() },
	}
}

// Text returns the current input.
func (p *Prompt) Text() string {
	return string(p.input)
}

// HandleKey edits the input and reports whether the prompt is finished.
func (p *Prompt) HandleKey(ev *tcell.EventKey) bool {
	if p.ack {
		switch {
		case ev.Key() == tcell.KeyEnter, ev.Key() == tcell.KeyEscape,
			ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			p.done("", true)
			return true
		}
		return false
	}
	if p.yesNo {
		switch {
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'y' || ev.Rune() == 'Y'):
			p.done("y", true)
			return true
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'n' || ev.Rune() == 'N'),
			ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			p.done("n", false)
			return true
		}
		return false
	}

	switch ev.Key() {
	case tcell.KeyEnter:
		p.done(string(p.input), true)
		return true
	case tcell.KeyEscape, tcell.KeyCtrlC:
		p.done("", false)
		return true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if p.cursor > 0 {
			p.input = append(p.input[:p.cursor-1], p.input[p.cursor:]...)
			p.cursor--
		}
	case tcell.KeyDelete:
		if p.cursor < len(p.input) {
			p.input = append(p.input[:p.cursor], p.input[p.cursor+1:]...)
		}
	case tcell.KeyLeft:
		p.cursor = max(0, p.cursor-1)
	case tcell.KeyRight:
		p.cursor = min(len(p.input), p.cursor+1)
	case tcell.KeyHome, tcell.KeyCtrlA:
		p.cursor = 0
	case tcell.KeyEnd, tcell.KeyCtrlE:
		p.cursor = len(p.input)
	case tcell.KeyCtrlU:
		p.input, p.cursor = p.input[:0], 0
	case tcell.KeyRune:
		p.input = append(p.input[:p.cursor], append([]rune{ev.Rune()}, p.input[p.cursor:]...)...)
		p.cursor++
	}
	return false
}

// Draw paints the prompt on row y and places the terminal cursor.
func (p *Prompt) Draw(s tcell.Screen, y, width int, style tcell.Style) {
	line := p.Label + string(p.input)
	drawText(s, 0, y, width, line, style)
	x := uniseg.StringWidth(p.Label) + uniseg.StringWidth(string(p.input[:p.cursor]))
	if x < width {
		s.ShowCursor(x, y)
	}
}
