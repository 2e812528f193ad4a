package editor

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Menu is a popup list of choices anchored at a screen cell.
type Menu struct {
	X, Y     int
	Title    string
	Items    []string
	Selected int

	pick func(i int)
}

// NewMenu returns a menu that calls pick with the chosen index, or -1 when
// dismissed.
func NewMenu(x, y int, title string, items []string, pick func(int)) *Menu {
	return &Menu{X: x, Y: y, Title: title, Items: items, pick: pick}
}

func (m *Menu) label(i int) string {
	return fmt.Sprintf(" %d %s ", i+1, m.Items[i])
}

// rect returns the menu's bounds, shifted to fit a w by h screen.
func (m *Menu) rect(w, h int) (x, y, width, height int) {
	width = uniseg.StringWidth(" " + m.Title + " ")
	for i := range m.Items {
		width = max(width, uniseg.StringWidth(m.label(i)))
	}
	height = len(m.Items)
	if m.Title != "" {
		height++
	}
	x, y = m.X, m.Y+1
	if x+width > w {
		x = max(0, w-width)
	}
	if y+height > h {
		y = max(0, m.Y-height)
	}
	return x, y, width, height
}

// HandleKey moves the selection or finishes the menu. It reports whether
// the menu is finished.
func (m *Menu) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		m.Selected = (m.Selected + len(m.Items) - 1) % len(m.Items)
	case tcell.KeyDown, tcell.KeyTab:
		m.Selected = (m.Selected + 1) % len(m.Items)
	case tcell.KeyEnter:
		m.pick(m.Selected)
		return true
	case tcell.KeyEscape:
		m.pick(-1)
		return true
	case tcell.KeyRune:
		if d := int(ev.Rune() - '1'); d >= 0 && d < len(m.Items) && d < 9 {
			m.pick(d)
			return true
		}
	}
	return false
}

// HandleClick picks the item at (x, y) or dismisses the menu when the
// click is outside it. The menu is always finished afterwards.
func (m *Menu) HandleClick(x, y, w, h int) {
	mx, my, mw, mh := m.rect(w, h)
	first := my
	if m.Title != "" {
		first++
	}
	if x >= mx && x < mx+mw && y >= first && y < my+mh {
		m.pick(y - first)
		return
	}
	m.pick(-1)
}

// Draw paints the menu over whatever is below it.
func (m *Menu) Draw(s tcell.Screen, style tcell.Style) {
	w, h := s.Size()
	x, y, width, _ := m.rect(w, h)
	row := y
	if m.Title != "" {
		drawText(s, x, row, width, " "+m.Title+" ", style.Bold(true))
		row++
	}
	for i := range m.Items {
		st := style
		if i == m.Selected {
			st = st.Reverse(true)
		}
		drawText(s, x, row, width, m.label(i), st)
		row++
	}
}

// drawText writes text starting at (x, y), padding or clipping to width
// cells.
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := 0
	state := -1
	for text != "" && col < width {
		var cluster string
		var w int
		cluster, text, w, state = uniseg.FirstGraphemeClusterInString(text, state)
		if col+w > width {
			break
		}
		runes := []rune(cluster)
		s.SetContent(x+col, y, runes[0], runes[1:], style)
		col += max(w, 1)
	}
	for ; col < width; col++ {
		s.SetContent(x+col, y, ' ', nil, style)
	}
}
