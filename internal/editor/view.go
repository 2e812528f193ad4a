package editor

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/inkpost/internal/document"
)

// View maps document lines onto a rectangle of screen cells. Lines are not
// wrapped; the view scrolls in both directions to keep the cursor visible.
type View struct {
	X, Y          int
	Width, Height int
	TabSize       int

	top  int
	left int
}

// Top returns the first visible line.
func (v *View) Top() int { return v.top }

func (v *View) tabSize() int {
	if v.TabSize < 1 {
		return 4
	}
	return v.TabSize
}

// cellWidth is the number of cells r occupies at display column col.
func (v *View) cellWidth(r rune, col int) int {
	if r == '\t' {
		return v.tabSize() - col%v.tabSize()
	}
	if w := uniseg.StringWidth(string(r)); w > 0 {
		return w
	}
	return 1
}

// column returns the display column of rune index i in line.
func (v *View) column(line []rune, i int) int {
	col := 0
	for _, r := range line[:min(i, len(line))] {
		col += v.cellWidth(r, col)
	}
	return col
}

// Follow scrolls so that the cursor is visible.
func (v *View) Follow(doc *document.Document) {
	p := doc.PointAt(doc.Cursor())
	if p.Line < v.top {
		v.top = p.Line
	}
	if v.Height > 0 && p.Line >= v.top+v.Height {
		v.top = p.Line - v.Height + 1
	}
	col := v.column([]rune(doc.Line(p.Line)), p.Col)
	if col < v.left {
		v.left = col
	}
	if v.Width > 0 && col >= v.left+v.Width {
		v.left = col - v.Width + 1
	}
}

// ScrollBy moves the view by n lines without moving the cursor.
func (v *View) ScrollBy(doc *document.Document, n int) {
	v.top = max(0, min(v.top+n, doc.LineCount()-1))
}

// Cursor returns the screen cell of the cursor.
func (v *View) Cursor(doc *document.Document) (x, y int, visible bool) {
	p := doc.PointAt(doc.Cursor())
	col := v.column([]rune(doc.Line(p.Line)), p.Col)
	x, y = v.X+col-v.left, v.Y+p.Line-v.top
	visible = x >= v.X && x < v.X+v.Width && y >= v.Y && y < v.Y+v.Height
	return x, y, visible
}

// OffsetAt returns the document offset under screen cell (x, y). Cells
// right of a line's end map to the line end.
func (v *View) OffsetAt(doc *document.Document, x, y int) (int, bool) {
	if x < v.X || x >= v.X+v.Width || y < v.Y || y >= v.Y+v.Height {
		return 0, false
	}
	line := v.top + y - v.Y
	if line >= doc.LineCount() {
		return doc.Len(), true
	}
	runes := []rune(doc.Line(line))
	target := x - v.X + v.left
	col := 0
	for i, r := range runes {
		w := v.cellWidth(r, col)
		if target < col+w {
			return doc.LineStart(line) + i, true
		}
		col += w
	}
	return doc.LineStart(line) + len(runes), true
}

// Draw paints the visible lines. styles holds one style per rune of the
// document; selStart and selEnd bound the selection.
func (v *View) Draw(s tcell.Screen, doc *document.Document, styles []tcell.Style, base tcell.Style, selStart, selEnd int) {
	for row := 0; row < v.Height; row++ {
		y := v.Y + row
		for x := v.X; x < v.X+v.Width; x++ {
			s.SetContent(x, y, ' ', nil, base)
		}
		line := v.top + row
		if line >= doc.LineCount() {
			continue
		}
		start := doc.LineStart(line)
		col := 0
		for i, r := range []rune(doc.Line(line)) {
			off := start + i
			w := v.cellWidth(r, col)
			style := base
			if off < len(styles) {
				style = styles[off]
			}
			if off >= selStart && off < selEnd {
				style = style.Reverse(true)
			}
			glyph := r
			if r == '\t' || r == '\r' {
				glyph = ' '
			}
			x := v.X + col - v.left
			if x >= v.X && x+w <= v.X+v.Width {
				s.SetContent(x, y, glyph, nil, style)
				for k := 1; k < w; k++ {
					if r == '\t' {
						s.SetContent(x+k, y, ' ', nil, style)
					}
				}
			}
			col += w
		}
	}
}
