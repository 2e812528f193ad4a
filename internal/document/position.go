package document

// Point is a zero-based line and rune column.
type Point struct {
	Line int
	Col  int
}

// LineCount returns the number of lines. An empty document has one line.
func (d *Document) LineCount() int {
	n := 1
	for _, r := range d.runes {
		if r == '\n' {
			n++
		}
	}
	return n
}

// LineStart returns the offset of the first rune of line, clamped to the
// last line.
func (d *Document) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	cur := 0
	for i, r := range d.runes {
		if r == '\n' {
			cur++
			if cur == line {
				return i + 1
			}
		}
	}
	// Past the end: start of the last line.
	return d.lineStartBefore(len(d.runes))
}

// LineEnd returns the offset just past the last rune of the line that
// contains offset, excluding the newline.
func (d *Document) LineEnd(offset int) int {
	offset = clamp(offset, 0, len(d.runes))
	for i := offset; i < len(d.runes); i++ {
		if d.runes[i] == '\n' {
			return i
		}
	}
	return len(d.runes)
}

// Line returns the text of line without its trailing newline.
func (d *Document) Line(line int) string {
	start := d.LineStart(line)
	return string(d.runes[start:d.LineEnd(start)])
}

// PointAt converts an offset to a line and column.
func (d *Document) PointAt(offset int) Point {
	offset = clamp(offset, 0, len(d.runes))
	p := Point{}
	for i := 0; i < offset; i++ {
		if d.runes[i] == '\n' {
			p.Line++
			p.Col = 0
		} else {
			p.Col++
		}
	}
	return p
}

// OffsetAt converts a point to an offset. Columns past the end of the line
// clamp to the line end.
func (d *Document) OffsetAt(p Point) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= d.LineCount() {
		return len(d.runes)
	}
	start := d.LineStart(p.Line)
	end := d.LineEnd(start)
	return clamp(start+p.Col, start, end)
}

func (d *Document) lineStartBefore(offset int) int {
	for i := offset - 1; i >= 0; i-- {
		if d.runes[i] == '\n' {
			return i + 1
		}
	}
	return 0
}

// MoveLeft moves the cursor one rune back.
func (d *Document) MoveLeft() {
	d.SetCursor(d.cursor - 1)
}

// MoveRight moves the cursor one rune forward.
func (d *Document) MoveRight() {
	d.SetCursor(d.cursor + 1)
}

// MoveUp moves the cursor to the same column on the previous line.
func (d *Document) MoveUp() {
	p := d.PointAt(d.cursor)
	if p.Line == 0 {
		d.SetCursor(0)
		return
	}
	d.SetCursor(d.OffsetAt(Point{Line: p.Line - 1, Col: p.Col}))
}

// MoveDown moves the cursor to the same column on the next line.
func (d *Document) MoveDown() {
	p := d.PointAt(d.cursor)
	if p.Line+1 >= d.LineCount() {
		d.SetCursor(len(d.runes))
		return
	}
	d.SetCursor(d.OffsetAt(Point{Line: p.Line + 1, Col: p.Col}))
}

// MoveHome moves the cursor to the start of its line.
func (d *Document) MoveHome() {
	d.SetCursor(d.lineStartBefore(d.cursor))
}

// MoveEnd moves the cursor to the end of its line.
func (d *Document) MoveEnd() {
	d.SetCursor(d.LineEnd(d.cursor))
}
