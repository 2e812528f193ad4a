package highlight

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Attr is how one span kind is drawn. A zero Fg leaves the underlying
// color untouched.
type Attr struct {
	Fg        tcell.Color
	Bold      bool
	Italic    bool
	Underline bool
}

// apply layers a over style.
func (a Attr) apply(style tcell.Style) tcell.Style {
	if a.Fg != tcell.ColorDefault {
		style = style.Foreground(a.Fg)
	}
	if a.Bold {
		style = style.Bold(true)
	}
	if a.Italic {
		style = style.Italic(true)
	}
	if a.Underline {
		style = style.Underline(true)
	}
	return style
}

// Theme maps span kinds to attributes.
type Theme struct {
	Base  tcell.Style
	Kinds map[Kind]Attr
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() *Theme {
	return &Theme{
		Base: tcell.StyleDefault,
		Kinds: map[Kind]Attr{
			KindHeader:       {Fg: tcell.ColorBlue, Bold: true},
			KindBold:         {Bold: true},
			KindItalic:       {Italic: true},
			KindCode:         {Fg: tcell.ColorGreen},
			KindLink:         {Fg: tcell.ColorPurple, Underline: true},
			KindGrammarError: {Fg: tcell.ColorRed, Underline: true},
		},
	}
}

// WithColors returns a copy of t whose kind colors are replaced by the
// given hex colors, keyed by kind name ("header", "grammarError", ...).
func (t *Theme) WithColors(colors map[string]string) (*Theme, error) {
	out := &Theme{Base: t.Base, Kinds: make(map[Kind]Attr, len(t.Kinds))}
	for k, a := range t.Kinds {
		out.Kinds[k] = a
	}
	for name, hex := range colors {
		k, ok := ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("theme: unknown kind %q", name)
		}
		c, err := ParseColor(hex)
		if err != nil {
			return nil, fmt.Errorf("theme: %s: %w", name, err)
		}
		a := out.Kinds[k]
		a.Fg = c
		out.Kinds[k] = a
	}
	return out, nil
}

// ParseColor parses a "#rrggbb" color.
func ParseColor(hex string) (tcell.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return tcell.ColorDefault, err
	}
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b)), nil
}

// Paint returns one style per rune of a text of n runes with spans applied
// in order.
func (t *Theme) Paint(n int, spans []Span) []tcell.Style {
	styles := make([]tcell.Style, n)
	for i := range styles {
		styles[i] = t.Base
	}
	for _, sp := range spans {
		a, ok := t.Kinds[sp.Kind]
		if !ok {
			continue
		}
		start, end := max(sp.Start, 0), min(sp.End, n)
		for i := start; i < end; i++ {
			styles[i] = a.apply(styles[i])
		}
	}
	return styles
}
