package highlight

import (
	"reflect"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/inkpost/internal/grammar"
)

func spansOf(spans []Span, kind Kind) [][2]int {
	var out [][2]int
	for _, s := range spans {
		if s.Kind == kind {
			out = append(out, [2]int{s.Start, s.End})
		}
	}
	return out
}

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind Kind
		want [][2]int
	}{
		{"header", "# Title", KindHeader, [][2]int{{0, 7}}},
		{"header level six", "###### Deep\nbody", KindHeader, [][2]int{{0, 11}}},
		{"header needs space", "#Title", KindHeader, nil},
		{"header mid line", "Not a header # mid", KindHeader, nil},
		{"header seven hashes", "####### no", KindHeader, nil},
		{"second line header", "intro\n## Part", KindHeader, [][2]int{{6, 13}}},
		{"header crlf", "# Title\r\nbody\r\n## Next\r\n", KindHeader, [][2]int{{0, 7}, {15, 22}}},
		{"bold", "a **b** c", KindBold, [][2]int{{2, 7}}},
		{"bold not across lines", "**a\nb**", KindBold, nil},
		{"italic", "an *em* word", KindItalic, [][2]int{{3, 7}}},
		{"italic inside bold", "**bold**", KindItalic, [][2]int{{0, 8}}},
		{"two italics", "*a* and *b*", KindItalic, [][2]int{{0, 3}, {8, 11}}},
		{"empty italic", "**", KindItalic, nil},
		{"code", "use `go test` now", KindCode, [][2]int{{4, 13}}},
		{"link", "see [docs](http://x.y) ok", KindLink, [][2]int{{4, 22}}},
		{"rune offsets", "é `x`", KindCode, [][2]int{{2, 5}}},
		{"rune offsets header", "# Ünïcode", KindHeader, [][2]int{{0, 9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := spansOf(Markdown(tt.text), tt.kind)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Markdown(%q) %s = %v, want %v", tt.text, tt.kind, got, tt.want)
			}
		})
	}
}

func TestSet_Clear(t *testing.T) {
	var s Set
	s.Add(Span{KindHeader, 0, 1}, Span{KindGrammarError, 0, 2}, Span{KindCode, 3, 4})
	s.Clear(KindHeader, KindCode)
	got := s.Spans()
	if len(got) != 1 || got[0].Kind != KindGrammarError {
		t.Errorf("Spans() = %v", got)
	}
	s.Clear()
	if s.Len() != 1 {
		t.Errorf("Clear() with no kinds removed spans")
	}
}

func TestRenderer_ErrorsAfterSyntax(t *testing.T) {
	var r Renderer
	r.Errors([]grammar.Match{
		{Offset: 2, Length: 4},
		{Offset: 5, Length: 10},
		{Offset: 20, Length: 1},
	}, 9)
	r.Syntax("# Thsi is")
	spans := r.Spans()
	if spans[0].Kind != KindHeader {
		t.Fatalf("first span = %v, want header", spans[0])
	}
	want := [][2]int{{2, 6}, {5, 9}}
	if got := spansOf(spans, KindGrammarError); !reflect.DeepEqual(got, want) {
		t.Errorf("error spans = %v, want %v", got, want)
	}

	r.Errors(nil, 9)
	if got := spansOf(r.Spans(), KindGrammarError); got != nil {
		t.Errorf("errors not cleared: %v", got)
	}
}

func TestTheme_Paint(t *testing.T) {
	theme := DefaultTheme()
	styles := theme.Paint(6, []Span{
		{KindBold, 0, 4},
		{KindGrammarError, 2, 10},
	})
	if len(styles) != 6 {
		t.Fatalf("len = %d", len(styles))
	}
	fg, _, attr := styles[3].Decompose()
	if attr&tcell.AttrBold == 0 || attr&tcell.AttrUnderline == 0 {
		t.Errorf("rune 3 attrs = %v, want bold and underline", attr)
	}
	if fg != tcell.ColorRed {
		t.Errorf("rune 3 fg = %v, want red", fg)
	}
	_, _, attr = styles[0].Decompose()
	if attr&tcell.AttrUnderline != 0 {
		t.Errorf("rune 0 underlined")
	}
	if styles[5] == theme.Base {
		t.Errorf("rune 5 not painted")
	}
}

func TestTheme_WithColors(t *testing.T) {
	base := DefaultTheme()
	th, err := base.WithColors(map[string]string{"code": "#ff8000"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := th.Kinds[KindCode].Fg, tcell.NewRGBColor(255, 128, 0); got != want {
		t.Errorf("code fg = %v, want %v", got, want)
	}
	if base.Kinds[KindCode].Fg != tcell.ColorGreen {
		t.Errorf("base theme modified")
	}
	if _, err := base.WithColors(map[string]string{"nope": "#000000"}); err == nil {
		t.Error("unknown kind accepted")
	}
	if _, err := base.WithColors(map[string]string{"code": "green"}); err == nil {
		t.Error("bad hex accepted")
	}
}
