package document

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestDocument_VersionsIncrease(t *testing.T) {
	doc := New("abc")
	v0 := doc.Version()
	if v0 == 0 {
		t.Fatal("initial version is zero")
	}

	if err := doc.Insert(3, "d"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	v1 := doc.Version()
	if v1 <= v0 {
		t.Errorf("version after insert = %d, want > %d", v1, v0)
	}

	doc.SetText("xyz")
	if v2 := doc.Version(); v2 <= v1 {
		t.Errorf("version after SetText = %d, want > %d", v2, v1)
	}
}

func TestDocument_SharedStamper(t *testing.T) {
	s := &Stamper{}
	a := NewWithStamper(s, "a")
	b := NewWithStamper(s, "b")
	if a.Version() == b.Version() {
		t.Errorf("documents sharing a stamper got equal versions %d", a.Version())
	}
}

func TestDocument_Replace(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		start, end int
		repl       string
		want       string
		wantCursor int
	}{
		{"insert", "héllo", 5, 5, " world", "héllo world", 11},
		{"delete", "héllo", 1, 3, "", "hlo", 1},
		{"replace", "Thsi is a test.", 0, 4, "This", "This is a test.", 4},
		{"prepend", "b", 0, 0, "a", "ab", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := New(tt.text)
			if err := doc.Replace(tt.start, tt.end, tt.repl); err != nil {
				t.Fatalf("Replace: %v", err)
			}
			if got := doc.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
			if doc.Cursor() != tt.wantCursor {
				t.Errorf("Cursor() = %d, want %d", doc.Cursor(), tt.wantCursor)
			}
			if !doc.Modified() {
				t.Error("Modified() = false after edit")
			}
		})
	}
}

func TestDocument_ReplaceOutOfRange(t *testing.T) {
	doc := New("abc")
	v := doc.Version()
	for _, r := range [][2]int{{-1, 0}, {2, 1}, {0, 4}} {
		if err := doc.Replace(r[0], r[1], "x"); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Replace(%d, %d) = %v, want ErrOutOfRange", r[0], r[1], err)
		}
	}
	if doc.Version() != v {
		t.Error("failed replace changed the version")
	}
}

func TestDocument_NoopEditKeepsVersion(t *testing.T) {
	doc := New("abc")
	v := doc.Version()
	if err := doc.Insert(1, ""); err != nil {
		t.Fatal(err)
	}
	if doc.Version() != v {
		t.Error("empty insert bumped the version")
	}
}

func TestDocument_OnChange(t *testing.T) {
	doc := New("hello")
	var got []Change
	doc.OnChange(func(c Change) { got = append(got, c) })

	_ = doc.Replace(1, 3, "EEE")
	if len(got) != 1 {
		t.Fatalf("got %d changes, want 1", len(got))
	}
	c := got[0]
	if c.Start != 1 || c.OldEnd != 3 || c.NewEnd != 4 {
		t.Errorf("change = %+v, want {1 3 4}", c)
	}
	if c.Delta() != 1 {
		t.Errorf("Delta() = %d, want 1", c.Delta())
	}
	if c.Version != doc.Version() {
		t.Errorf("change version %d != document version %d", c.Version, doc.Version())
	}
}

func TestDocument_SnapshotConcurrentRead(t *testing.T) {
	doc := New("")
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := doc.Snapshot()
			if len(snap.Text) > 0 && snap.Version == 0 {
				t.Error("snapshot without version")
				return
			}
		}
	}()
	for i := 0; i < 1000; i++ {
		_ = doc.InsertAtCursor("x")
	}
	wg.Wait()
}

func TestDocument_Selection(t *testing.T) {
	doc := New("hello world")
	doc.Select(6, 11)
	start, end, ok := doc.Selection()
	if !ok || start != 6 || end != 11 {
		t.Fatalf("Selection() = %d, %d, %v", start, end, ok)
	}
	if err := doc.InsertAtCursor("there"); err != nil {
		t.Fatal(err)
	}
	if doc.Text() != "hello there" {
		t.Errorf("Text() = %q", doc.Text())
	}
	if _, _, ok := doc.Selection(); ok {
		t.Error("selection survived an edit")
	}
}

func TestDocument_BackspaceAndDelete(t *testing.T) {
	doc := New("abc")
	doc.SetCursor(0)
	_ = doc.Backspace()
	if doc.Text() != "abc" {
		t.Errorf("backspace at start changed text to %q", doc.Text())
	}
	doc.SetCursor(3)
	_ = doc.Backspace()
	if doc.Text() != "ab" {
		t.Errorf("Text() = %q, want ab", doc.Text())
	}
	doc.SetCursor(0)
	_ = doc.DeleteForward()
	if doc.Text() != "b" {
		t.Errorf("Text() = %q, want b", doc.Text())
	}
}

func TestDocument_WordAt(t *testing.T) {
	doc := New("Thsi is a test.")
	tests := []struct {
		offset     int
		start, end int
		ok         bool
	}{
		{0, 0, 4, true},
		{3, 0, 4, true},
		{4, 0, 0, false}, // space
		{5, 5, 7, true},
		{14, 0, 0, false}, // period
		{15, 0, 0, false}, // end
	}
	for _, tt := range tests {
		start, end, ok := doc.WordAt(tt.offset)
		if ok != tt.ok || start != tt.start || end != tt.end {
			t.Errorf("WordAt(%d) = %d, %d, %v, want %d, %d, %v",
				tt.offset, start, end, ok, tt.start, tt.end, tt.ok)
		}
	}
}

func TestDocument_Positions(t *testing.T) {
	doc := New("ab\ncde\n\nf")
	if n := doc.LineCount(); n != 4 {
		t.Fatalf("LineCount() = %d, want 4", n)
	}
	if got := doc.Line(1); got != "cde" {
		t.Errorf("Line(1) = %q", got)
	}
	if got := doc.Line(2); got != "" {
		t.Errorf("Line(2) = %q", got)
	}
	p := doc.PointAt(5)
	if p != (Point{Line: 1, Col: 2}) {
		t.Errorf("PointAt(5) = %+v", p)
	}
	if off := doc.OffsetAt(Point{Line: 1, Col: 99}); off != 6 {
		t.Errorf("OffsetAt clamp = %d, want 6", off)
	}
	if off := doc.OffsetAt(Point{Line: 3, Col: 0}); off != 8 {
		t.Errorf("OffsetAt(3,0) = %d, want 8", off)
	}
}

func TestDocument_CursorMovement(t *testing.T) {
	doc := New("abcd\nef\nghij")
	doc.SetCursor(3)
	doc.MoveDown()
	if doc.Cursor() != 7 { // end of "ef"
		t.Errorf("after MoveDown cursor = %d, want 7", doc.Cursor())
	}
	doc.MoveDown()
	if doc.Cursor() != 10 {
		t.Errorf("after second MoveDown cursor = %d, want 10", doc.Cursor())
	}
	doc.MoveHome()
	if doc.Cursor() != 8 {
		t.Errorf("after MoveHome cursor = %d, want 8", doc.Cursor())
	}
	doc.MoveEnd()
	if doc.Cursor() != 12 {
		t.Errorf("after MoveEnd cursor = %d, want 12", doc.Cursor())
	}
	doc.MoveUp()
	doc.MoveUp()
	if doc.Cursor() != 2 {
		t.Errorf("after MoveUp x2 cursor = %d, want 2", doc.Cursor())
	}
	doc.MoveLeft()
	doc.MoveRight()
	doc.MoveRight()
	if doc.Cursor() != 3 {
		t.Errorf("cursor = %d, want 3", doc.Cursor())
	}
}

func TestFile_RoundTrip(t *testing.T) {
	content := "# Title\r\n\nSome *text* with trailing spaces   \n\tand tabs\nno final newline"
	path := filepath.Join(t.TempDir(), "post.md")

	if err := WriteFile(path, content); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got != content {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", got, content)
	}

	raw, _ := os.ReadFile(path)
	if string(raw) != content {
		t.Error("bytes on disk differ from content")
	}
}

func TestFile_ReadInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.md")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 'a'}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); err == nil {
		t.Error("ReadFile accepted invalid UTF-8")
	}
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		text    string
		words   int
		minutes int
	}{
		{"", 0, 0},
		{"   \n", 0, 0},
		{"one two three", 3, 1},
	}
	for _, tt := range tests {
		got := ComputeStats(tt.text)
		if got.Words != tt.words || got.ReadingMinutes != tt.minutes {
			t.Errorf("ComputeStats(%q) = %+v, want %d words %d min", tt.text, got, tt.words, tt.minutes)
		}
	}

	long := ""
	for i := 0; i < 450; i++ {
		long += "word "
	}
	if got := ComputeStats(long); got.ReadingMinutes != 2 {
		t.Errorf("450 words reading time = %d, want 2", got.ReadingMinutes)
	}
}
