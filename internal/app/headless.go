package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dshills/inkpost/internal/document"
	"github.com/dshills/inkpost/internal/frontmatter"
	"github.com/dshills/inkpost/internal/grammar"
	"github.com/dshills/inkpost/internal/history"
	"github.com/dshills/inkpost/internal/loop"
	"github.com/dshills/inkpost/internal/preview"
	"github.com/dshills/inkpost/internal/publish"
)

// Check runs one grammar check of text through the same pipeline the
// editor uses, on a private main loop, and waits for it to finish.
func Check(ctx context.Context, text string, checker grammar.Checker) ([]grammar.Match, error) {
	if checker == nil {
		return nil, NewOperationError("check", "", ErrNotConfigured).WithContext("grammar checking is disabled")
	}

	var checkErr error
	capture := grammar.CheckerFunc(func(ctx context.Context, text string) ([]grammar.Match, error) {
		m, err := checker.Check(ctx, text)
		checkErr = err
		return m, err
	})

	runCtx, finish := context.WithCancel(ctx)
	defer finish()

	q := loop.NewQueue(8)
	var p *grammar.Pipeline
	post := loop.PosterFunc(func(fn func()) {
		q.Post(func() {
			fn()
			if !p.Busy() && !p.Pending() {
				finish()
			}
		})
	})

	doc := document.New(text)
	p = grammar.NewPipeline(doc, capture, post)
	defer p.Close()

	var matches []grammar.Match
	p.OnMatches(func(m []grammar.Match) { matches = m })
	p.CheckNow()

	if err := q.Run(runCtx); err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if checkErr != nil {
		return nil, NewOperationError("check", "", checkErr)
	}
	return matches, nil
}

// WriteMatches prints one line per match as line:column, the message, the
// flagged text and up to five replacements.
func WriteMatches(w io.Writer, name, text string, matches []grammar.Match) error {
	doc := document.New(text)
	for _, m := range matches {
		p := doc.PointAt(m.Offset)
		word, err := doc.Slice(m.Offset, m.End())
		if err != nil {
			continue
		}
		line := fmt.Sprintf("%s:%d:%d: %s %q", name, p.Line+1, p.Col+1, m.Message, word)
		if s := m.Suggestions(); len(s) > 0 {
			line += " -> " + strings.Join(s, ", ")
		}
		if m.RuleID != "" {
			line += " [" + m.RuleID + "]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Preview renders text to an HTML page at out. The front matter title
// becomes the page title and its image is shown above the body.
func Preview(text, source, out string) error {
	meta, body, err := frontmatter.Split(text)
	if err != nil {
		return NewOperationError("preview", source, err)
	}
	if img := meta.Image; img != "" {
		if !isRemote(img) && !filepath.IsAbs(img) && source != "" {
			img = filepath.Join(filepath.Dir(source), img)
		}
		body = publish.WithFeaturedImage(body, img)
	}
	title := meta.Title
	if title == "" {
		title = displayName(source)
	}
	if err := preview.New().WriteFile(out, title, body); err != nil {
		return &FileError{Op: "write preview", Path: out, Err: err}
	}
	return nil
}

// PreviewPath is the HTML file a document's preview is written to.
func PreviewPath(dir, source string) string {
	name := strings.TrimSuffix(displayName(source), filepath.Ext(source))
	return filepath.Join(dir, "inkpost-preview-"+name+".html")
}

// WriteHistory lists up to limit published posts, newest first.
func WriteHistory(ctx context.Context, w io.Writer, store *history.Store, limit int) error {
	if store == nil {
		return NewOperationError("history", "", ErrNotConfigured)
	}
	entries, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PUBLISHED\tSTATUS\tTITLE\tURL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.PublishedAt.Local().Format(time.DateTime), e.Status, e.Title, e.URL)
	}
	return tw.Flush()
}
