package grammar

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/inkpost/internal/document"
	"github.com/dshills/inkpost/internal/loop"
)

// Suggestion is what the editor offers for the word under the pointer.
type Suggestion struct {
	Start        int
	End          int
	Word         string
	Message      string
	Replacements []string
}

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	delay time.Duration
}

// WithDelay sets the debounce quiet period.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.delay = d
		}
	}
}

// Pipeline wires a document to a checker. All methods except Close must be
// called on the main loop.
type Pipeline struct {
	doc       *document.Document
	debouncer *Debouncer
	worker    *Worker
	router    *Router

	matches   []Match
	listeners []func([]Match)

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPipeline creates a pipeline and subscribes it to doc's edits.
func NewPipeline(doc *document.Document, checker Checker, post loop.Poster, opts ...Option) *Pipeline {
	o := options{delay: DefaultDelay}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		doc:    doc,
		ctx:    ctx,
		cancel: cancel,
	}

	results := make(chan Result, 1)
	p.router = NewRouter(results, doc.Version, p.apply)
	p.worker = NewWorker(checker, results, post, func() { p.router.Poll() })
	p.debouncer = NewDebouncer(o.delay, post, p.fire)

	doc.OnChange(p.onChange)
	return p
}

// OnMatches registers fn to receive every applied match set.
func (p *Pipeline) OnMatches(fn func([]Match)) {
	p.listeners = append(p.listeners, fn)
}

// Request schedules a check after the quiet period, as an edit would.
func (p *Pipeline) Request() {
	p.debouncer.Call()
}

// CheckNow starts a check immediately, skipping the quiet period.
func (p *Pipeline) CheckNow() bool {
	p.debouncer.Cancel()
	return p.worker.Start(p.ctx, p.doc.Snapshot())
}

// SetDelay changes the quiet period.
func (p *Pipeline) SetDelay(d time.Duration) {
	p.debouncer.SetDelay(d)
}

// Matches returns the current match set.
func (p *Pipeline) Matches() []Match {
	return p.matches
}

// Busy reports whether a check is running.
func (p *Pipeline) Busy() bool {
	return p.worker.Busy()
}

// Pending reports whether a check is scheduled but not started.
func (p *Pipeline) Pending() bool {
	return p.debouncer.Pending()
}

// SuggestionsAt resolves the word under offset and returns the
// replacements of the first match that intersects it.
func (p *Pipeline) SuggestionsAt(offset int) (Suggestion, bool) {
	start, end, ok := p.doc.WordAt(offset)
	if !ok {
		return Suggestion{}, false
	}
	for _, m := range p.matches {
		if !m.Intersects(start, end) {
			continue
		}
		repl := m.Suggestions()
		if len(repl) == 0 {
			return Suggestion{}, false
		}
		word, _ := p.doc.Slice(start, end)
		return Suggestion{
			Start:        start,
			End:          end,
			Word:         word,
			Message:      m.Message,
			Replacements: repl,
		}, true
	}
	return Suggestion{}, false
}

// Apply replaces the suggestion's word with its i-th replacement. The edit
// schedules a new check through the usual change notification.
func (p *Pipeline) Apply(s Suggestion, i int) error {
	if i < 0 || i >= len(s.Replacements) {
		return fmt.Errorf("suggestion index %d out of range [0, %d)", i, len(s.Replacements))
	}
	return p.doc.Replace(s.Start, s.End, s.Replacements[i])
}

// Close cancels pending work. An in-flight check is not interrupted unless
// the checker honors context cancellation; its result is discarded.
func (p *Pipeline) Close() {
	p.debouncer.Cancel()
	p.cancel()
}

func (p *Pipeline) onChange(c document.Change) {
	p.matches = adjust(p.matches, c)
	p.debouncer.Call()
}

func (p *Pipeline) fire() {
	p.worker.Start(p.ctx, p.doc.Snapshot())
}

func (p *Pipeline) apply(matches []Match) {
	p.matches = matches
	for _, fn := range p.listeners {
		fn(matches)
	}
}
