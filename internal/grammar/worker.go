package grammar

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/tliron/commonlog"

	"github.com/dshills/inkpost/internal/document"
	"github.com/dshills/inkpost/internal/loop"
)

var log = commonlog.GetLogger("inkpost.grammar")

// Worker runs at most one check at a time, each on a fresh goroutine.
type Worker struct {
	checker Checker
	results chan Result
	post    loop.Poster
	done    func()

	busy    atomic.Bool
	started atomic.Int64
}

// NewWorker creates a worker that hands results to results and then posts
// done onto the main loop so the consumer can pick them up.
func NewWorker(checker Checker, results chan Result, post loop.Poster, done func()) *Worker {
	return &Worker{
		checker: checker,
		results: results,
		post:    post,
		done:    done,
	}
}

// Start launches a check of snap. It returns false without doing anything
// if a check is already in flight.
func (w *Worker) Start(ctx context.Context, snap document.Snapshot) bool {
	if !w.busy.CompareAndSwap(false, true) {
		log.Debug("check dropped, worker busy", "version", uint64(snap.Version))
		return false
	}
	w.started.Add(1)

	go func() {
		res := Result{Version: snap.Version}
		res.Matches, res.Err = w.check(ctx, snap.Text)
		w.handoff(res)
		w.busy.Store(false)
		if w.done != nil {
			w.post.Post(w.done)
		}
	}()
	return true
}

// Busy reports whether a check is in flight.
func (w *Worker) Busy() bool {
	return w.busy.Load()
}

// Started returns how many checks have been launched.
func (w *Worker) Started() int64 {
	return w.started.Load()
}

func (w *Worker) check(ctx context.Context, text string) (matches []Match, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("checker panic: %v\n%s", r, debug.Stack())
		}
	}()
	return w.checker.Check(ctx, text)
}

// handoff places res in the single result slot. A result still sitting in
// the slot is older than res, so it is replaced.
func (w *Worker) handoff(res Result) {
	for {
		select {
		case w.results <- res:
			return
		default:
		}
		select {
		case old := <-w.results:
			log.Debug("replaced unconsumed result", "version", uint64(old.Version))
		default:
		}
	}
}
