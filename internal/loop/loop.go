// Package loop provides the handoff from background goroutines onto the
// goroutine that owns the editor state.
//
// Every mutation of a document, every render and every timer callback runs
// on a single goroutine (the "main loop"). Anything that completes
// elsewhere, such as a debounce timer or a grammar worker, posts a closure
// through a Poster instead of touching shared state directly.
package loop

import (
	"context"
	"errors"
)

// ErrClosed is returned by Queue.Run after Close has been called.
var ErrClosed = errors.New("loop closed")

// Poster schedules fn to run on the main loop.
// Post must not block and must be safe for concurrent use.
type Poster interface {
	Post(fn func())
}

// PosterFunc adapts a function to the Poster interface.
type PosterFunc func(fn func())

// Post calls f(fn).
func (f PosterFunc) Post(fn func()) {
	f(fn)
}

// Queue is a channel-backed main loop used by headless commands and tests.
type Queue struct {
	funcs  chan func()
	closed chan struct{}
}

// NewQueue creates a queue that buffers up to size pending closures.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 64
	}
	return &Queue{
		funcs:  make(chan func(), size),
		closed: make(chan struct{}),
	}
}

// Post enqueues fn without blocking. When the buffer is full fn is handed
// to a goroutine that waits for room; such closures may run out of order.
// If the queue is closed fn is dropped.
func (q *Queue) Post(fn func()) {
	select {
	case <-q.closed:
		return
	default:
	}
	select {
	case q.funcs <- fn:
	default:
		go q.wait(fn)
	}
}

func (q *Queue) wait(fn func()) {
	select {
	case q.funcs <- fn:
	case <-q.closed:
	}
}

// Run executes posted closures until ctx is done or Close is called.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.closed:
			return ErrClosed
		case fn := <-q.funcs:
			fn()
		}
	}
}

// RunPending executes the closures that are already queued and returns
// how many ran. It never blocks.
func (q *Queue) RunPending() int {
	n := 0
	for {
		select {
		case fn := <-q.funcs:
			fn()
			n++
		default:
			return n
		}
	}
}

// Close stops Run. Closing twice panics, like closing a channel.
func (q *Queue) Close() {
	close(q.closed)
}
