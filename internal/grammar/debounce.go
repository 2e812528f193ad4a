package grammar

import (
	"sync"
	"time"

	"github.com/dshills/inkpost/internal/loop"
)

// DefaultDelay is the quiet period before a check is started.
const DefaultDelay = 500 * time.Millisecond

// Debouncer groups rapid successive calls into a single callback that runs
// on the main loop after a quiet period.
//
// Call arms the debouncer; while it is armed further calls restart the
// quiet period but never schedule a second callback. The staleness check
// runs on the main loop, so once Cancel returns on the main loop the
// callback will not run for any earlier Call.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending bool
	seq     uint64 // sequence number to detect stale timers
	post    loop.Poster
	fire    func()
}

// NewDebouncer creates a debouncer that posts fire onto the main loop.
func NewDebouncer(delay time.Duration, post loop.Poster, fire func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		delay: delay,
		post:  post,
		fire:  fire,
	}
}

// Call (re)starts the quiet period.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.post.Post(func() { d.run(seq) })
	})
}

// run executes on the main loop.
func (d *Debouncer) run(seq uint64) {
	d.mu.Lock()
	if !d.pending || d.seq != seq {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.fire()
}

// Flush runs the callback now if a call is pending. It must be called on
// the main loop.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	d.fire()
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// Pending reports whether a callback is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// SetDelay changes the quiet period for subsequent calls.
func (d *Debouncer) SetDelay(delay time.Duration) {
	if delay <= 0 {
		return
	}
	d.mu.Lock()
	d.delay = delay
	d.mu.Unlock()
}
