package recovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"github.com/zeebo/blake3"

	"github.com/dshills/inkpost/internal/document"
)

var log = commonlog.GetLogger("inkpost.recovery")

// Result reports one autosave attempt. It is passed to the OnSave
// callback from the autosaver's goroutine.
type Result struct {
	Path string
	At   time.Time
	Err  error
}

// Autosaver writes snapshots of a document on a fixed period. Snapshots
// are immutable so it never touches the editing goroutine.
type Autosaver struct {
	dir    string
	source func() document.Snapshot
	onSave func(Result)

	mu       sync.Mutex
	docPath  string
	interval time.Duration
	lastSum  [32]byte
	hasSum   bool
	last     time.Time

	reset  chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAutosaver returns an autosaver writing into dir. onSave may be nil.
func NewAutosaver(dir string, source func() document.Snapshot, onSave func(Result)) *Autosaver {
	return &Autosaver{
		dir:      dir,
		source:   source,
		onSave:   onSave,
		interval: DefaultInterval * time.Second,
		reset:    make(chan struct{}, 1),
	}
}

// SetPath changes the document path that names the recovery file.
func (a *Autosaver) SetPath(docPath string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.docPath = docPath
	a.hasSum = false
}

// Path returns the current recovery file.
func (a *Autosaver) Path() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return PathFor(a.dir, a.docPath)
}

// Interval returns the autosave period.
func (a *Autosaver) Interval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interval
}

// SetInterval changes the period and restarts the wait.
func (a *Autosaver) SetInterval(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidInterval
	}
	a.mu.Lock()
	a.interval = d
	a.mu.Unlock()
	select {
	case a.reset <- struct{}{}:
	default:
	}
	return nil
}

// LastSaved returns when the recovery file was last written.
func (a *Autosaver) LastSaved() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Start runs the autosave loop until ctx ends or Stop is called.
func (a *Autosaver) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})
	go a.run(ctx)
}

// Stop ends the loop and waits for it to exit.
func (a *Autosaver) Stop() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
	a.cancel = nil
}

func (a *Autosaver) run(ctx context.Context) {
	defer close(a.done)
	timer := time.NewTimer(a.Interval())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.reset:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-timer.C:
			res, wrote := a.save()
			if (wrote || res.Err != nil) && a.onSave != nil {
				a.onSave(res)
			}
		}
		timer.Reset(a.Interval())
	}
}

// SaveNow writes the current snapshot unless it matches the last write.
// It reports whether the file was written.
func (a *Autosaver) SaveNow() (bool, error) {
	res, wrote := a.save()
	return wrote, res.Err
}

func (a *Autosaver) save() (Result, bool) {
	snap := a.source()
	sum := blake3.Sum256([]byte(snap.Text))
	now := time.Now()

	a.mu.Lock()
	path := PathFor(a.dir, a.docPath)
	unchanged := a.hasSum && sum == a.lastSum
	a.mu.Unlock()

	res := Result{Path: path, At: now}
	if unchanged {
		return res, false
	}
	if err := write(path, snap.Text); err != nil {
		res.Err = fmt.Errorf("autosave: %w", err)
		log.Warning("autosave failed", "path", path, "error", err.Error())
		return res, false
	}

	a.mu.Lock()
	a.lastSum, a.hasSum, a.last = sum, true, now
	a.mu.Unlock()
	log.Debug("autosaved", "path", path, "version", uint64(snap.Version))
	return res, true
}

// Discard removes the current recovery file and forgets the last write.
func (a *Autosaver) Discard() error {
	a.mu.Lock()
	docPath := a.docPath
	a.hasSum = false
	a.mu.Unlock()
	return Remove(a.dir, docPath)
}

func write(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return document.WriteFile(path, text)
}
