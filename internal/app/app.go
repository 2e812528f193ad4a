package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/inkpost/internal/config"
	"github.com/dshills/inkpost/internal/config/watcher"
	"github.com/dshills/inkpost/internal/document"
	"github.com/dshills/inkpost/internal/editor"
	"github.com/dshills/inkpost/internal/grammar"
	"github.com/dshills/inkpost/internal/recovery"
)

// shutdownTimeout bounds how long Run waits for background tasks.
const shutdownTimeout = 5 * time.Second

// Application is the interactive editor: one document, its grammar
// pipeline, the terminal and the background services.
//
// Everything except Post runs on the goroutine that called Run.
type Application struct {
	opts     Options
	cfg      *config.Config
	services *Services

	screen   tcell.Screen
	doc      *document.Document
	path     string
	pipe     *grammar.Pipeline
	editor   *editor.Editor
	autosave *recovery.Autosaver
	watcher  *watcher.Watcher

	recoveryDir string

	// Results of the last assistant requests, offered when publishing.
	title string
	tags  []string

	ctx     context.Context
	cancel  context.CancelFunc
	tasks   sync.WaitGroup
	running atomic.Bool

	publishing bool
	assisting  bool
	quit       bool
	discard    bool
}

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file; empty selects the default.
	ConfigPath string

	// File is opened at startup. It need not exist yet.
	File string

	// Overrides are applied on top of the loaded configuration, keyed by
	// dotted path (e.g. "editor.debounceMs"). They survive reloads.
	Overrides map[string]any

	// Screen replaces the terminal. Tests pass a simulation screen.
	Screen tcell.Screen

	// HTTPClient is used by all network clients.
	HTTPClient *http.Client

	// Environ replaces the process environment for configuration.
	Environ []string
}

// New creates an Application. The terminal is initialized but nothing is
// drawn until Run.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	app.ctx, app.cancel = context.WithCancel(context.Background())
	if err := newBootstrapper(app).bootstrap(); err != nil {
		app.cancel()
		return nil, err
	}
	return app, nil
}

// Post runs fn on the main loop. It is safe for concurrent use and never
// blocks.
func (app *Application) Post(fn func()) {
	ev := tcell.NewEventInterrupt(fn)
	if err := app.screen.PostEvent(ev); err != nil {
		go app.retryPost(ev)
	}
}

// retryPost waits for room in a full event queue.
func (app *Application) retryPost(ev tcell.Event) {
	t := time.NewTicker(10 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-app.ctx.Done():
			return
		case <-t.C:
			if app.screen.PostEvent(ev) == nil {
				return
			}
		}
	}
}

// Run draws the editor and processes events until the user quits or ctx
// is cancelled. It always finalizes the terminal.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.shutdown()

	app.autosave.Start(app.ctx)
	go app.tick()
	go func() {
		select {
		case <-ctx.Done():
			app.Post(func() { app.quit = true })
		case <-app.ctx.Done():
		}
	}()

	app.offerRecovery(app.path, app.doc.Text())
	if app.pipe != nil && app.doc.Len() > 0 {
		app.pipe.Request()
	}
	return app.eventLoop()
}

// tick redraws once a second so the status bar stays current.
func (app *Application) tick() {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-app.ctx.Done():
			return
		case <-t.C:
			app.Post(func() {})
		}
	}
}

func (app *Application) eventLoop() error {
	for {
		app.editor.Draw()
		ev := app.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := app.handleEvent(ev); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
	}
}

// handleEvent runs posted closures and hands terminal input to the
// editor. It returns ErrQuit once the application should stop.
func (app *Application) handleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventInterrupt:
		if fn, ok := ev.Data().(func()); ok {
			fn()
		}
	default:
		if err := app.Execute(app.editor.HandleEvent(ev)); err != nil {
			return err
		}
	}
	if app.quit {
		return ErrQuit
	}
	return nil
}

// shutdown stops background work in reverse start order and restores the
// terminal.
func (app *Application) shutdown() {
	app.running.Store(false)
	app.autosave.Stop()
	if app.discard {
		if err := app.autosave.Discard(); err != nil {
			log.Warning("could not remove recovery file", "error", err.Error())
		}
	}
	if app.watcher != nil {
		app.watcher.Close()
	}
	if app.pipe != nil {
		app.pipe.Close()
	}
	app.cancel()

	done := make(chan struct{})
	go func() {
		app.tasks.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		log.Warning("background tasks still running at exit")
	}

	if err := app.services.Close(); err != nil {
		log.Warning("closing services", "error", err.Error())
	}
	s := app.services.Metrics.Snapshot()
	log.Info("session ended", "checks", s.Checks, "checkErrors", s.CheckErrors,
		"avgCheck", s.AvgCheck.String(), "published", s.Published)
	app.screen.Fini()
}

// background runs fn on its own goroutine. fn must report back through
// Post.
func (app *Application) background(fn func(ctx context.Context)) {
	app.tasks.Add(1)
	go func() {
		defer app.tasks.Done()
		fn(app.ctx)
	}()
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Document returns the edited document.
func (app *Application) Document() *document.Document {
	return app.doc
}

// Editor returns the editor widget.
func (app *Application) Editor() *editor.Editor {
	return app.editor
}

// Path returns the file the document is saved to, or "".
func (app *Application) Path() string {
	return app.path
}

// Services returns the shared backends.
func (app *Application) Services() *Services {
	return app.services
}
