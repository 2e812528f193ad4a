package app

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"slices"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/inkpost/internal/config"
	"github.com/dshills/inkpost/internal/config/watcher"
	"github.com/dshills/inkpost/internal/document"
	"github.com/dshills/inkpost/internal/editor"
	"github.com/dshills/inkpost/internal/grammar"
	"github.com/dshills/inkpost/internal/highlight"
	"github.com/dshills/inkpost/internal/recovery"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		initOrder: make([]string, 0, 8),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"config", b.initConfig},
		{"logging", b.initLogging},
		{"services", b.initServices},
		{"screen", b.initScreen},
		{"document", b.initDocument},
		{"editor", b.initEditor},
		{"autosave", b.initAutosave},
		{"watcher", b.initWatcher},
	}
	for _, step := range steps {
		if err := step.init(); err != nil {
			b.cleanup()
			var ie *InitError
			if errors.As(err, &ie) {
				return err
			}
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	return nil
}

func (b *bootstrapper) initConfig() error {
	cfg, err := loadConfig(b.app.opts)
	if err != nil {
		return err
	}
	b.app.cfg = cfg
	return nil
}

// loadConfig reads the configuration and applies the overrides in a
// stable order.
func loadConfig(opts Options) (*config.Config, error) {
	var copts []config.Option
	if opts.Environ != nil {
		copts = append(copts, config.WithEnviron(opts.Environ))
	}
	cfg, err := config.Load(opts.ConfigPath, copts...)
	if err != nil {
		return nil, err
	}
	for _, key := range slices.Sorted(maps.Keys(opts.Overrides)) {
		if err := cfg.Set(key, opts.Overrides[key]); err != nil {
			return nil, fmt.Errorf("setting %s: %w", key, err)
		}
	}
	return cfg, nil
}

func (b *bootstrapper) initLogging() error {
	file := b.app.cfg.Logging.File
	if file == "" {
		file = DefaultLogFile(config.StateDir())
	}
	return ConfigureLogging(b.app.cfg.Logging.Level, file)
}

func (b *bootstrapper) initServices() error {
	s, err := NewServices(b.app.cfg, b.app.opts.HTTPClient)
	if err != nil {
		return err
	}
	b.app.services = s
	return nil
}

func (b *bootstrapper) initScreen() error {
	s := b.app.opts.Screen
	if s == nil {
		var err error
		if s, err = tcell.NewScreen(); err != nil {
			return err
		}
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnableMouse()
	s.EnablePaste()
	b.app.screen = s
	return nil
}

func (b *bootstrapper) initDocument() error {
	app := b.app
	app.doc = document.New("")
	if app.opts.File != "" {
		path, err := filepath.Abs(app.opts.File)
		if err != nil {
			return err
		}
		text, err := loadFile(path)
		if err != nil {
			return err
		}
		app.doc.SetText(text)
		app.doc.MarkSaved()
		app.path = path
	}
	if app.services.Checker != nil {
		app.pipe = grammar.NewPipeline(app.doc, app.services.Checker, app,
			grammar.WithDelay(app.cfg.Editor.DebounceDelay()))
	}
	return nil
}

func (b *bootstrapper) initEditor() error {
	app := b.app
	theme, err := highlight.DefaultTheme().WithColors(app.cfg.Theme)
	if err != nil {
		return err
	}
	app.editor = editor.New(app.screen, app.doc, app.pipe, theme)
	app.editor.SetTabSize(app.cfg.Editor.TabSize)
	app.editor.Status().Name = displayName(app.path)
	return nil
}

func (b *bootstrapper) initAutosave() error {
	app := b.app
	app.recoveryDir = app.cfg.Editor.RecoveryDir
	app.autosave = recovery.NewAutosaver(app.recoveryDir, app.doc.Snapshot, func(res recovery.Result) {
		app.Post(func() { app.autosaved(res) })
	})
	app.autosave.SetPath(app.path)
	return app.autosave.SetInterval(app.cfg.Editor.AutosaveInterval())
}

func (b *bootstrapper) initWatcher() error {
	app := b.app
	w, err := watcher.New(app.cfg.Path(), func(string) { app.reloadConfig() })
	if err != nil {
		// Reload is a convenience; a missing config directory disables it.
		log.Warning("config reload disabled", "path", app.cfg.Path(), "error", err.Error())
		return nil
	}
	app.watcher = w
	return nil
}

// cleanup releases what was initialized, in reverse order.
func (b *bootstrapper) cleanup() {
	for _, name := range slices.Backward(b.initOrder) {
		switch name {
		case "services":
			if err := b.app.services.Close(); err != nil {
				log.Warning("cleanup", "component", name, "error", err.Error())
			}
		case "screen":
			b.app.screen.Fini()
		case "document":
			if b.app.pipe != nil {
				b.app.pipe.Close()
			}
		case "watcher":
			if b.app.watcher != nil {
				b.app.watcher.Close()
			}
		}
	}
}

// loadFile reads path. A file that does not exist yet is empty.
func loadFile(path string) (string, error) {
	text, err := document.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", &FileError{Op: "open", Path: path, Err: err}
	}
	return text, nil
}

// displayName is the name shown for path in the status bar.
func displayName(path string) string {
	if path == "" {
		return "untitled"
	}
	return filepath.Base(path)
}
