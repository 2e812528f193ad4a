package app

import (
	"path/filepath"

	"github.com/dshills/inkpost/internal/config"
	"github.com/dshills/inkpost/internal/document"
	"github.com/dshills/inkpost/internal/highlight"
	"github.com/dshills/inkpost/internal/recovery"
)

// confirmDiscard runs then right away when the document is saved, and
// after the user agrees to drop the changes otherwise.
func (app *Application) confirmDiscard(question string, then func()) {
	if !app.doc.Modified() {
		then()
		return
	}
	app.editor.Confirm(question, func(yes bool) {
		if yes {
			then()
		}
	})
}

// setDocument replaces the buffer with text saved at path. The recovery
// file of the previous document is dropped: its changes were saved or
// discarded by the user.
func (app *Application) setDocument(text, path string) {
	if err := app.autosave.Discard(); err != nil {
		log.Warning("could not remove recovery file", "error", err.Error())
	}
	app.doc.SetText(text)
	app.doc.MarkSaved()
	app.setPath(path)
	app.title, app.tags = "", nil
}

func (app *Application) setPath(path string) {
	app.path = path
	app.autosave.SetPath(path)
	app.editor.Status().Name = displayName(path)
}

// OpenFile loads path into the editor, offering its recovery copy if
// there is one. Unsaved changes are not checked here.
func (app *Application) OpenFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &FileError{Op: "open", Path: path, Err: err}
	}
	text, err := loadFile(abs)
	if err != nil {
		return err
	}
	app.setDocument(text, abs)
	app.editor.Status().SetMessage("Opened %s", displayName(abs))
	app.offerRecovery(abs, text)
	return nil
}

// Save writes the document to its file.
func (app *Application) Save() error {
	if app.path == "" {
		return ErrNoFilePath
	}
	return app.SaveAs(app.path)
}

// SaveAs writes the document to path and makes path its file. The text is
// written exactly as it is in the buffer.
func (app *Application) SaveAs(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}
	if err := document.WriteFile(abs, app.doc.Text()); err != nil {
		return &FileError{Op: "save", Path: abs, Err: err}
	}
	app.doc.MarkSaved()
	if abs != app.path {
		if err := app.autosave.Discard(); err != nil {
			log.Warning("could not remove recovery file", "error", err.Error())
		}
		app.setPath(abs)
	}
	if err := app.autosave.Discard(); err != nil {
		log.Warning("could not remove recovery file", "error", err.Error())
	}
	app.editor.Status().SetMessage("Saved %s", displayName(abs))
	log.Info("saved", "path", abs)
	return nil
}

// offerRecovery asks whether to restore the autosaved copy of path when
// one exists and differs from text. The copy is removed once answered.
func (app *Application) offerRecovery(path, text string) {
	recovered, ok, err := recovery.Load(app.recoveryDir, path)
	if err != nil {
		log.Warning("reading recovery file", "error", err.Error())
		return
	}
	if !ok {
		return
	}
	if recovered == text {
		app.removeRecovery(path)
		return
	}
	app.editor.Confirm("Recover unsaved changes to "+displayName(path)+"?", func(yes bool) {
		if yes {
			app.doc.SetText(recovered)
			app.editor.Status().SetMessage("Recovered unsaved changes")
		}
		app.removeRecovery(path)
	})
}

func (app *Application) removeRecovery(path string) {
	if err := recovery.Remove(app.recoveryDir, path); err != nil {
		log.Warning("could not remove recovery file", "error", err.Error())
	}
}

// autosaved reports an autosave on the status bar.
func (app *Application) autosaved(res recovery.Result) {
	if res.Err != nil {
		app.editor.Status().SetMessage("Autosave failed: %v", res.Err)
		return
	}
	app.editor.Status().Autosaved(res.At)
}

// reloadConfig runs on the watcher goroutine. The file is parsed there;
// the result is applied on the main loop.
func (app *Application) reloadConfig() {
	cfg, err := loadConfig(app.opts)
	app.Post(func() {
		if err != nil {
			log.Warning("config not reloaded", "error", err.Error())
			app.editor.Status().SetMessage("Config not reloaded: %v", err)
			return
		}
		app.applyConfig(cfg)
	})
}

// applyConfig re-applies the settings that can change while editing:
// theme, tab size, debounce delay and autosave interval.
func (app *Application) applyConfig(cfg *config.Config) {
	theme, err := highlight.DefaultTheme().WithColors(cfg.Theme)
	if err != nil {
		app.editor.Status().SetMessage("Config not reloaded: %v", err)
		return
	}
	app.editor.SetTheme(theme)
	app.editor.SetTabSize(cfg.Editor.TabSize)
	if app.pipe != nil {
		app.pipe.SetDelay(cfg.Editor.DebounceDelay())
	}
	if err := app.autosave.SetInterval(cfg.Editor.AutosaveInterval()); err != nil {
		app.editor.Status().SetMessage("Config not reloaded: %v", err)
		return
	}
	app.cfg = cfg
	app.editor.Status().SetMessage("Config reloaded")
	log.Info("config reloaded", "path", cfg.Path())
}
