package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/inkpost/internal/assist"
	"github.com/dshills/inkpost/internal/editor"
	"github.com/dshills/inkpost/internal/frontmatter"
	"github.com/dshills/inkpost/internal/publish"
)

// commandInfo describes a command for the help menu.
type commandInfo struct {
	cmd   editor.Command
	label string
}

var helpMenu = []commandInfo{
	{editor.CmdSave, "Save (Ctrl+S)"},
	{editor.CmdSaveAs, "Save as (F2)"},
	{editor.CmdOpen, "Open (Ctrl+O)"},
	{editor.CmdNew, "New (Ctrl+N)"},
	{editor.CmdPublish, "Publish (Ctrl+P)"},
	{editor.CmdPreview, "Preview (Ctrl+R)"},
	{editor.CmdGenerateTitle, "Generate title (Ctrl+T)"},
	{editor.CmdSuggestTags, "Suggest tags (Ctrl+G)"},
	{editor.CmdCheckNow, "Check grammar now (F7)"},
	{editor.CmdAutosaveInterval, "Autosave interval (F5)"},
	{editor.CmdQuit, "Quit (Ctrl+Q)"},
}

type handlerFunc func(app *Application) error

func commandHandlers() map[editor.Command]handlerFunc {
	return map[editor.Command]handlerFunc{
		editor.CmdNew:              (*Application).cmdNew,
		editor.CmdOpen:             (*Application).cmdOpen,
		editor.CmdSave:             (*Application).cmdSave,
		editor.CmdSaveAs:           (*Application).cmdSaveAs,
		editor.CmdQuit:             (*Application).cmdQuit,
		editor.CmdPublish:          (*Application).cmdPublish,
		editor.CmdPreview:          (*Application).cmdPreview,
		editor.CmdGenerateTitle:    (*Application).cmdGenerateTitle,
		editor.CmdSuggestTags:      (*Application).cmdSuggestTags,
		editor.CmdCheckNow:         (*Application).cmdCheckNow,
		editor.CmdAutosaveInterval: (*Application).cmdAutosaveInterval,
		editor.CmdHelp:             (*Application).cmdHelp,
	}
}

// Execute runs cmd on the main loop. Failures are shown on the status bar;
// only ErrQuit is returned.
func (app *Application) Execute(cmd editor.Command) error {
	h, ok := commandHandlers()[cmd]
	if !ok {
		return nil
	}
	log.Debug("command", "name", cmd.String())
	if err := h(app); err != nil {
		if errors.Is(err, ErrQuit) {
			return err
		}
		app.report(err)
	}
	return nil
}

func (app *Application) report(err error) {
	log.Warning("command failed", "error", err.Error())
	app.editor.Status().SetMessage("Error: %v", err)
}

// alert reports a failed network call with a notice the user must dismiss.
func (app *Application) alert(err error) {
	log.Warning("request failed", "error", err.Error())
	app.editor.Status().SetMessage("Error: %v", err)
	app.editor.Notify("Error: " + err.Error())
}

func (app *Application) cmdNew() error {
	app.confirmDiscard("Discard unsaved changes?", func() {
		app.setDocument("", "")
		app.editor.Status().SetMessage("New document")
	})
	return nil
}

func (app *Application) cmdOpen() error {
	dir := ""
	if app.path != "" {
		dir = filepath.Dir(app.path) + string(filepath.Separator)
	}
	app.confirmDiscard("Discard unsaved changes?", func() {
		app.editor.Ask("Open file: ", dir, func(path string, ok bool) {
			if !ok || strings.TrimSpace(path) == "" {
				return
			}
			if err := app.OpenFile(strings.TrimSpace(path)); err != nil {
				app.report(err)
			}
		})
	})
	return nil
}

func (app *Application) cmdSave() error {
	if app.path == "" {
		return app.cmdSaveAs()
	}
	return app.Save()
}

func (app *Application) cmdSaveAs() error {
	app.editor.Ask("Save as: ", app.path, func(path string, ok bool) {
		if !ok || strings.TrimSpace(path) == "" {
			return
		}
		if err := app.SaveAs(strings.TrimSpace(path)); err != nil {
			app.report(err)
		}
	})
	return nil
}

func (app *Application) cmdQuit() error {
	if !app.doc.Modified() {
		app.discard = true
		return ErrQuit
	}
	app.editor.Confirm("Discard unsaved changes and quit?", func(yes bool) {
		if yes {
			app.discard = true
			app.quit = true
		}
	})
	return nil
}

// cmdPublish asks for the title, tags and status, pre-filled from the
// front matter and the assistant, then publishes in the background.
func (app *Application) cmdPublish() error {
	if app.publishing {
		return NewOperationError("publish", "", ErrBusy)
	}
	meta, _, err := frontmatter.Split(app.doc.Text())
	if err != nil {
		return NewOperationError("publish", displayName(app.path), err)
	}

	title := firstNonEmpty(meta.Title, app.title)
	tags := meta.Tags
	if len(tags) == 0 {
		tags = app.tags
	}
	status := firstNonEmpty(meta.Status, app.cfg.Publish.DefaultStatus)

	ask := app.editor.Ask
	ask("Title: ", title, func(title string, ok bool) {
		if !ok {
			app.editor.Status().SetMessage("Publish cancelled")
			return
		}
		ask("Tags (comma separated): ", strings.Join(tags, ", "), func(tags string, ok bool) {
			if !ok {
				app.editor.Status().SetMessage("Publish cancelled")
				return
			}
			ask("Status (draft, public, unlisted): ", status, func(status string, ok bool) {
				if !ok {
					app.editor.Status().SetMessage("Publish cancelled")
					return
				}
				app.startPublish(PublishRequest{
					Text:   app.doc.Text(),
					Source: app.path,
					Overrides: frontmatter.Meta{
						Title:  strings.TrimSpace(title),
						Tags:   publish.ParseTags(tags),
						Status: strings.TrimSpace(status),
					},
				})
			})
		})
	})
	return nil
}

func (app *Application) startPublish(req PublishRequest) {
	if _, _, err := app.services.Publisher.Prepare(req); err != nil {
		app.report(err)
		return
	}
	app.publishing = true
	app.editor.Status().SetMessage("Publishing...")
	pub := app.services.Publisher
	app.background(func(ctx context.Context) {
		res, err := pub.Publish(ctx, req)
		app.Post(func() {
			app.publishing = false
			if err != nil {
				app.alert(err)
				return
			}
			app.editor.Status().SetMessage("Published (%s): %s", res.Published.Status, res.Published.URL)
		})
	})
}

func (app *Application) cmdPreview() error {
	out := PreviewPath(os.TempDir(), app.path)
	if err := Preview(app.doc.Text(), app.path, out); err != nil {
		return err
	}
	app.editor.Status().SetMessage("Preview written to %s", out)
	return nil
}

func (app *Application) cmdGenerateTitle() error {
	return app.runAssistant("Generating title...", func(ctx context.Context, a *assist.Assistant, body string) (func(), error) {
		title, err := a.GenerateTitle(ctx, body)
		if err != nil {
			return nil, err
		}
		return func() {
			app.title = title
			app.editor.Status().SetMessage("Title: %s", title)
		}, nil
	})
}

func (app *Application) cmdSuggestTags() error {
	return app.runAssistant("Suggesting tags...", func(ctx context.Context, a *assist.Assistant, body string) (func(), error) {
		tags, err := a.SuggestTags(ctx, body)
		if err != nil {
			return nil, err
		}
		return func() {
			app.tags = tags
			app.editor.Status().SetMessage("Tags: %s", strings.Join(tags, ", "))
		}, nil
	})
}

// runAssistant sends the document body to the language model in the
// background. job returns the closure that applies its answer on the main
// loop.
func (app *Application) runAssistant(label string, job func(context.Context, *assist.Assistant, string) (func(), error)) error {
	if app.assisting {
		return NewOperationError("assistant", "", ErrBusy)
	}
	_, body, err := frontmatter.Split(app.doc.Text())
	if err != nil {
		return err
	}
	if strings.TrimSpace(body) == "" {
		return assist.ErrNoContent
	}

	app.assisting = true
	app.editor.Status().SetMessage("%s", label)
	services := app.services
	app.background(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		apply, err := func() (func(), error) {
			a, release, err := services.Assistant(ctx)
			if err != nil {
				return nil, err
			}
			defer release()
			return job(ctx, a, body)
		}()
		app.Post(func() {
			app.assisting = false
			if err != nil {
				app.alert(err)
				return
			}
			apply()
		})
	})
	return nil
}

func (app *Application) cmdCheckNow() error {
	if app.pipe == nil {
		app.editor.Status().SetMessage("Grammar checking is disabled")
		return nil
	}
	if !app.pipe.CheckNow() {
		app.editor.Status().SetMessage("A grammar check is already running")
		return nil
	}
	app.editor.Status().SetMessage("Checking grammar...")
	return nil
}

func (app *Application) cmdAutosaveInterval() error {
	current := strconv.Itoa(int(app.autosave.Interval() / time.Second))
	app.editor.Ask("Autosave interval (seconds): ", current, func(text string, ok bool) {
		if !ok {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			app.editor.Status().SetMessage("Invalid interval: %q is not a number", text)
			return
		}
		if err := app.autosave.SetInterval(time.Duration(n) * time.Second); err != nil {
			app.editor.Status().SetMessage("Invalid interval: %v", err)
			return
		}
		app.editor.Status().SetMessage("Autosave every %d seconds", n)
	})
	return nil
}

func (app *Application) cmdHelp() error {
	labels := make([]string, len(helpMenu))
	for i, c := range helpMenu {
		labels[i] = c.label
	}
	app.editor.Choose("Commands", labels, func(i int) {
		if i < 0 {
			return
		}
		if err := app.Execute(helpMenu[i].cmd); errors.Is(err, ErrQuit) {
			app.quit = true
		}
	})
	return nil
}
