package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/inkpost/internal/recovery"
)

type harness struct {
	t      *testing.T
	app    *Application
	screen tcell.SimulationScreen
	dir    string
	cancel context.CancelFunc
	done   chan error
}

// start runs an application on a simulation screen with grammar checking
// off and all state under a temporary directory.
func start(t *testing.T, opts Options) *harness {
	t.Helper()
	dir := t.TempDir()
	screen := tcell.NewSimulationScreen("UTF-8")

	overrides := map[string]any{
		"grammar.enabled":    false,
		"logging.file":       filepath.Join(dir, "inkpost.log"),
		"editor.recoveryDir": filepath.Join(dir, "recovery"),
		"history.path":       filepath.Join(dir, "history.db"),
	}
	for k, v := range opts.Overrides {
		overrides[k] = v
	}
	opts.Overrides = overrides
	opts.Screen = screen
	opts.Environ = []string{}
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(dir, "config.toml")
	}

	app, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	screen.SetSize(80, 12)

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{t: t, app: app, screen: screen, dir: dir, cancel: cancel, done: make(chan error, 1)}
	go func() { h.done <- app.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(5 * time.Second):
			t.Error("Run did not return")
		}
	})
	return h
}

func (h *harness) typeText(text string) {
	for _, r := range text {
		h.screen.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}
}

func (h *harness) key(k tcell.Key) {
	h.screen.InjectKey(k, 0, tcell.ModNone)
}

// do runs fn on the main loop after everything injected so far.
func (h *harness) do(fn func()) {
	h.t.Helper()
	ran := make(chan struct{})
	h.app.Post(func() {
		fn()
		close(ran)
	})
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		h.t.Fatal("main loop did not run posted function")
	}
}

func (h *harness) waitFor(what string, cond func() bool) {
	h.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var ok bool
		h.do(func() { ok = cond() })
		if ok {
			return
		}
		if time.Now().After(deadline) {
			h.t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (h *harness) message() string {
	var msg string
	h.do(func() { msg = h.app.editor.Status().Message })
	return msg
}

func (h *harness) exited() error {
	h.t.Helper()
	select {
	case err := <-h.done:
		h.done <- err
		return err
	case <-time.After(5 * time.Second):
		h.t.Fatal("Run did not return")
		return nil
	}
}

func TestApplication_EditSaveQuit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post.md")
	h := start(t, Options{File: path})

	h.typeText("Hello world")
	// The file does not exist yet but the path is known, so Save writes
	// without asking.
	h.key(tcell.KeyCtrlS)
	h.waitFor("save", func() bool { return !h.app.doc.Modified() })

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Hello world" {
		t.Errorf("saved %q", data)
	}
	if msg := h.message(); msg != "Saved post.md" {
		t.Errorf("message = %q", msg)
	}

	h.key(tcell.KeyCtrlQ)
	if err := h.exited(); err != nil {
		t.Errorf("Run() = %v", err)
	}
	if _, err := os.Stat(recovery.PathFor(filepath.Join(h.dir, "recovery"), path)); !os.IsNotExist(err) {
		t.Errorf("recovery file left behind: %v", err)
	}
}

func TestApplication_QuitConfirmation(t *testing.T) {
	h := start(t, Options{})
	h.typeText("draft")
	h.key(tcell.KeyCtrlQ)
	h.waitFor("prompt", func() bool { return h.app.editor.Prompting() })

	h.typeText("n")
	h.waitFor("prompt closed", func() bool { return !h.app.editor.Prompting() })
	h.do(func() {
		if h.app.doc.Text() != "draft" {
			t.Errorf("text = %q", h.app.doc.Text())
		}
	})

	h.key(tcell.KeyCtrlQ)
	h.typeText("y")
	if err := h.exited(); err != nil {
		t.Errorf("Run() = %v", err)
	}
}

func TestApplication_OfferRecovery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post.md")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}
	stateDir := t.TempDir()
	recoveryDir := filepath.Join(stateDir, "recovery")
	rec := recovery.PathFor(recoveryDir, path)
	if err := os.MkdirAll(recoveryDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(rec, []byte("original plus edits"), 0o644); err != nil {
		t.Fatal(err)
	}

	h := start(t, Options{File: path, Overrides: map[string]any{"editor.recoveryDir": recoveryDir}})
	h.waitFor("recovery prompt", func() bool { return h.app.editor.Prompting() })
	h.typeText("y")
	h.waitFor("recovered", func() bool { return h.app.doc.Text() == "original plus edits" })

	h.do(func() {
		if !h.app.doc.Modified() {
			t.Error("recovered document should be unsaved")
		}
	})
	if _, err := os.Stat(rec); !os.IsNotExist(err) {
		t.Errorf("recovery file not removed: %v", err)
	}
}

func TestApplication_AutosaveInterval(t *testing.T) {
	h := start(t, Options{})

	h.key(tcell.KeyF5)
	h.key(tcell.KeyCtrlU)
	h.typeText("0")
	h.key(tcell.KeyEnter)
	h.waitFor("rejection", func() bool {
		return strings.HasPrefix(h.app.editor.Status().Message, "Invalid interval")
	})

	h.key(tcell.KeyF5)
	h.key(tcell.KeyCtrlU)
	h.typeText("5")
	h.key(tcell.KeyEnter)
	h.waitFor("interval", func() bool { return h.app.autosave.Interval() == 5*time.Second })
}

func TestApplication_AutosaveWritesRecovery(t *testing.T) {
	h := start(t, Options{})
	h.typeText("unsaved")
	h.do(func() {})
	if _, err := h.app.autosave.SaveNow(); err != nil {
		t.Fatal(err)
	}
	text, ok, err := recovery.Load(filepath.Join(h.dir, "recovery"), "")
	if err != nil || !ok || text != "unsaved" {
		t.Errorf("recovery = %q, %v, %v", text, ok, err)
	}
}

func TestApplication_Publish(t *testing.T) {
	var payload []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/me":
			io.WriteString(w, `{"data":{"id":"u1","username":"ana"}}`)
		case "/v1/users/u1/posts":
			payload, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"data":{"id":"p1","url":"https://medium.com/@ana/p1","publishStatus":"draft"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	h := start(t, Options{
		HTTPClient: srv.Client(),
		Overrides: map[string]any{
			"publish.endpoint": srv.URL,
			"publish.token":    "tok",
		},
	})
	h.do(func() { h.app.doc.SetText("---\ntitle: Front Title\ntags: [go]\n---\nBody text") })

	h.key(tcell.KeyCtrlP)
	h.key(tcell.KeyEnter) // title
	h.key(tcell.KeyEnter) // tags
	h.key(tcell.KeyEnter) // status
	h.waitFor("published", func() bool {
		return strings.HasPrefix(h.app.editor.Status().Message, "Published")
	})

	if !strings.Contains(string(payload), `"title":"Front Title"`) {
		t.Errorf("payload = %s", payload)
	}
	if strings.Contains(string(payload), "---") {
		t.Errorf("front matter was published: %s", payload)
	}
	entries, err := h.app.services.History().List(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].URL != "https://medium.com/@ana/p1" {
		t.Errorf("history = %+v", entries)
	}
}

func TestApplication_PublishClearedTags(t *testing.T) {
	var payload []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/me":
			io.WriteString(w, `{"data":{"id":"u1"}}`)
		case "/v1/users/u1/posts":
			payload, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"data":{"id":"p1","url":"https://medium.com/p1","publishStatus":"draft"}}`)
		}
	}))
	t.Cleanup(srv.Close)

	h := start(t, Options{
		HTTPClient: srv.Client(),
		Overrides:  map[string]any{"publish.endpoint": srv.URL, "publish.token": "tok"},
	})
	h.do(func() { h.app.doc.SetText("---\ntitle: T\ntags: [go, tui]\n---\nBody") })

	h.key(tcell.KeyCtrlP)
	h.key(tcell.KeyEnter) // title
	h.key(tcell.KeyCtrlU) // clear the pre-filled tags
	h.key(tcell.KeyEnter)
	h.key(tcell.KeyEnter) // status
	h.waitFor("published", func() bool {
		return strings.HasPrefix(h.app.editor.Status().Message, "Published")
	})
	if !strings.Contains(string(payload), `"tags":[]`) {
		t.Errorf("payload = %s", payload)
	}
}

func TestApplication_PublishFailureNotice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"errors":[{"message":"down"}]}`)
	}))
	t.Cleanup(srv.Close)

	h := start(t, Options{
		HTTPClient: srv.Client(),
		Overrides:  map[string]any{"publish.endpoint": srv.URL, "publish.token": "tok"},
	})
	h.do(func() { h.app.doc.SetText("---\ntitle: T\n---\nBody") })

	h.key(tcell.KeyCtrlP)
	h.key(tcell.KeyEnter)
	h.key(tcell.KeyEnter)
	h.key(tcell.KeyEnter)
	h.waitFor("failure notice", func() bool {
		return !h.app.publishing && h.app.editor.Prompting() &&
			strings.HasPrefix(h.app.editor.Status().Message, "Error:")
	})

	// Typing does not reach the document while the notice is open.
	h.typeText("x")
	h.key(tcell.KeyEnter)
	h.waitFor("notice dismissed", func() bool { return !h.app.editor.Prompting() })
	h.do(func() {
		if got := h.app.doc.Text(); got != "---\ntitle: T\n---\nBody" {
			t.Errorf("text = %q", got)
		}
	})
}

func TestApplication_PublishCancelled(t *testing.T) {
	h := start(t, Options{})
	h.do(func() { h.app.doc.SetText("Body") })
	h.key(tcell.KeyCtrlP)
	h.key(tcell.KeyEscape)
	h.waitFor("cancel", func() bool { return h.app.editor.Status().Message == "Publish cancelled" })
}

func TestApplication_ConfigReload(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[editor]\nautosaveSeconds = 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := start(t, Options{ConfigPath: cfgPath})
	if h.app.watcher == nil {
		t.Fatal("watcher not started")
	}

	if err := os.WriteFile(cfgPath, []byte("[editor]\nautosaveSeconds = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	h.waitFor("reload", func() bool { return h.app.autosave.Interval() == 7*time.Second })
	if msg := h.message(); msg != "Config reloaded" {
		t.Errorf("message = %q", msg)
	}
}

func TestApplication_NewAfterEdit(t *testing.T) {
	h := start(t, Options{})
	h.typeText("abc")
	h.key(tcell.KeyCtrlN)
	h.typeText("y")
	h.waitFor("new document", func() bool { return h.app.doc.Text() == "" && !h.app.doc.Modified() })
}

func TestApplication_CheckNowDisabled(t *testing.T) {
	h := start(t, Options{})
	h.key(tcell.KeyF7)
	h.waitFor("message", func() bool { return h.app.editor.Status().Message == "Grammar checking is disabled" })
}

func TestApplication_SaveAsUntitled(t *testing.T) {
	h := start(t, Options{})
	h.typeText("x")
	h.key(tcell.KeyCtrlS)
	path := filepath.Join(t.TempDir(), "new.md")
	h.typeText(path)
	h.key(tcell.KeyEnter)
	h.waitFor("save as", func() bool { return h.app.path == path })

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "x" {
		t.Errorf("file = %q, %v", data, err)
	}
	h.do(func() {
		if got := h.app.editor.Status().Name; got != "new.md" {
			t.Errorf("status name = %q", got)
		}
	})
}
