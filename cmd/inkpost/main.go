// Command inkpost is a terminal Markdown editor with background grammar
// checking that publishes to Medium.
package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/dshills/inkpost/internal/app"
	"github.com/dshills/inkpost/internal/config"
	"github.com/dshills/inkpost/internal/document"
	"github.com/dshills/inkpost/internal/frontmatter"
	"github.com/dshills/inkpost/internal/publish"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are flags shared by every command.
type Globals struct {
	Config     string `short:"c" help:"Path to configuration file" type:"path"`
	LogLevel   string `name:"log-level" help:"Log level (debug, info, warn, error)" enum:",debug,info,warn,error" default:""`
	LogFile    string `name:"log-file" help:"Write the log to this file" type:"path"`
	DebounceMs int    `name:"debounce-ms" help:"Quiet period before a grammar check, in milliseconds"`
	Language   string `help:"Grammar check language (e.g. en-US)"`
	NoGrammar  bool   `name:"no-grammar" help:"Disable grammar checking"`
}

// overrides turns the flags that were given into configuration settings.
func (g *Globals) overrides() map[string]any {
	o := map[string]any{}
	if g.LogLevel != "" {
		o["logging.level"] = g.LogLevel
	}
	if g.LogFile != "" {
		o["logging.file"] = g.LogFile
	}
	if g.DebounceMs != 0 {
		o["editor.debounceMs"] = g.DebounceMs
	}
	if g.Language != "" {
		o["grammar.language"] = g.Language
	}
	if g.NoGrammar {
		o["grammar.enabled"] = false
	}
	return o
}

// setup loads the configuration and sends the log to stderr unless a
// file is configured.
func (g *Globals) setup() (*config.Config, *app.Services, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	o := g.overrides()
	for _, k := range slices.Sorted(maps.Keys(o)) {
		if err := cfg.Set(k, o[k]); err != nil {
			return nil, nil, fmt.Errorf("setting %s: %w", k, err)
		}
	}
	if err := app.ConfigureLogging(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, nil, err
	}
	services, err := app.NewServices(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return cfg, services, nil
}

// CLI defines the command-line interface.
var CLI struct {
	Globals

	Edit    EditCmd    `cmd:"" default:"withargs" help:"Edit a Markdown file (default)"`
	Check   CheckCmd   `cmd:"" help:"Check a file's grammar and print the issues"`
	Publish PublishCmd `cmd:"" help:"Publish a file to Medium"`
	Preview PreviewCmd `cmd:"" help:"Render a file to HTML"`
	History HistoryCmd `cmd:"" help:"List published posts"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// EditCmd opens the editor.
type EditCmd struct {
	File string `arg:"" optional:"" help:"File to edit; created on first save" type:"path"`
}

func (c *EditCmd) Run(g *Globals) error {
	application, err := app.New(app.Options{
		ConfigPath: g.Config,
		File:       c.File,
		Overrides:  g.overrides(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return application.Run(ctx)
}

// CheckCmd runs one grammar check.
type CheckCmd struct {
	File    string        `arg:"" help:"Markdown file" type:"existingfile"`
	Timeout time.Duration `help:"Give up after this long" default:"1m"`
	Stats   bool          `help:"Print check timing"`
}

func (c *CheckCmd) Run(g *Globals) error {
	_, services, err := g.setup()
	if err != nil {
		return err
	}
	defer services.Close()

	text, err := document.ReadFile(c.File)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	matches, err := app.Check(ctx, text, services.Checker)
	if err != nil {
		return err
	}
	if err := app.WriteMatches(os.Stdout, filepath.Base(c.File), text, matches); err != nil {
		return err
	}
	if c.Stats {
		s := services.Metrics.Snapshot()
		fmt.Fprintf(os.Stderr, "%d check(s), last took %s\n", s.Checks, s.LastCheck.Round(time.Millisecond))
	}
	if len(matches) > 0 {
		return fmt.Errorf("%d issue(s) found", len(matches))
	}
	return nil
}

// PublishCmd publishes without opening the editor. Flags override the
// file's front matter.
type PublishCmd struct {
	File         string        `arg:"" help:"Markdown file" type:"existingfile"`
	Title        string        `help:"Post title"`
	Tags         []string      `help:"Comma separated tags" sep:","`
	Status       string        `help:"Publish status" enum:",draft,public,unlisted" default:""`
	License      string        `help:"License"`
	CanonicalURL string        `name:"canonical-url" help:"Original location of the article"`
	Image        string        `help:"Featured image: a URL or a local file to upload"`
	Notify       string        `help:"Notify followers" enum:",yes,no" default:""`
	Timeout      time.Duration `help:"Give up after this long" default:"2m"`
}

func (c *PublishCmd) Run(g *Globals) error {
	_, services, err := g.setup()
	if err != nil {
		return err
	}
	defer services.Close()

	text, err := document.ReadFile(c.File)
	if err != nil {
		return err
	}
	source, err := filepath.Abs(c.File)
	if err != nil {
		return err
	}
	over := frontmatter.Meta{
		Title:        c.Title,
		Status:       c.Status,
		License:      c.License,
		CanonicalURL: c.CanonicalURL,
		Image:        c.Image,
	}
	if len(c.Tags) > 0 {
		over.Tags = publish.ParseTags(strings.Join(c.Tags, ","))
	}
	if c.Notify != "" {
		notify := c.Notify == "yes"
		over.Notify = &notify
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	res, err := services.Publisher.Publish(ctx, app.PublishRequest{Text: text, Source: source, Overrides: over})
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", res.Published.URL, res.Published.Status)
	return nil
}

// PreviewCmd renders HTML.
type PreviewCmd struct {
	File string `arg:"" help:"Markdown file" type:"existingfile"`
	Out  string `short:"o" help:"Output file (default: a file in the temp directory)" type:"path"`
}

func (c *PreviewCmd) Run(g *Globals) error {
	if _, _, err := g.setup(); err != nil {
		return err
	}
	text, err := document.ReadFile(c.File)
	if err != nil {
		return err
	}
	out := c.Out
	if out == "" {
		out = app.PreviewPath(os.TempDir(), c.File)
	}
	if err := app.Preview(text, c.File, out); err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// HistoryCmd lists the publish history.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of posts to show" default:"20"`
}

func (c *HistoryCmd) Run(g *Globals) error {
	_, services, err := g.setup()
	if err != nil {
		return err
	}
	defer services.Close()
	return app.WriteHistory(context.Background(), os.Stdout, services.History(), c.Limit)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("inkpost %s\n", version)
	fmt.Printf("Commit: %s\n", commit)
	fmt.Printf("Built: %s\n", date)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("inkpost"),
		kong.Description("Markdown editor with background grammar checking and Medium publishing"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&CLI.Globals)
	ctx.FatalIfErrorf(err)
}
