package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/inkpost/internal/config/loader"
	"github.com/dshills/inkpost/internal/publish"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "INKPOST_"

// Config is the merged, validated configuration.
type Config struct {
	Editor  EditorConfig      `toml:"editor"`
	Grammar GrammarConfig     `toml:"grammar"`
	Publish PublishConfig     `toml:"publish"`
	Image   ImageConfig       `toml:"image"`
	AI      AIConfig          `toml:"ai"`
	Theme   map[string]string `toml:"theme"`
	Logging LoggingConfig     `toml:"logging"`
	Hooks   HooksConfig       `toml:"hooks"`
	History HistoryConfig     `toml:"history"`

	path string
	raw  map[string]any
}

type options struct {
	fs      loader.FileSystem
	environ []string
	useEnv  bool
}

// Option configures Load.
type Option func(*options)

// WithFS reads the config file through fsys.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *options) { o.fs = fsys }
}

// WithEnviron reads variables from environ instead of the process
// environment. A nil environ disables the environment layer.
func WithEnviron(environ []string) Option {
	return func(o *options) {
		o.environ = environ
		o.useEnv = environ != nil
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	c, err := build("", defaultConfig())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return c
}

// Load merges the defaults, the TOML file at path (which may be missing)
// and the environment. An empty path means DefaultPath().
func Load(path string, opts ...Option) (*Config, error) {
	o := options{fs: loader.OSFS{}, useEnv: true}
	for _, opt := range opts {
		opt(&o)
	}
	if path == "" {
		path = DefaultPath()
	}

	raw := defaultConfig()

	file, err := loader.NewTOMLLoaderWithFS(o.fs, path).Load()
	if err != nil {
		return nil, err
	}
	raw = loader.DeepMerge(raw, file)

	if o.useEnv {
		env := loader.NewEnvLoader(EnvPrefix)
		if o.environ != nil {
			env = loader.NewEnvLoaderWithEnviron(EnvPrefix, o.environ)
		}
		vars, err := env.Load()
		if err != nil {
			return nil, fmt.Errorf("reading environment: %w", err)
		}
		raw = loader.DeepMerge(raw, vars)
	}

	return build(path, raw)
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Set overrides one setting, typically from a command line flag, and
// re-validates. c is left unchanged on error.
func (c *Config) Set(path string, value any) error {
	raw := loader.DeepMerge(nil, c.raw)
	loader.SetPath(raw, path, value)
	next, err := build(c.path, raw)
	if err != nil {
		return err
	}
	*c = *next
	return nil
}

// Get returns the raw merged value at path.
func (c *Config) Get(path string) (any, bool) {
	return loader.GetPath(c.raw, path)
}

func build(path string, raw map[string]any) (*Config, error) {
	data, err := toml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding merged config: %w", err)
	}

	c := &Config{path: path, raw: raw}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			verr := &ValidationError{}
			for _, e := range strict.Errors {
				verr.add(strings.Join(e.Key(), "."), "%s", ErrUnknownKey)
			}
			return nil, verr
		}
		return nil, &ValidationError{Problems: []Problem{{Path: path, Message: err.Error()}}}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	verr := &ValidationError{}

	if c.Editor.DebounceMs <= 0 {
		verr.add("editor.debounceMs", "must be positive, got %d", c.Editor.DebounceMs)
	}
	if c.Editor.AutosaveSeconds <= 0 {
		verr.add("editor.autosaveSeconds", "must be positive, got %d", c.Editor.AutosaveSeconds)
	}
	if c.Editor.TabSize < 1 || c.Editor.TabSize > 16 {
		verr.add("editor.tabSize", "must be between 1 and 16, got %d", c.Editor.TabSize)
	}
	if c.Grammar.TimeoutSeconds <= 0 {
		verr.add("grammar.timeoutSeconds", "must be positive, got %d", c.Grammar.TimeoutSeconds)
	}
	if c.Grammar.Enabled && c.Grammar.Endpoint == "" {
		verr.add("grammar.endpoint", "required when grammar checking is enabled")
	}
	if _, err := publish.ParseStatus(c.Publish.DefaultStatus); err != nil {
		verr.add("publish.defaultStatus", "%v", err)
	}
	if _, err := publish.ParseLicense(c.Publish.DefaultLicense); err != nil {
		verr.add("publish.defaultLicense", "%v", err)
	}
	switch c.AI.Provider {
	case "", "openai", "anthropic", "gemini":
	default:
		verr.add("ai.provider", "unknown provider %q", c.AI.Provider)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		verr.add("logging.level", "unknown level %q", c.Logging.Level)
	}
	for name, hex := range c.Theme {
		if _, err := colorful.Hex(hex); err != nil {
			verr.add("theme."+name, "invalid color %q", hex)
		}
	}

	return verr.orNil()
}

// DefaultPath returns $XDG_CONFIG_HOME/inkpost/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "inkpost", "config.toml")
}

// StateDir returns the directory for logs, recovery files and history.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "inkpost")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "inkpost")
	}
	return filepath.Join(os.TempDir(), "inkpost")
}

func defaultConfig() map[string]any {
	state := StateDir()
	return map[string]any{
		"editor": map[string]any{
			"debounceMs":      500,
			"autosaveSeconds": 30,
			"tabSize":         4,
			"recoveryDir":     filepath.Join(state, "recovery"),
		},
		"grammar": map[string]any{
			"enabled":        true,
			"endpoint":       "https://api.languagetool.org",
			"language":       "en-US",
			"timeoutSeconds": 30,
			"username":       "",
			"apiKey":         "",
		},
		"publish": map[string]any{
			"endpoint":        "https://api.medium.com",
			"token":           "",
			"defaultStatus":   "draft",
			"defaultLicense":  "all-rights-reserved",
			"notifyFollowers": false,
		},
		"image": map[string]any{
			"endpoint": "https://api.imgur.com",
			"clientId": "",
		},
		"ai": map[string]any{
			"provider":     "",
			"model":        "",
			"openaiKey":    "",
			"anthropicKey": "",
			"geminiKey":    "",
		},
		"theme": map[string]any{},
		"logging": map[string]any{
			"level": "info",
			"file":  "",
		},
		"hooks": map[string]any{
			"script": "",
		},
		"history": map[string]any{
			"path": filepath.Join(state, "history.db"),
		},
	}
}
