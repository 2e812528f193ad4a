package config

import "time"

// EditorConfig holds editing and background work timings.
type EditorConfig struct {
	// DebounceMs is the quiet period after the last edit before a
	// grammar check starts.
	DebounceMs int `toml:"debounceMs"`

	// AutosaveSeconds is the recovery autosave interval.
	AutosaveSeconds int `toml:"autosaveSeconds"`

	// TabSize is the display width of a tab.
	TabSize int `toml:"tabSize"`

	// RecoveryDir holds autosaved recovery copies.
	RecoveryDir string `toml:"recoveryDir"`
}

// DebounceDelay returns DebounceMs as a duration.
func (e EditorConfig) DebounceDelay() time.Duration {
	return time.Duration(e.DebounceMs) * time.Millisecond
}

// AutosaveInterval returns AutosaveSeconds as a duration.
func (e EditorConfig) AutosaveInterval() time.Duration {
	return time.Duration(e.AutosaveSeconds) * time.Second
}

// GrammarConfig configures the LanguageTool checker.
type GrammarConfig struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
	Username       string `toml:"username"`
	APIKey         string `toml:"apiKey"`
}

// Timeout returns TimeoutSeconds as a duration.
func (g GrammarConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// PublishConfig configures the Medium client and post defaults.
type PublishConfig struct {
	Endpoint        string `toml:"endpoint"`
	Token           string `toml:"token"`
	DefaultStatus   string `toml:"defaultStatus"`
	DefaultLicense  string `toml:"defaultLicense"`
	NotifyFollowers bool   `toml:"notifyFollowers"`
}

// ImageConfig configures the featured image host.
type ImageConfig struct {
	Endpoint string `toml:"endpoint"`
	ClientID string `toml:"clientId"`
}

// AIConfig selects the model used to suggest titles and tags.
type AIConfig struct {
	// Provider is "openai", "anthropic", "gemini" or empty to disable.
	Provider     string `toml:"provider"`
	Model        string `toml:"model"`
	OpenAIKey    string `toml:"openaiKey"`
	AnthropicKey string `toml:"anthropicKey"`
	GeminiKey    string `toml:"geminiKey"`
}

// APIKey returns the key for the selected provider.
func (a AIConfig) APIKey() string {
	switch a.Provider {
	case "openai":
		return a.OpenAIKey
	case "anthropic":
		return a.AnthropicKey
	case "gemini":
		return a.GeminiKey
	}
	return ""
}

// LoggingConfig controls the log output.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level"`

	// File receives the log. Empty means the default for the command.
	File string `toml:"file"`
}

// HooksConfig points at the user's Lua script.
type HooksConfig struct {
	Script string `toml:"script"`
}

// HistoryConfig locates the publish history database.
type HistoryConfig struct {
	Path string `toml:"path"`
}
