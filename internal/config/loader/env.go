package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader maps environment variables onto configuration paths.
//
// Mapped variables go to their configured path. Other variables carrying
// the prefix are converted by name: INKPOST_EDITOR_TAB_SIZE becomes
// editor.tabSize. Secret variables are always kept as strings.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	secrets map[string]string
	environ func() []string
}

// NewEnvLoader returns a loader using the default mappings.
// The prefix includes the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		secrets: defaultSecretMapping(prefix),
		environ: os.Environ,
	}
}

// NewEnvLoaderWithEnviron returns a loader that reads variables from
// environ instead of the process environment.
func NewEnvLoaderWithEnviron(prefix string, environ []string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.environ = func() []string { return environ }
	return l
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL":        "logging.level",
		prefix + "LOG_FILE":         "logging.file",
		prefix + "DEBOUNCE_MS":      "editor.debounceMs",
		prefix + "AUTOSAVE_SECONDS": "editor.autosaveSeconds",
		prefix + "GRAMMAR_ENDPOINT": "grammar.endpoint",
		prefix + "LANGUAGE":         "grammar.language",
		prefix + "AI_PROVIDER":      "ai.provider",
		prefix + "AI_MODEL":         "ai.model",
	}
}

func defaultSecretMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "MEDIUM_TOKEN":     "publish.token",
		prefix + "OPENAI_KEY":       "ai.openaiKey",
		prefix + "ANTHROPIC_KEY":    "ai.anthropicKey",
		prefix + "GEMINI_KEY":       "ai.geminiKey",
		prefix + "IMGUR_CLIENT_ID":  "image.clientId",
		prefix + "LANGUAGETOOL_KEY": "grammar.apiKey",
	}
}

// AddMapping maps envVar to a configuration path.
func (l *EnvLoader) AddMapping(envVar, path string) {
	l.mapping[envVar] = path
}

// Load collects the prefixed variables. Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		if path, ok := l.secrets[name]; ok {
			SetPath(config, path, value)
			continue
		}
		path, ok := l.mapping[name]
		if !ok {
			path = l.envToPath(name)
			if path == "" {
				continue
			}
		}
		SetPath(config, path, parseValue(value))
	}
	return config, nil
}

// envToPath converts PREFIX_EDITOR_TAB_SIZE to editor.tabSize.
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")
	if len(parts) < 2 || parts[0] == "" {
		return ""
	}
	setting := strings.ToLower(parts[1])
	for _, p := range parts[2:] {
		if p != "" {
			setting += strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
		}
	}
	return strings.ToLower(parts[0]) + "." + setting
}

// parseValue turns a variable into a bool, an integer or a float when it
// looks like one.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
