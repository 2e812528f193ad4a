// Package config loads inkpost's settings.
//
// Settings are layered, lowest priority first: built-in defaults, the
// user's TOML file, INKPOST_* environment variables, and finally command
// line flags applied by the caller through Config.Set. The merged map is
// decoded into typed sections and validated; unknown keys are reported
// rather than ignored.
package config
