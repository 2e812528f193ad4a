package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey marks a problem caused by a key no section defines.
var ErrUnknownKey = errors.New("unknown key")

// Problem is one invalid setting.
type Problem struct {
	Path    string
	Message string
}

// ValidationError lists every invalid setting found in one pass.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = fmt.Sprintf("%s: %s", p.Path, p.Message)
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Paths returns the offending setting paths.
func (e *ValidationError) Paths() []string {
	paths := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		paths[i] = p.Path
	}
	return paths
}

func (e *ValidationError) add(path, format string, args ...any) {
	e.Problems = append(e.Problems, Problem{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
