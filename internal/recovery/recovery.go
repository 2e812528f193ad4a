// Package recovery periodically copies the document being edited to a
// recovery file so that work survives a crash.
//
// Each document path maps to its own recovery file, named by a BLAKE3 hash
// of the absolute path. Unnamed documents share "untitled". A recovery file
// is removed once the document is saved or the user has answered the
// recovery prompt.
package recovery

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// DefaultInterval is the autosave period in seconds.
const DefaultInterval = 30

// ErrInvalidInterval is returned for a non-positive interval.
var ErrInvalidInterval = errors.New("autosave interval must be positive")

// PathFor returns the recovery file for docPath inside dir.
func PathFor(dir, docPath string) string {
	name := "untitled"
	if docPath != "" {
		if abs, err := filepath.Abs(docPath); err == nil {
			docPath = abs
		}
		sum := blake3.Sum256([]byte(docPath))
		name = hex.EncodeToString(sum[:8])
	}
	return filepath.Join(dir, name+".md")
}

// Load returns the recovered text for docPath, if any.
func Load(dir, docPath string) (string, bool, error) {
	data, err := os.ReadFile(PathFor(dir, docPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading recovery file: %w", err)
	}
	return string(data), true, nil
}

// Remove deletes the recovery file for docPath. A missing file is fine.
func Remove(dir, docPath string) error {
	err := os.Remove(PathFor(dir, docPath))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing recovery file: %w", err)
	}
	return nil
}
