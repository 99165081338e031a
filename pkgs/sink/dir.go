package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/Rasalas/msg-reader/pkgs/generate"
)

// Dir writes each fixture to <dir>/<name>.eml.
type Dir struct {
	dir string
}

// NewDir creates the directory if needed.
func NewDir(dir string) (*Dir, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Dir{dir: dir}, nil
}

// Path returns the file a fixture with the given name is written to.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.dir, sanitizeFilename(name)+".eml")
}

func (d *Dir) Put(_ context.Context, f generate.Fixture) error {
	if err := os.WriteFile(d.Path(f.Name), f.Raw, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (d *Dir) Close() error { return nil }
func (d *Dir) Name() string { return "dir" }

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._+\-=]`)

func sanitizeFilename(name string) string {
	// Keep: alphanumeric, hyphen, underscore, dot, plus, equals
	safe := unsafeFilenameChars.ReplaceAllString(name, "_")

	if len(safe) > 200 {
		safe = safe[:200]
	}
	return safe
}
