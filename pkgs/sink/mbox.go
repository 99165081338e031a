package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/emersion/go-mbox"

	"github.com/Rasalas/msg-reader/pkgs/generate"
)

// Mbox appends every fixture to a single mbox archive.
type Mbox struct {
	file *os.File
	w    *mbox.Writer
}

// NewMbox creates (or truncates) the archive at path.
func NewMbox(path string) (*Mbox, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create mbox: %w", err)
	}
	return &Mbox{file: f, w: mbox.NewWriter(f)}, nil
}

func (m *Mbox) Put(_ context.Context, f generate.Fixture) error {
	from := "mockmail@localhost"
	var date time.Time
	if f.Message != nil {
		date = f.Message.Date
		if f.Message.From.Email != "" {
			from = f.Message.From.Email
		}
	}

	mw, err := m.w.CreateMessage(from, date)
	if err != nil {
		return fmt.Errorf("creating message: %w", err)
	}
	if _, err := mw.Write(f.Raw); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}

func (m *Mbox) Close() error {
	if err := m.w.Close(); err != nil {
		m.file.Close()
		return fmt.Errorf("closing mbox writer: %w", err)
	}
	return m.file.Close()
}

func (m *Mbox) Name() string { return "mbox" }
