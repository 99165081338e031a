// Package assets produces the binary payloads attached to generated
// messages: PNG images, PDF documents, SVG company logos and data URIs.
//
// Every generator is best-effort. A generator that is disabled or fails
// returns ErrUnavailable (possibly wrapped) and the caller leaves the
// attachment out of the message.
package assets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// ErrUnavailable reports that an optional asset could not be produced.
var ErrUnavailable = errors.New("asset unavailable")

// DefaultLogoDir is where company logos are looked up when no directory is
// configured.
const DefaultLogoDir = "doc/res/logos"

// Options selects which optional generators are available.
type Options struct {
	LogoDir string
	PDF     bool
	PNG     bool
}

// DefaultOptions enables every generator and reads logos from DefaultLogoDir.
func DefaultOptions() Options {
	return Options{LogoDir: DefaultLogoDir, PDF: true, PNG: true}
}

// Factory creates assets according to its Options.
type Factory struct {
	opts Options
	log  *zap.Logger
}

// NewFactory creates a Factory. A nil logger discards log output.
func NewFactory(opts Options, log *zap.Logger) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.LogoDir == "" {
		opts.LogoDir = DefaultLogoDir
	}
	return &Factory{opts: opts, log: log}
}

// PNG returns a width×height PNG with a rectangle of the named colour.
func (f *Factory) PNG(width, height int, color string) ([]byte, error) {
	if !f.opts.PNG {
		return nil, fmt.Errorf("png: %w", ErrUnavailable)
	}
	data, err := RectanglePNG(width, height, color)
	if err != nil {
		return nil, fmt.Errorf("png: %w: %v", ErrUnavailable, err)
	}
	return data, nil
}

// PDF returns a one-page PDF carrying title and the generation date.
func (f *Factory) PDF(title string, generated time.Time) ([]byte, error) {
	if !f.opts.PDF {
		return nil, fmt.Errorf("pdf: %w", ErrUnavailable)
	}
	data, err := SimplePDF(title, generated)
	if err != nil {
		return nil, fmt.Errorf("pdf: %w: %v", ErrUnavailable, err)
	}
	return data, nil
}

// Logo reads the SVG logo file name from the logo directory. A missing or
// unreadable file is logged and reported as ErrUnavailable.
func (f *Factory) Logo(name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("logo: %w", ErrUnavailable)
	}
	path := filepath.Join(f.opts.LogoDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		f.log.Warn("error loading logo", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("logo %s: %w", name, ErrUnavailable)
	}
	return data, nil
}

// DataURI encodes data as a base64 data URI of the given media type.
func DataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
