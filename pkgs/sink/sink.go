// Package sink delivers generated fixtures: to files, an mbox archive, an
// SMTP or IMAP server, an S3 bucket or SES.
package sink

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Rasalas/msg-reader/pkgs/generate"
	"github.com/Rasalas/msg-reader/pkgs/metrics"
)

// Sink receives fixtures one at a time. Close flushes and releases any
// connection or file the sink holds.
type Sink interface {
	Put(ctx context.Context, f generate.Fixture) error
	Close() error
	Name() string
}

// Multi fans every fixture out to several sinks.
type Multi struct {
	sinks   []Sink
	log     *zap.Logger
	metrics *metrics.Recorder
}

// NewMulti creates a Multi over sinks. log and rec may be nil.
func NewMulti(log *zap.Logger, rec *metrics.Recorder, sinks ...Sink) *Multi {
	if log == nil {
		log = zap.NewNop()
	}
	return &Multi{sinks: sinks, log: log, metrics: rec}
}

// Put hands f to every sink in order and stops at the first failure.
func (m *Multi) Put(ctx context.Context, f generate.Fixture) error {
	for _, s := range m.sinks {
		err := s.Put(ctx, f)
		m.metrics.Delivered(s.Name(), err)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", s.Name(), f.Name, err)
		}
		m.log.Debug("delivered fixture", zap.String("sink", s.Name()), zap.String("name", f.Name))
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Name returns "multi".
func (m *Multi) Name() string {
	return "multi"
}

// Len returns the number of wrapped sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}
