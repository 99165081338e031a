package sink

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Rasalas/msg-reader/pkgs/config"
	"github.com/Rasalas/msg-reader/pkgs/metrics"
)

// Open builds the sinks named in cfg.Sinks for a run writing to outDir.
// The dir sink honours format: eml writes one file per fixture, mbox
// writes a single archive named cfg.Output.Mbox, both does the two.
func Open(ctx context.Context, cfg *config.Config, outDir, format string, log *zap.Logger, rec *metrics.Recorder) (*Multi, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var sinks []Sink
	fail := func(err error) (*Multi, error) {
		NewMulti(nil, nil, sinks...).Close()
		return nil, err
	}

	wantMbox := cfg.HasSink(config.SinkMbox)
	for _, name := range cfg.Sinks {
		switch name {
		case config.SinkDir:
			if format == config.FormatMbox || format == config.FormatBoth {
				wantMbox = true
			}
			if format == config.FormatMbox {
				continue
			}
			d, err := NewDir(outDir)
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, d)
		case config.SinkMbox:
			// Opened once below.
		case config.SinkSMTP:
			sinks = append(sinks, NewSMTP(cfg.SMTP, nil))
		case config.SinkIMAP:
			sinks = append(sinks, NewIMAP(cfg.IMAP))
		case config.SinkS3:
			s, err := NewS3(ctx, cfg.S3)
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, s)
		case config.SinkSES:
			s, err := NewSES(ctx, cfg.SES)
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, s)
		default:
			return fail(fmt.Errorf("unknown sink: %s", name))
		}
	}

	if wantMbox {
		m, err := NewMbox(filepath.Join(outDir, cfg.Output.Mbox))
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, m)
	}

	if len(sinks) == 0 {
		return nil, fmt.Errorf("no sinks configured")
	}
	for _, s := range sinks {
		log.Debug("opened sink", zap.String("sink", s.Name()), zap.String("output", outDir))
	}
	return NewMulti(log, rec, sinks...), nil
}
