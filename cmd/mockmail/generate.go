package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Rasalas/msg-reader/pkgs/config"
	"github.com/Rasalas/msg-reader/pkgs/generate"
	"github.com/Rasalas/msg-reader/pkgs/sink"
)

type samplesFlags struct {
	output string
	seed   int64
}

func parseSamplesFlags(args []string, cfg *config.Config) samplesFlags {
	fs := flag.NewFlagSet("samples", flag.ExitOnError)
	var f samplesFlags
	fs.StringVar(&f.output, "output", cfg.Output.Samples, "Output directory")
	fs.Int64Var(&f.seed, "seed", 0, "Random seed for reproducible output")
	if err := fs.Parse(args); err != nil {
		fatal("samples: %v", err)
	}
	return f
}

func (a *app) handleSamples(ctx context.Context, f samplesFlags) error {
	fixtures, err := a.generator(generate.ScenarioSamples, f.seed).Samples()
	if err != nil {
		return err
	}
	return a.deliver(ctx, f.output, a.cfg.Output.Format, fixtures)
}

type bulkFlags struct {
	count         int
	output        string
	format        string
	noAttachments bool
	seed          int64
}

func parseBulkFlags(args []string, cfg *config.Config) bulkFlags {
	fs := flag.NewFlagSet("bulk", flag.ExitOnError)
	var f bulkFlags
	fs.StringVar(&f.output, "output", cfg.Output.Bulk, "Output directory")
	fs.StringVar(&f.format, "format", cfg.Output.Format, "Output format: eml, mbox or both")
	fs.BoolVar(&f.noAttachments, "no-attachments", false, "Do not add random attachments")
	fs.Int64Var(&f.seed, "seed", 0, "Random seed for reproducible output")
	if err := fs.Parse(args); err != nil {
		fatal("bulk: %v", err)
	}
	if fs.NArg() != 1 {
		fatal("bulk: expected exactly one <count> argument")
	}
	n, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		fatal("bulk: invalid count %q", fs.Arg(0))
	}
	f.count = n
	return f
}

// handleBulk generates and delivers one message at a time so that large
// counts never sit in memory.
func (a *app) handleBulk(ctx context.Context, f bulkFlags) error {
	if f.count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", f.count)
	}
	if err := checkFormat(f.format); err != nil {
		return err
	}

	g := a.generator(generate.ScenarioBulk, f.seed)
	s, err := sink.Open(ctx, a.cfg, f.output, f.format, a.log, a.metrics)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Generating %d mock email(s) in %s...\n", f.count, f.output)

	var size uint64
	for i := 1; i <= f.count; i++ {
		if err := ctx.Err(); err != nil {
			s.Close()
			return err
		}
		fx, err := g.BulkEmail(i, !f.noAttachments)
		if err != nil {
			s.Close()
			return err
		}
		if err := s.Put(ctx, fx); err != nil {
			s.Close()
			return err
		}
		size += uint64(len(fx.Raw))

		if i%10 == 0 || i == f.count {
			fmt.Fprintf(a.out, "  Generated %d/%d emails...\n", i, f.count)
		}
	}
	if err := s.Close(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Done! Generated %d email(s) in %s (%s)\n", f.count, f.output, humanize.Bytes(size))
	return nil
}

type specialFlags struct {
	output string
	depth  int
	seed   int64
}

func parseSpecialFlags(args []string, cfg *config.Config) specialFlags {
	fs := flag.NewFlagSet("special", flag.ExitOnError)
	var f specialFlags
	fs.StringVar(&f.output, "output", cfg.Output.Special, "Output directory")
	fs.IntVar(&f.depth, "depth", cfg.ForwardDepth, "Length of the forwarded-message chain")
	fs.Int64Var(&f.seed, "seed", 0, "Random seed for reproducible output")
	if err := fs.Parse(args); err != nil {
		fatal("special: %v", err)
	}
	return f
}

func (a *app) handleSpecial(ctx context.Context, f specialFlags) error {
	if f.depth < 1 {
		return fmt.Errorf("--depth must be at least 1, got %d", f.depth)
	}
	fixtures, err := a.generator(generate.ScenarioSpecial, f.seed).Special(f.depth)
	if err != nil {
		return err
	}
	return a.deliver(ctx, f.output, a.cfg.Output.Format, fixtures)
}

// deliver hands a generated set to the configured sinks.
func (a *app) deliver(ctx context.Context, output, format string, fixtures []generate.Fixture) error {
	s, err := sink.Open(ctx, a.cfg, output, format, a.log, a.metrics)
	if err != nil {
		return err
	}

	var size uint64
	for _, fx := range fixtures {
		if err := s.Put(ctx, fx); err != nil {
			s.Close()
			return err
		}
		size += uint64(len(fx.Raw))
		a.log.Info("delivered", zap.String("name", fx.Name), zap.String("message_id", fx.MessageID()))
	}
	if err := s.Close(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Done! Generated %d email(s) in %s (%s)\n", len(fixtures), output, humanize.Bytes(size))
	return nil
}
