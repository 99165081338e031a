package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Rasalas/msg-reader/pkgs/config"
	"github.com/Rasalas/msg-reader/pkgs/metrics"
)

const version = "1.0.0"

// app holds global options parsed from the command line
type app struct {
	configPath  string
	sinks       []string
	verbose     bool
	metricsFile string

	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Recorder
	out     io.Writer
}

func main() {
	a := &app{out: os.Stdout}

	// Global flags
	flag.StringVar(&a.configPath, "config", "", "Config file (default: $"+config.EnvConfigPath+")")
	flag.StringArrayVar(&a.sinks, "sink", nil, "Output sink: dir, mbox, smtp, imap, s3 or ses (repeatable)")
	flag.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output")
	flag.StringVar(&a.metricsFile, "metrics-file", "", "Write run metrics to this file in Prometheus text format")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = printUsage
	flag.CommandLine.SetInterspersed(false)
	flag.Parse()

	if *showVersion {
		fmt.Printf("mockmail v%s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "init":
		// "init" doesn't need config loaded
		if err := a.handleInit(); err != nil {
			fatal("init: %v", err)
		}
		return
	case "help":
		printUsage()
		os.Exit(0)
	}

	if err := a.setup(); err != nil {
		fatal("%v", err)
	}
	defer a.log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd {
	case "samples":
		err = a.handleSamples(ctx, parseSamplesFlags(cmdArgs, a.cfg))
	case "bulk":
		err = a.handleBulk(ctx, parseBulkFlags(cmdArgs, a.cfg))
	case "special":
		err = a.handleSpecial(ctx, parseSpecialFlags(cmdArgs, a.cfg))
	case "verify":
		err = a.handleVerify(parseVerifyFlags(cmdArgs))
	default:
		fatal("unknown command '%s'", cmd)
	}
	if werr := a.writeMetrics(); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		a.log.Sync()
		fatal("%s: %v", cmd, err)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `mockmail v%s - Mock email fixture generator

Usage:
  mockmail [global options] <command> [command options]

Commands:
  samples    Generate the four fixed sample emails
  bulk       Generate <count> random emails
  special    Generate structural edge cases (inline images, forwards, replies)
  verify     Check generated .eml and .mbox files
  init       Write an example configuration file

Global Options:
  --config <path>        Config file (default: $%s)
  --sink <name>          Output sink, repeatable: dir, mbox, smtp, imap, s3, ses
  --metrics-file <path>  Write run metrics in Prometheus text format
  -v, --verbose          Verbose output
  --version              Show version information

Config Resolution:
  1) --config <path>
  2) Otherwise: the file named by %s.
  3) Otherwise: built-in defaults. MOCKMAIL_* environment variables
     override any of the above.

Samples Options:
  --output <dir>         Output directory (default: doc/eml)
  --seed <n>             Random seed for reproducible output

Bulk Options:
  --output <dir>         Output directory (default: doc/eml/bulk)
  --format <format>      eml, mbox or both (default: eml)
  --no-attachments       Do not add random attachments
  --seed <n>             Random seed for reproducible output

Special Options:
  --output <dir>         Output directory (default: doc/eml/special)
  --depth <n>            Length of the forwarded-message chain (default: 3)
  --seed <n>             Random seed for reproducible output

Examples:
  mockmail samples
  mockmail bulk 100
  mockmail bulk 500 --format both --no-attachments --seed 42
  mockmail special --depth 5
  mockmail --sink dir --sink smtp bulk 20
  mockmail verify doc/eml doc/eml/bulk doc/eml/special
  mockmail init
`, version, config.EnvConfigPath, config.EnvConfigPath)
}
