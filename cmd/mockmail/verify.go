package main

import (
	"fmt"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Rasalas/msg-reader/pkgs/verify"
)

func parseVerifyFlags(args []string) []string {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fatal("verify: %v", err)
	}
	if fs.NArg() == 0 {
		fatal("verify: at least one file or directory is required")
	}
	return fs.Args()
}

func (a *app) handleVerify(paths []string) error {
	summary, err := verify.Files(paths)
	if err != nil {
		return err
	}
	summary.Render(a.out)

	if !summary.OK() {
		a.log.Warn("verification failed",
			zap.Int("messages", len(summary.Reports)),
			zap.Int("failed", summary.Failed()),
			zap.Int("set_problems", len(summary.Problems)))
		return fmt.Errorf("%d of %d message(s) failed, %d set problem(s)",
			summary.Failed(), len(summary.Reports), len(summary.Problems))
	}
	return nil
}
