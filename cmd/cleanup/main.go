// Package main runs the vault consistency cleanup.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	platformcmd "github.com/louisbranch/passkeep/internal/platform/cmd"
	"github.com/louisbranch/passkeep/internal/platform/config"
	"github.com/louisbranch/passkeep/internal/tools/cleanup"
)

func main() {
	cfg, err := cleanup.ParseConfig(flag.CommandLine, os.Args[1:], nil)
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceCleanup, func(ctx context.Context) error {
		return cleanup.Run(ctx, cfg, os.Stdout, os.Stderr)
	}); err != nil {
		if errors.Is(err, cleanup.ErrReported) {
			config.Exit(1)
		}
		config.Exitf("Error: %v", err)
	}
}
