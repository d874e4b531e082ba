package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/exam-seating/internal/cli"
	"github.com/iliyamo/exam-seating/internal/config"
	"github.com/iliyamo/exam-seating/internal/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logCfg := config.LoadLogConfig()
	if os.Getenv("LOG_FORMAT") == "" {
		logCfg.Format = "console"
	}
	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return cli.New(logger).RootCommand().ExecuteContext(ctx)
}
