package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"NewsDesk/internal/config"
	"NewsDesk/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging)

	root := newRootCmd(cfg, logger)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
