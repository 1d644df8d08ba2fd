package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/Schera-ole/qasandbox/internal/app"
	"github.com/Schera-ole/qasandbox/internal/config"
	"github.com/Schera-ole/qasandbox/internal/logger"
)

func main() {
	cmd := &cli.Command{
		Name:   "qasandbox",
		Usage:  "Demo service generating metrics and log lines for monitoring exercises",
		Flags:  config.ServerFlags(),
		Action: serve,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.NewServerConfig(cmd)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(nil, cfg.Debug)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	log.Sugar().Infow("starting qa sandbox",
		"address", cfg.Address,
		"debug", cfg.Debug,
		"monitor_interval", cfg.MonitorInterval,
		"otlp_endpoint", cfg.OTLPEndpoint,
	)
	return application.Run(ctx)
}
