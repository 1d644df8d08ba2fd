package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Schera-ole/qasandbox/internal/agent"
	"github.com/Schera-ole/qasandbox/internal/logger"
)

func main() {
	cmd := &cli.Command{
		Name:   "qasandbox-agent",
		Usage:  "Drive a running sandbox with random status and action requests",
		Flags:  agent.AgentFlags(),
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	agentConfig, err := agent.NewAgentConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	log := logger.New(nil, agentConfig.Debug)
	defer log.Sync()
	sugar := log.Sugar()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := agent.NewClient(
		&http.Client{Timeout: 10 * time.Second},
		agentConfig.Address,
		sugar,
		agent.DefaultRetryDelays,
	)

	sugar.Infow("starting agent",
		"address", agentConfig.Address,
		"interval", agentConfig.PollInterval,
		"rate_limit", agentConfig.RateLimit,
	)
	agent.New(client, agentConfig, sugar).Run(ctx)
	sugar.Info("Shutting down...")
	return nil
}
