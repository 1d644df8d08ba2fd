package agent

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

type AgentConfig struct {
	Address      string
	PollInterval time.Duration
	RateLimit    int
	Debug        bool
}

// AgentFlags returns the command line flags of the load agent.
func AgentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "address",
			Aliases: []string{"a"},
			Value:   "localhost:5000",
			Usage:   "address of the sandbox to drive",
			Sources: cli.EnvVars("ADDRESS"),
		},
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"p"},
			Value:   300 * time.Millisecond,
			Usage:   "delay between two generated requests",
			Sources: cli.EnvVars("POLL_INTERVAL"),
		},
		&cli.IntFlag{
			Name:    "rate-limit",
			Aliases: []string{"l"},
			Value:   5,
			Usage:   "number of concurrent senders",
			Sources: cli.EnvVars("RATE_LIMIT"),
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "enable debug logging",
			Sources: cli.EnvVars("DEBUG"),
		},
	}
}

func NewAgentConfig(cmd *cli.Command) (*AgentConfig, error) {
	config := &AgentConfig{
		Address:      cmd.String("address"),
		PollInterval: cmd.Duration("interval"),
		RateLimit:    int(cmd.Int("rate-limit")),
		Debug:        cmd.Bool("debug"),
	}

	if config.PollInterval <= 0 {
		return nil, fmt.Errorf("interval must be positive: %s", config.PollInterval)
	}
	if config.RateLimit < 1 {
		return nil, fmt.Errorf("rate limit must be at least 1: %d", config.RateLimit)
	}
	return config, nil
}
