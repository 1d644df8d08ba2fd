package config

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	internalerrors "github.com/Schera-ole/qasandbox/internal/errors"
)

const (
	OTLPProtocolHTTP = "http"
	OTLPProtocolGRPC = "grpc"
)

type ServerConfig struct {
	Address         string
	Debug           bool
	MonitorInterval time.Duration
	OTLPEndpoint    string
	OTLPProtocol    string
	OTLPInterval    time.Duration
	ServiceName     string
}

// ServerFlags returns the command line flags of the sandbox server. Every flag
// can also be set through the environment variable named next to it.
func ServerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "address",
			Aliases: []string{"a"},
			Value:   "0.0.0.0:5000",
			Usage:   "address to listen on",
			Sources: cli.EnvVars("ADDRESS"),
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "enable debug logging",
			Sources: cli.EnvVars("DEBUG"),
		},
		&cli.DurationFlag{
			Name:    "monitor-interval",
			Value:   0,
			Usage:   "interval of process resource log lines, 0 disables the monitor",
			Sources: cli.EnvVars("MONITOR_INTERVAL"),
		},
		&cli.StringFlag{
			Name:    "otlp-endpoint",
			Usage:   "host:port of an OTLP collector to push metrics to, empty disables the push",
			Sources: cli.EnvVars("OTLP_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:    "otlp-protocol",
			Value:   OTLPProtocolHTTP,
			Usage:   "OTLP transport, http or grpc",
			Sources: cli.EnvVars("OTLP_PROTOCOL"),
		},
		&cli.DurationFlag{
			Name:    "otlp-interval",
			Value:   15 * time.Second,
			Usage:   "OTLP push interval",
			Sources: cli.EnvVars("OTLP_INTERVAL"),
		},
		&cli.StringFlag{
			Name:    "service-name",
			Value:   "qa-sandbox",
			Usage:   "service.name resource attribute of pushed metrics",
			Sources: cli.EnvVars("SERVICE_NAME"),
		},
	}
}

// NewServerConfig reads the server configuration from a parsed command.
func NewServerConfig(cmd *cli.Command) (*ServerConfig, error) {
	config := &ServerConfig{
		Address:         cmd.String("address"),
		Debug:           cmd.Bool("debug"),
		MonitorInterval: cmd.Duration("monitor-interval"),
		OTLPEndpoint:    cmd.String("otlp-endpoint"),
		OTLPProtocol:    cmd.String("otlp-protocol"),
		OTLPInterval:    cmd.Duration("otlp-interval"),
		ServiceName:     cmd.String("service-name"),
	}

	switch config.OTLPProtocol {
	case OTLPProtocolHTTP, OTLPProtocolGRPC:
	default:
		return nil, fmt.Errorf("%w: %q", internalerrors.ErrUnsupportedProtocol, config.OTLPProtocol)
	}
	if config.MonitorInterval < 0 {
		return nil, fmt.Errorf("monitor interval must not be negative: %s", config.MonitorInterval)
	}
	if config.OTLPEndpoint != "" && config.OTLPInterval <= 0 {
		return nil, fmt.Errorf("otlp interval must be positive: %s", config.OTLPInterval)
	}

	return config, nil
}
