// Package config provides configuration and fixed constants for the sandbox.
package config

import "time"

const (
	// GaugeType represents the type string for gauge metrics.
	GaugeType = "gauge"

	// CounterType represents the type string for counter metrics.
	CounterType = "counter"
)

// Metric names and label keys exposed to the monitoring stack.
const (
	HTTPCodesMetric   = "app_http_codes_total"
	UserActionsMetric = "business_user_actions_total"
	UptimeMetric      = "app_uptime_seconds"

	CodeLabel   = "code"
	ActionLabel = "action"
)

// Stress loop periods.
const (
	ActiveTickPeriod = 300 * time.Millisecond
	IdleTickPeriod   = time.Second
)

var (
	// StatusCodes are the status code series pre-registered at zero and the
	// set the stress generator picks from.
	StatusCodes = []string{"100", "101", "200", "201", "301", "304", "403", "404", "500", "503"}

	// UserActions are the business action series pre-registered at zero and
	// the set the stress generator picks from.
	UserActions = []string{"register", "login", "reset_pass", "delete_acc"}
)
