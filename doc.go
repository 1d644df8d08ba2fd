// Package qasandbox implements a demo service that generates metrics and log
// lines on demand for monitoring exercises.
//
// The server keeps two labeled counters and one gauge:
//   - app_http_codes_total: HTTP status codes requested through /status
//   - business_user_actions_total: business events posted to /action
//   - app_uptime_seconds: seconds since the process started
//
// Features:
//   - Control panel served at /
//   - Manual log lines at info, warning or error level
//   - Toggleable background stress test emitting random codes, actions and logs
//   - Prometheus text exposition at /metrics
//   - Optional push of every series to an OpenTelemetry collector over OTLP
//   - Optional periodic process resource log line
//   - Graceful shutdown handling
//
// The repository also includes a load agent that drives a running sandbox with
// random requests through a pool of workers.
//
// Both server and agent support configuration via command-line flags and
// environment variables.
package qasandbox
