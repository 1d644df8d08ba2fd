package errors

import "errors"

var (
	// Registry errors
	ErrMetricNotFound        = errors.New("metric not found")
	ErrUnknownMetricType     = errors.New("unknown metric type")
	ErrMetricAlreadyDeclared = errors.New("metric already declared")

	// Request errors
	ErrInvalidCode = errors.New("invalid code")

	// Export errors
	ErrUnsupportedProtocol = errors.New("unsupported otlp protocol")
)
