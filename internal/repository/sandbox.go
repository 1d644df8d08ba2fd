package repository

import "github.com/Schera-ole/qasandbox/internal/config"

// NewSandboxStorage creates a registry with the sandbox metrics declared and
// every known status code and business action pre-registered at zero.
func NewSandboxStorage() (*PromStorage, error) {
	storage := NewPromStorage()

	if err := storage.DeclareCounter(
		config.HTTPCodesMetric,
		"Count of HTTP codes",
		config.CodeLabel,
		config.StatusCodes...,
	); err != nil {
		return nil, err
	}
	if err := storage.DeclareCounter(
		config.UserActionsMetric,
		"User lifecycle events",
		config.ActionLabel,
		config.UserActions...,
	); err != nil {
		return nil, err
	}
	if err := storage.DeclareGauge(
		config.UptimeMetric,
		"Number of seconds the app has been running",
	); err != nil {
		return nil, err
	}

	return storage, nil
}
