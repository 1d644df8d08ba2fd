// Package models defines the data structures used throughout the sandbox.
package models

import "strings"

const (
	Counter = "counter"
	Gauge   = "gauge"
)

// Descriptor declares a metric held by the registry.
type Descriptor struct {
	// Name is the exposition name of the metric
	Name string

	// Help is the description shown in the exposition
	Help string

	// Type is the type of the metric (either "counter" or "gauge")
	Type string

	// LabelKey is the single label dimension of a counter; empty for gauges
	LabelKey string
}

// Series is a point-in-time reading of one label series.
type Series struct {
	Name       string
	Type       string
	LabelKey   string
	LabelValue string
	Value      float64
}

// StressStatus is the response body of the stress toggle.
type StressStatus struct {
	Active bool `json:"active"`
}

// Level is the severity of an emitted sandbox log line.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// ParseLevel resolves a user supplied level. Matching is case-insensitive and
// exact otherwise, so anything unrecognized (padded values included) resolves
// to LevelInfo.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(s)) {
	case LevelWarning:
		return LevelWarning
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// Upper returns the level name in upper case, as echoed back to callers.
func (l Level) Upper() string {
	return strings.ToUpper(string(l))
}
