// Package repository holds the sandbox metric registry.
package repository

import (
	"io"

	models "github.com/Schera-ole/qasandbox/internal/model"
)

// Repository is the metric registry used by the service layer, the stress
// generator and the exporters.
type Repository interface {
	// DeclareCounter registers a counter with one label dimension. Every
	// preset label value is exposed at zero before any traffic.
	DeclareCounter(name, help, labelKey string, preset ...string) error

	// DeclareGauge registers an unlabeled gauge.
	DeclareGauge(name, help string) error

	// Increment adds one to the series of a declared counter, creating the
	// series on first use.
	Increment(name, labelValue string)

	// SetGauge overwrites the value of a declared gauge.
	SetGauge(name string, value float64)

	CounterValue(name, labelValue string) (int64, error)
	CounterTotal(name string) (int64, error)
	GaugeValue(name string) (float64, error)

	// Series returns a reading of every registered series.
	Series() ([]models.Series, error)

	// Descriptors returns the declared metrics in declaration order.
	Descriptors() []models.Descriptor

	// Export writes the text exposition of every registered series.
	Export(w io.Writer) error

	// ExportContentType is the content type of the Export output.
	ExportContentType() string
}
