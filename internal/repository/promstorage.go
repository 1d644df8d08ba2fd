package repository

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/Schera-ole/qasandbox/internal/config"
	internalerrors "github.com/Schera-ole/qasandbox/internal/errors"
	models "github.com/Schera-ole/qasandbox/internal/model"
)

var exportFormat = expfmt.NewFormat(expfmt.TypeTextPlain)

// PromStorage implements the Repository interface on top of a private
// Prometheus registry.
type PromStorage struct {
	// mu guards the declaration maps; series updates are atomic in client_golang
	mu sync.RWMutex

	registry *prometheus.Registry

	// counters stores counter vectors by metric name
	counters map[string]*prometheus.CounterVec

	// gauges stores gauges by metric name
	gauges map[string]prometheus.Gauge

	descriptors []models.Descriptor
}

// NewPromStorage creates an empty registry.
func NewPromStorage() *PromStorage {

	return &PromStorage{
		registry: prometheus.NewRegistry(),
		counters: make(map[string]*prometheus.CounterVec),
		gauges:   make(map[string]prometheus.Gauge),
	}
}

// DeclareCounter registers a labeled counter and pre-creates its preset series.
func (ps *PromStorage) DeclareCounter(name, help, labelKey string, preset ...string) error {

	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.declared(name) {
		return fmt.Errorf("%w: %s", internalerrors.ErrMetricAlreadyDeclared, name)
	}

	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		[]string{labelKey},
	)
	if err := ps.registry.Register(vec); err != nil {
		return fmt.Errorf("register counter %s: %w", name, err)
	}
	for _, value := range preset {
		if _, err := vec.GetMetricWithLabelValues(value); err != nil {
			return fmt.Errorf("preset %s{%s=%q}: %w", name, labelKey, value, err)
		}
	}

	ps.counters[name] = vec
	ps.descriptors = append(ps.descriptors, models.Descriptor{
		Name:     name,
		Help:     help,
		Type:     config.CounterType,
		LabelKey: labelKey,
	})
	return nil
}

// DeclareGauge registers an unlabeled gauge.
func (ps *PromStorage) DeclareGauge(name, help string) error {

	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.declared(name) {
		return fmt.Errorf("%w: %s", internalerrors.ErrMetricAlreadyDeclared, name)
	}

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
	if err := ps.registry.Register(gauge); err != nil {
		return fmt.Errorf("register gauge %s: %w", name, err)
	}

	ps.gauges[name] = gauge
	ps.descriptors = append(ps.descriptors, models.Descriptor{
		Name: name,
		Help: help,
		Type: config.GaugeType,
	})
	return nil
}

func (ps *PromStorage) declared(name string) bool {
	_, isCounter := ps.counters[name]
	_, isGauge := ps.gauges[name]
	return isCounter || isGauge
}

// Increment adds one to a counter series. Undeclared metric names are ignored.
//
// Label values that Prometheus rejects (invalid UTF-8) are tracked under their
// sanitized form instead of being dropped.
func (ps *PromStorage) Increment(name, labelValue string) {

	ps.mu.RLock()
	vec, exists := ps.counters[name]
	ps.mu.RUnlock()
	if !exists {
		return
	}

	counter, err := vec.GetMetricWithLabelValues(labelValue)
	if err != nil {
		counter, err = vec.GetMetricWithLabelValues(strings.ToValidUTF8(labelValue, "�"))
		if err != nil {
			return
		}
	}
	counter.Inc()
}

// SetGauge overwrites a gauge value. Undeclared metric names are ignored.
func (ps *PromStorage) SetGauge(name string, value float64) {

	ps.mu.RLock()
	gauge, exists := ps.gauges[name]
	ps.mu.RUnlock()
	if exists {
		gauge.Set(value)
	}
}

// CounterValue returns the current count of one counter series.
func (ps *PromStorage) CounterValue(name, labelValue string) (int64, error) {

	family, err := ps.family(name, dto.MetricType_COUNTER)
	if err != nil {
		return 0, err
	}
	for _, m := range family.GetMetric() {
		if labelOf(m) == labelValue {
			return int64(m.GetCounter().GetValue()), nil
		}
	}
	return 0, fmt.Errorf("%w: %s{%q}", internalerrors.ErrMetricNotFound, name, labelValue)
}

// CounterTotal returns the sum of every series of a counter.
func (ps *PromStorage) CounterTotal(name string) (int64, error) {

	family, err := ps.family(name, dto.MetricType_COUNTER)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, m := range family.GetMetric() {
		total += int64(m.GetCounter().GetValue())
	}
	return total, nil
}

// GaugeValue returns the current value of a gauge.
func (ps *PromStorage) GaugeValue(name string) (float64, error) {

	family, err := ps.family(name, dto.MetricType_GAUGE)
	if err != nil {
		return 0, err
	}
	if len(family.GetMetric()) == 0 {
		return 0, fmt.Errorf("%w: %s", internalerrors.ErrMetricNotFound, name)
	}
	return family.GetMetric()[0].GetGauge().GetValue(), nil
}

// Series returns a reading of every registered series, ordered by metric name
// and label value.
func (ps *PromStorage) Series() ([]models.Series, error) {

	families, err := ps.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var result []models.Series
	for _, family := range families {
		for _, m := range family.GetMetric() {
			series := models.Series{Name: family.GetName()}
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				series.Type = config.CounterType
				series.Value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				series.Type = config.GaugeType
				series.Value = m.GetGauge().GetValue()
			default:
				continue
			}
			if labels := m.GetLabel(); len(labels) > 0 {
				series.LabelKey = labels[0].GetName()
				series.LabelValue = labels[0].GetValue()
			}
			result = append(result, series)
		}
	}
	return result, nil
}

// Descriptors returns the declared metrics in declaration order.
func (ps *PromStorage) Descriptors() []models.Descriptor {

	ps.mu.RLock()
	defer ps.mu.RUnlock()
	result := make([]models.Descriptor, len(ps.descriptors))
	copy(result, ps.descriptors)
	return result
}

// Export writes the Prometheus text exposition of the registry. Gather sorts
// families by name and series by label, so equal state yields equal output.
func (ps *PromStorage) Export(w io.Writer) error {

	families, err := ps.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	encoder := expfmt.NewEncoder(w, exportFormat)
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return fmt.Errorf("encode %s: %w", family.GetName(), err)
		}
	}
	return nil
}

// ExportContentType returns the content type of the Export output.
func (ps *PromStorage) ExportContentType() string {

	return string(exportFormat)
}

func (ps *PromStorage) family(name string, typ dto.MetricType) (*dto.MetricFamily, error) {
	families, err := ps.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		if family.GetType() != typ {
			return nil, fmt.Errorf("%w: %s is %s", internalerrors.ErrUnknownMetricType, name, family.GetType())
		}
		return family, nil
	}

	// a declared vector without series is not gathered
	ps.mu.RLock()
	_, isCounter := ps.counters[name]
	ps.mu.RUnlock()
	if isCounter && typ == dto.MetricType_COUNTER {
		return &dto.MetricFamily{}, nil
	}
	return nil, fmt.Errorf("%w: %s", internalerrors.ErrMetricNotFound, name)
}

func labelOf(m *dto.Metric) string {
	labels := m.GetLabel()
	if len(labels) == 0 {
		return ""
	}
	return labels[0].GetValue()
}
