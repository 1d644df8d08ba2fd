// Package exporter pushes the sandbox metrics to an OpenTelemetry collector.
package exporter

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"

	"github.com/Schera-ole/qasandbox/internal/config"
	internalerrors "github.com/Schera-ole/qasandbox/internal/errors"
	models "github.com/Schera-ole/qasandbox/internal/model"
)

const meterName = "github.com/Schera-ole/qasandbox"

// Source is the part of the metric registry the exporter reads.
type Source interface {
	Descriptors() []models.Descriptor
	Series() ([]models.Series, error)
}

// OTLPExporter observes every registry series on each collection and pushes
// them over OTLP.
type OTLPExporter struct {
	provider    *sdkmetric.MeterProvider
	source      Source
	logger      *zap.SugaredLogger
	instruments map[string]otelmetric.Float64Observable
}

// New creates an exporter pushing to cfg.OTLPEndpoint every cfg.OTLPInterval.
func New(ctx context.Context, cfg *config.ServerConfig, source Source, logger *zap.SugaredLogger) (*OTLPExporter, error) {
	metricExporter, err := newMetricExporter(ctx, cfg.OTLPProtocol, cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", cfg.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(cfg.OTLPInterval))
	e, err := newOTLPExporter(res, reader, source, logger)
	if err != nil {
		return nil, err
	}

	logger.Infow("otlp exporter started",
		"endpoint", cfg.OTLPEndpoint,
		"protocol", cfg.OTLPProtocol,
		"interval", cfg.OTLPInterval,
	)
	return e, nil
}

func newMetricExporter(ctx context.Context, protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch protocol {
	case config.OTLPProtocolHTTP:
		exp, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
		}
		return exp, nil
	case config.OTLPProtocolGRPC:
		exp, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("%w: %q", internalerrors.ErrUnsupportedProtocol, protocol)
	}
}

// newOTLPExporter registers one observable instrument per declared metric on a
// provider collected by reader.
func newOTLPExporter(res *resource.Resource, reader sdkmetric.Reader, source Source, logger *zap.SugaredLogger) (*OTLPExporter, error) {
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	meter := provider.Meter(meterName)

	e := &OTLPExporter{
		provider:    provider,
		source:      source,
		logger:      logger,
		instruments: make(map[string]otelmetric.Float64Observable),
	}

	var observables []otelmetric.Observable
	for _, d := range source.Descriptors() {
		var (
			inst otelmetric.Float64Observable
			err  error
		)
		switch d.Type {
		case models.Counter:
			inst, err = meter.Float64ObservableCounter(d.Name, otelmetric.WithDescription(d.Help))
		case models.Gauge:
			inst, err = meter.Float64ObservableGauge(d.Name, otelmetric.WithDescription(d.Help))
		default:
			err = fmt.Errorf("%w: %s", internalerrors.ErrUnknownMetricType, d.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create instrument %q: %w", d.Name, err)
		}
		e.instruments[d.Name] = inst
		observables = append(observables, inst)
		logger.Debugw("registered otel instrument", "name", d.Name, "type", d.Type)
	}

	if _, err := meter.RegisterCallback(e.observe, observables...); err != nil {
		return nil, fmt.Errorf("failed to register callback: %w", err)
	}
	return e, nil
}

func (e *OTLPExporter) observe(_ context.Context, observer otelmetric.Observer) error {
	series, err := e.source.Series()
	if err != nil {
		return fmt.Errorf("failed to read series: %w", err)
	}

	for _, s := range series {
		inst, ok := e.instruments[s.Name]
		if !ok {
			continue
		}
		if s.LabelKey == "" {
			observer.ObserveFloat64(inst, s.Value)
			continue
		}
		observer.ObserveFloat64(inst, s.Value,
			otelmetric.WithAttributes(attribute.String(s.LabelKey, s.LabelValue)))
	}
	e.logger.Debugw("otel collect", "series", len(series))
	return nil
}

// Shutdown flushes pending data and stops the periodic push.
func (e *OTLPExporter) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := e.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down meter provider: %w", err)
	}
	return nil
}
