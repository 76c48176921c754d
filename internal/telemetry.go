// Package internal contains the telemetry shared by the components of the module.
package internal

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationScope = "github.com/FerroO2000/ringo"

// Telemetry bundles the logger, the meter and the tracer of a component.
// Logs, metrics and spans are tagged with the component kind and name.
type Telemetry struct {
	kind string
	name string

	logger *slog.Logger

	meter  metric.Meter
	tracer trace.Tracer

	attrs attribute.Set
}

// NewTelemetry returns the telemetry of the component of the given kind and name.
// It uses the default slog logger and the global OpenTelemetry providers,
// so it must be created after they have been set up.
func NewTelemetry(kind, name string) *Telemetry {
	return &Telemetry{
		kind: kind,
		name: name,

		logger: slog.Default().With("kind", kind, "name", name),

		meter:  otel.Meter(instrumentationScope),
		tracer: otel.Tracer(instrumentationScope),

		attrs: attribute.NewSet(
			attribute.String("kind", kind),
			attribute.String("name", name),
		),
	}
}

// LogInfo logs a message at info level.
func (t *Telemetry) LogInfo(msg string, args ...any) {
	t.logger.Info(msg, args...)
}

// LogWarn logs a message at warn level.
func (t *Telemetry) LogWarn(msg string, args ...any) {
	t.logger.Warn(msg, args...)
}

// LogError logs a message along with the error at error level.
func (t *Telemetry) LogError(msg string, err error, args ...any) {
	t.logger.Error(msg, append([]any{"error", err}, args...)...)
}

// LogDebug logs a message at debug level.
func (t *Telemetry) LogDebug(msg string, args ...any) {
	t.logger.Debug(msg, args...)
}

func (t *Telemetry) metricName(name string) string {
	return t.kind + "_" + name
}

// NewCounter registers a monotonic counter whose value is read from fn
// every time the metrics are collected.
func (t *Telemetry) NewCounter(name string, fn func() int64) {
	_, err := t.meter.Int64ObservableCounter(
		t.metricName(name),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(fn(), metric.WithAttributeSet(t.attrs))
			return nil
		}),
	)

	if err != nil {
		t.LogError("failed to create counter", err, "counter", name)
	}
}

// NewUpDownCounter registers a counter that can also decrease,
// its value is read from fn every time the metrics are collected.
func (t *Telemetry) NewUpDownCounter(name string, fn func() int64) {
	_, err := t.meter.Int64ObservableUpDownCounter(
		t.metricName(name),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(fn(), metric.WithAttributeSet(t.attrs))
			return nil
		}),
	)

	if err != nil {
		t.LogError("failed to create up/down counter", err, "counter", name)
	}
}

// Histogram is a float64 histogram tagged with the component attributes.
type Histogram struct {
	hist  metric.Float64Histogram
	attrs attribute.Set
}

// Record adds a value to the histogram.
func (h *Histogram) Record(ctx context.Context, value float64) {
	if h.hist == nil {
		return
	}

	h.hist.Record(ctx, value, metric.WithAttributeSet(h.attrs))
}

// NewHistogram creates a float64 histogram.
// On failure the returned histogram discards the recorded values.
func (t *Telemetry) NewHistogram(name string, opts ...metric.Float64HistogramOption) *Histogram {
	hist, err := t.meter.Float64Histogram(t.metricName(name), opts...)
	if err != nil {
		t.LogError("failed to create histogram", err, "histogram", name)
		return &Histogram{}
	}

	return &Histogram{
		hist:  hist,
		attrs: t.attrs,
	}
}

// NewTrace starts a span with the given name.
// The caller must end the returned span.
func (t *Telemetry) NewTrace(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, spanName,
		trace.WithAttributes(
			attribute.String("kind", t.kind),
			attribute.String("name", t.name),
		),
	)
}
