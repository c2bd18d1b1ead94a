package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records proxy metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordOperation records an intercepted read, write or delete.
	RecordOperation(ctx context.Context, op string, success bool, duration time.Duration)

	// RecordDispatch records one event dispatch and how many listeners it reached.
	RecordDispatch(ctx context.Context, category string, listeners int, err error)
}

type otelMetrics struct {
	operations       metric.Int64Counter
	denied           metric.Int64Counter
	operationLatency metric.Float64Histogram
	dispatches       metric.Int64Counter
	dispatchFanout   metric.Int64Histogram
	listenerErrors   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("listenable")

	operations, err := meter.Int64Counter("listenable.operation.count",
		metric.WithDescription("Number of intercepted container operations"),
	)
	if err != nil {
		return nil, err
	}

	denied, err := meter.Int64Counter("listenable.operation.failed",
		metric.WithDescription("Number of operations reported with success=false"),
	)
	if err != nil {
		return nil, err
	}

	operationLatency, err := meter.Float64Histogram("listenable.operation.latency_ms",
		metric.WithDescription("Operation latency including listener callbacks"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	dispatches, err := meter.Int64Counter("listenable.dispatch.count",
		metric.WithDescription("Number of dispatched events"),
	)
	if err != nil {
		return nil, err
	}

	dispatchFanout, err := meter.Int64Histogram("listenable.dispatch.listeners",
		metric.WithDescription("Listeners bound to the category at dispatch time"),
	)
	if err != nil {
		return nil, err
	}

	listenerErrors, err := meter.Int64Counter("listenable.dispatch.errors",
		metric.WithDescription("Number of dispatches aborted by a listener error"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		operations:       operations,
		denied:           denied,
		operationLatency: operationLatency,
		dispatches:       dispatches,
		dispatchFanout:   dispatchFanout,
		listenerErrors:   listenerErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordOperation records an intercepted operation.
func (m *otelMetrics) RecordOperation(ctx context.Context, op string, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.Bool("success", success),
	)
	m.operations.Add(ctx, 1, attrs)
	m.operationLatency.Record(ctx, float64(duration)/float64(time.Millisecond), attrs)
	if !success {
		m.denied.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	}
}

// RecordDispatch records an event dispatch.
func (m *otelMetrics) RecordDispatch(ctx context.Context, category string, listeners int, err error) {
	attrs := metric.WithAttributes(attribute.String("category", category))
	m.dispatches.Add(ctx, 1, attrs)
	m.dispatchFanout.Record(ctx, int64(listeners), attrs)
	if err != nil {
		m.listenerErrors.Add(ctx, 1, attrs)
	}
}
