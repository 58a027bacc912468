package jsengine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/compozy/jsswitch/engine/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName               = "jsswitch.engine"
	operationLatencyMetric  = "jsswitch_engine_operation_seconds"
	operationErrorsMetric   = "jsswitch_engine_errors_total"
	operationOutcomeSuccess = "success"
	operationOutcomeError   = "error"
)

type engineMetrics struct {
	operationLatency metric.Float64Histogram
	errorCounter     metric.Int64Counter
}

var (
	defaultMetricsOnce sync.Once
	defaultMetrics     *engineMetrics
)

func defaultRecorder() *engineMetrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = newEngineMetrics(otel.GetMeterProvider().Meter(meterName))
	})
	return defaultMetrics
}

func newEngineMetrics(meter metric.Meter) *engineMetrics {
	latency, err := meter.Float64Histogram(
		operationLatencyMetric,
		metric.WithDescription("Latency of JavaScript engine operations"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create engine histogram %s: %w", operationLatencyMetric, err))
	}
	errorsTotal, err := meter.Int64Counter(
		operationErrorsMetric,
		metric.WithDescription("Total JavaScript engine errors by kind"),
		metric.WithUnit("1"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create engine counter %s: %w", operationErrorsMetric, err))
	}
	return &engineMetrics{operationLatency: latency, errorCounter: errorsTotal}
}

func (m *engineMetrics) recordOperation(
	ctx context.Context,
	engine, operation string,
	duration time.Duration,
	err error,
) {
	if m == nil {
		return
	}
	outcome := operationOutcomeSuccess
	if err != nil {
		outcome = operationOutcomeError
	}
	m.operationLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("engine", engine),
			attribute.String("operation", operation),
			attribute.String("outcome", outcome),
		),
	)
	if err == nil {
		return
	}
	kind, ok := core.KindOf(err)
	if !ok {
		kind = core.KindGeneric
	}
	m.errorCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("engine", engine),
			attribute.String("kind", kind.String()),
		),
	)
}
