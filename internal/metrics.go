package internal

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	MetricFlushCount    = "sigwatch.scheduler.flushes"
	MetricJobCount      = "sigwatch.scheduler.jobs"
	MetricFlushDuration = "sigwatch.scheduler.flush.duration"
	MetricErrorCount    = "sigwatch.errors"

	meterName = "github.com/AnatoleLucet/sigwatch"
)

type runtimeMetrics struct {
	flushes       metric.Int64Counter
	jobs          metric.Int64Counter
	flushDuration metric.Float64Histogram
	errors        metric.Int64Counter
}

func newRuntimeMetrics(provider metric.MeterProvider, logger *slog.Logger) *runtimeMetrics {
	m, err := buildRuntimeMetrics(provider.Meter(meterName))
	if err != nil {
		logger.Warn("runtime metrics disabled", "error", err)
		m, _ = buildRuntimeMetrics(noop.NewMeterProvider().Meter(meterName))
	}

	return m
}

func buildRuntimeMetrics(meter metric.Meter) (*runtimeMetrics, error) {
	flushes, err := meter.Int64Counter(MetricFlushCount,
		metric.WithDescription("Scheduler flushes"),
	)
	if err != nil {
		return nil, err
	}
	jobs, err := meter.Int64Counter(MetricJobCount,
		metric.WithDescription("Jobs run by the scheduler"),
	)
	if err != nil {
		return nil, err
	}
	flushDuration, err := meter.Float64Histogram(MetricFlushDuration,
		metric.WithDescription("Scheduler flush duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	errorCount, err := meter.Int64Counter(MetricErrorCount,
		metric.WithDescription("Reaction failures routed to the error handler"),
	)
	if err != nil {
		return nil, err
	}

	return &runtimeMetrics{
		flushes:       flushes,
		jobs:          jobs,
		flushDuration: flushDuration,
		errors:        errorCount,
	}, nil
}

func (m *runtimeMetrics) recordFlush(d time.Duration) {
	ctx := context.Background()
	m.flushes.Add(ctx, 1)
	m.flushDuration.Record(ctx, d.Seconds())
}

func (m *runtimeMetrics) recordJob(phase string) {
	m.jobs.Add(context.Background(), 1, metric.WithAttributes(attribute.String("phase", phase)))
}

func (m *runtimeMetrics) recordError(code ErrorCode) {
	m.errors.Add(context.Background(), 1, metric.WithAttributes(attribute.String("code", code.String())))
}
