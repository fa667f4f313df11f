package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "guessingGame/repository"

// Option configures logging, tracing and metrics for a repository.
type Option func(*instrumentation)

// WithLogger sets the logger used for query logs.
func WithLogger(logger *slog.Logger) Option {
	return func(in *instrumentation) {
		if logger != nil {
			in.logger = logger.With("component", "repository")
		}
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(in *instrumentation) {
		if tp != nil {
			in.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// WithMeterProvider overrides the global OpenTelemetry meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(in *instrumentation) {
		if mp != nil {
			in.meter = mp.Meter(instrumentationName)
		}
	}
}

type instrumentation struct {
	logger *slog.Logger
	tracer trace.Tracer
	meter  metric.Meter

	queryCount    metric.Int64Counter
	queryDuration metric.Float64Histogram
	queryErrors   metric.Int64Counter
}

func newInstrumentation(opts ...Option) *instrumentation {
	in := &instrumentation{
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(in)
	}

	in.queryCount, _ = in.meter.Int64Counter("repository.query.count",
		metric.WithDescription("Total number of SQL statements executed"),
		metric.WithUnit("{query}"),
	)
	in.queryDuration, _ = in.meter.Float64Histogram("repository.query.duration",
		metric.WithDescription("Statement execution duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500),
	)
	in.queryErrors, _ = in.meter.Int64Counter("repository.query.errors",
		metric.WithDescription("Total number of failed SQL statements"),
		metric.WithUnit("{error}"),
	)
	return in
}

// observe runs fn inside a span and records count, duration and errors for it.
// sql.ErrNoRows is a lookup outcome, not a failure.
func (in *instrumentation) observe(ctx context.Context, operation, query string, fn func(context.Context) error) error {
	ctx, span := in.tracer.Start(ctx, "repository."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "sqlite"),
			attribute.String("db.operation", operation),
		),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	attrs := metric.WithAttributes(attribute.String("db.operation", operation))
	if in.queryCount != nil {
		in.queryCount.Add(ctx, 1, attrs)
	}
	if in.queryDuration != nil {
		in.queryDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	}

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		if in.queryErrors != nil {
			in.queryErrors.Add(ctx, 1, attrs)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		in.logger.LogAttrs(ctx, slog.LevelError, "query failed",
			slog.String("operation", operation),
			slog.String("query", query),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()),
		)
		return err
	}

	in.logger.LogAttrs(ctx, slog.LevelDebug, "query executed",
		slog.String("operation", operation),
		slog.String("query", query),
		slog.Duration("duration", elapsed),
	)
	return err
}
