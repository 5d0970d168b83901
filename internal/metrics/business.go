package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records operation counts and durations per business domain.
//
// Domains are "encryption", "audit" and "migration". Operations are the snake_case
// name of the use case method, e.g. "financial_amount_encrypt" or "family_data_migrate".
// Status is "success" or "error" unless a decorator documents otherwise.
type BusinessMetrics interface {
	RecordOperation(ctx context.Context, domain, operation, status string)
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
}

// MigrationMetrics records row outcomes of encryption migrations.
type MigrationMetrics interface {
	// RecordMigratedRows adds count rows for entity ("accounts", "transactions",
	// "profiles") with outcome "encrypted" or "failed".
	RecordMigratedRows(ctx context.Context, entity, outcome string, count int64)
}

// businessMetrics implements BusinessMetrics and MigrationMetrics using OpenTelemetry.
type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	rowCounter       metric.Int64Counter
}

// NewBusinessMetrics creates the business instruments on meterProvider. Metric names are
// prefixed with namespace.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (*businessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	rowCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_migration_rows_total", namespace),
		metric.WithDescription("Rows handled by encryption migrations"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration row counter: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		rowCounter:       rowCounter,
	}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordDuration records the duration in seconds.
func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordMigratedRows(ctx context.Context, entity, outcome string, count int64) {
	if count <= 0 {
		return
	}
	b.rowCounter.Add(ctx, count,
		metric.WithAttributes(
			attribute.String("entity", entity),
			attribute.String("outcome", outcome),
		),
	)
}

// NoOpBusinessMetrics is used when METRICS_ENABLED is false.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op implementation of both metric interfaces.
func NewNoOpBusinessMetrics() *NoOpBusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

func (n *NoOpBusinessMetrics) RecordMigratedRows(ctx context.Context, entity, outcome string, count int64) {}
