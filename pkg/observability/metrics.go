package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCommandsTotal = "rangeq.commands.total"
	metricRejectedTotal = "rangeq.rejected.total"
	metricQueryResult   = "rangeq.query.result"

	attrOp        = "op"
	attrDuplicate = "duplicate"
	attrReason    = "reason"

	// OpInsert labels k commands.
	OpInsert = "insert"
	// OpQuery labels q commands.
	OpQuery = "query"
)

// queryResultBoundaries spans counts from a handful of keys to millions.
var queryResultBoundaries = []float64{0, 1, 10, 100, 1_000, 10_000, 100_000, 1_000_000}

// DriverMetrics holds the OTel instruments fed by the command driver.
type DriverMetrics struct {
	commandsTotal metric.Int64Counter
	rejectedTotal metric.Int64Counter
	queryResult   metric.Int64Histogram
}

// NewDriverMetrics creates driver metric instruments from the given meter.
func NewDriverMetrics(mt metric.Meter) (*DriverMetrics, error) {
	commands, err := mt.Int64Counter(metricCommandsTotal,
		metric.WithDescription("Commands executed by operation"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommandsTotal, err)
	}

	rejected, err := mt.Int64Counter(metricRejectedTotal,
		metric.WithDescription("Input tokens rejected by reason"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRejectedTotal, err)
	}

	result, err := mt.Int64Histogram(metricQueryResult,
		metric.WithDescription("Keys counted per range query"),
		metric.WithUnit("{key}"),
		metric.WithExplicitBucketBoundaries(queryResultBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricQueryResult, err)
	}

	return &DriverMetrics{
		commandsTotal: commands,
		rejectedTotal: rejected,
		queryResult:   result,
	}, nil
}

// RecordInsert counts one k command.
// Safe to call on a nil receiver (no-op).
func (dm *DriverMetrics) RecordInsert(ctx context.Context, duplicate bool) {
	if dm == nil {
		return
	}

	dm.commandsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOp, OpInsert),
		attribute.Bool(attrDuplicate, duplicate),
	))
}

// RecordQuery counts one q command and its result.
// Safe to call on a nil receiver (no-op).
func (dm *DriverMetrics) RecordQuery(ctx context.Context, count int) {
	if dm == nil {
		return
	}

	dm.commandsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, OpQuery)))
	dm.queryResult.Record(ctx, int64(count))
}

// RecordRejected counts one token the driver could not use.
// Safe to call on a nil receiver (no-op).
func (dm *DriverMetrics) RecordRejected(ctx context.Context, reason string) {
	if dm == nil {
		return
	}

	dm.rejectedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}
