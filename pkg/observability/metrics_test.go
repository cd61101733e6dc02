package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/rangeq/pkg/observability"
)

func setupTestMeter(t *testing.T) (*observability.DriverMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := observability.NewDriverMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return metrics, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumByOp(t *testing.T, found *metricdata.Metrics) map[string]int64 {
	t.Helper()

	sum, ok := found.Data.(metricdata.Sum[int64])
	require.True(t, ok, "unexpected data type %T", found.Data)

	result := make(map[string]int64)

	for _, dp := range sum.DataPoints {
		op, _ := dp.Attributes.Value(attribute.Key("op"))
		result[op.AsString()] += dp.Value
	}

	return result
}

func TestDriverMetrics_Commands(t *testing.T) {
	t.Parallel()

	metrics, reader := setupTestMeter(t)
	ctx := context.Background()

	metrics.RecordInsert(ctx, false)
	metrics.RecordInsert(ctx, true)
	metrics.RecordQuery(ctx, 2)

	rm := collectMetrics(t, reader)

	commands := findMetric(rm, "rangeq.commands.total")
	require.NotNil(t, commands, "rangeq.commands.total metric not found")
	assert.Equal(t, map[string]int64{"insert": 2, "query": 1}, sumByOp(t, commands))

	result := findMetric(rm, "rangeq.query.result")
	require.NotNil(t, result, "rangeq.query.result metric not found")

	hist, ok := result.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.Equal(t, int64(2), hist.DataPoints[0].Sum)
}

func TestDriverMetrics_Rejected(t *testing.T) {
	t.Parallel()

	metrics, reader := setupTestMeter(t)

	metrics.RecordRejected(context.Background(), "invalid_argument")

	rm := collectMetrics(t, reader)

	rejected := findMetric(rm, "rangeq.rejected.total")
	require.NotNil(t, rejected)

	sum, ok := rejected.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

func TestDriverMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var metrics *observability.DriverMetrics

	assert.NotPanics(t, func() {
		metrics.RecordInsert(context.Background(), false)
		metrics.RecordQuery(context.Background(), 1)
		metrics.RecordRejected(context.Background(), "x")
	})
}
