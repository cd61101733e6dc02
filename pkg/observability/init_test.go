package observability_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Sumatoshi-tech/rangeq/pkg/observability"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()

	assert.Equal(t, "rangeq", cfg.ServiceName)
	assert.Equal(t, "cli", cfg.Mode)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 5, cfg.ShutdownTimeoutSec)
	assert.Empty(t, cfg.OTLPEndpoint)
	assert.Empty(t, cfg.MetricsFile)
}

func TestInit_NoopWhenNoEndpoint(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)

	ctx, span := providers.Tracer.Start(context.Background(), "test-op")
	span.End()

	assert.NotNil(t, ctx)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_ShutdownIdempotent(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, providers.Shutdown(context.Background()))
	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_MetricsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rangeq.prom")

	cfg := observability.DefaultConfig()
	cfg.MetricsFile = path

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	metrics, err := observability.NewDriverMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordInsert(ctx, false)
	metrics.RecordQuery(ctx, 3)
	metrics.RecordRejected(ctx, "unknown_command")

	require.NoError(t, providers.Shutdown(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "rangeq_commands")
	assert.Contains(t, text, "rangeq_rejected")
	assert.Contains(t, text, "rangeq_query_result")
	assert.Contains(t, text, `op="query"`)
}

func TestBuildResource_IncludesAppMode(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.Mode = "check"
	cfg.ServiceVersion = "1.2.3"

	res, err := observability.BuildResourceForTest(cfg)
	require.NoError(t, err)

	found := false

	for _, attr := range res.Attributes() {
		if string(attr.Key) == "app.mode" {
			assert.Equal(t, "check", attr.Value.AsString())

			found = true
		}
	}

	assert.True(t, found, "app.mode attribute not found in resource")
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"empty", "", nil},
		{"single", "key=value", map[string]string{"key": "value"}},
		{"multiple", "k1=v1,k2=v2", map[string]string{"k1": "v1", "k2": "v2"}},
		{"spaces", " k1 = v1 , k2 = v2 ", map[string]string{"k1": "v1", "k2": "v2"}},
		{"no_equals", "invalid", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, observability.ParseOTLPHeaders(tt.input))
		})
	}
}

func TestSampler_AlwaysOff(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER", "always_off")

	assert.False(t, observability.SampledSpan(observability.DefaultConfig()))
}

func TestSampler_TraceIDRatio(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER", "traceidratio")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "1.0")

	assert.True(t, observability.SampledSpan(observability.DefaultConfig()))
}

func TestSampler_ParentBasedAlwaysOff(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER", "parentbased_always_off")

	assert.False(t, observability.SampledSpan(observability.DefaultConfig()))
}

func TestSampler_Default(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER", "")

	assert.True(t, observability.SampledSpan(observability.DefaultConfig()))

	cfg := observability.DefaultConfig()
	cfg.SampleRatio = 1.0
	assert.True(t, observability.SampledSpan(cfg))
}

func TestEnvSampler_Names(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		arg  string
		want sdktrace.Sampler
	}{
		{"always_on", "", sdktrace.AlwaysSample()},
		{"always_off", "", sdktrace.NeverSample()},
		{"traceidratio", "0.25", sdktrace.TraceIDRatioBased(0.25)},
		{"parentbased_always_on", "", sdktrace.ParentBased(sdktrace.AlwaysSample())},
		{"parentbased_always_off", "", sdktrace.ParentBased(sdktrace.NeverSample())},
		{"parentbased_traceidratio", "0.5", sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.5))},
		{"unknown", "", sdktrace.ParentBased(sdktrace.AlwaysSample())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want.Description(), observability.EnvSamplerDescription(tt.name, tt.arg))
		})
	}
}
