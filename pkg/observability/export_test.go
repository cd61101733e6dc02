package observability

import (
	"context"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// BuildResourceForTest exposes buildResource for testing.
func BuildResourceForTest(cfg Config) (*resource.Resource, error) {
	return buildResource(cfg)
}

// SampledSpan starts one span under the sampler resolved from cfg and
// reports whether it was recorded.
func SampledSpan(cfg Config) bool {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(selectSampler(cfg)),
	)

	_, span := tp.Tracer("test").Start(context.Background(), "sampled")
	span.End()

	// Shutdown clears the exporter.
	spans := exporter.GetSpans()

	if tp.Shutdown(context.Background()) != nil {
		return false
	}

	return len(spans) > 0
}

// EnvSamplerDescription describes the sampler selected by the
// OTEL_TRACES_SAMPLER name and argument.
func EnvSamplerDescription(name, arg string) string {
	return envSampler2Sampler(name, arg).Description()
}
