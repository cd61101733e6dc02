// Package observability provides OpenTelemetry tracing and metrics plus
// trace-correlated structured logging for the rangeq tools.
package observability

import (
	"io"
	"log/slog"
)

const (
	// defaultServiceName is the default OTel service name.
	defaultServiceName = "rangeq"

	// defaultShutdownTimeoutSec is the default shutdown timeout in seconds.
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment (e.g. "production", "dev").
	Environment string

	// Mode is the subcommand the binary was launched with.
	Mode string

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export.
	OTLPEndpoint string

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporter.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// SampleRatio is the trace sampling ratio (0.0 to 1.0).
	// Zero keeps the parent-based always-on default.
	SampleRatio float64

	// MetricsFile, when set, receives every metric in the Prometheus text
	// format on shutdown.
	MetricsFile string

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// LogOutput receives log records. Nil means stderr.
	LogOutput io.Writer

	// ShutdownTimeoutSec is the maximum seconds to wait for flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup: text logs at info
// level and no telemetry export.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               "cli",
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
