package instrumentation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"
)

// Exporter names accepted by METRICS_EXPORTER and TRACING_EXPORTER.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

var (
	metricsExporters = []string{ExporterPrometheus, ExporterOTLP, ExporterStdout}
	tracesExporters  = []string{ExporterOTLP, ExporterStdout, ExporterNone}
)

// metricExportInterval is the push interval of the OTLP and stdout metric readers.
const metricExportInterval = 10 * time.Second

// Config describes the telemetry of one gmailmcp process. Both "run" and
// "serve" read it from the environment.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// InstanceID defaults to the hostname.
	InstanceID string

	// Enabled turns on the SDK. When false every recorder is a no-op.
	Enabled bool

	MetricsExporter string
	TracesExporter  string
	// SampleRate is the fraction of root traces kept, between 0 and 1.
	SampleRate float64

	// OTLPEndpoint is the host:port of an OTLP/HTTP collector.
	OTLPEndpoint string
	OTLPInsecure bool

	// Stdout receives the output of the stdout exporters. It must not be
	// os.Stdout in "serve" mode, where stdout carries the MCP stream.
	Stdout io.Writer

	Audit AuditConfig
}

// AuditConfig controls the per tool call audit records of the server.
type AuditConfig struct {
	Enabled bool
	// IncludeRecipients logs send and draft recipients in clear text.
	// Otherwise they are hashed.
	IncludeRecipients bool
}

// DefaultConfig reads the configuration from the process environment.
func DefaultConfig() Config {
	return ConfigFromEnv(os.LookupEnv)
}

// ConfigFromEnv reads the configuration through lookup. Unparsable values fall
// back to their defaults.
func ConfigFromEnv(lookup func(string) (string, bool)) Config {
	env := envReader(lookup)
	return Config{
		ServiceName:     env.str("OTEL_SERVICE_NAME", "gmailmcp"),
		ServiceVersion:  "unknown",
		InstanceID:      env.str("OTEL_SERVICE_INSTANCE_ID", ""),
		Enabled:         env.boolean("INSTRUMENTATION_ENABLED", false),
		MetricsExporter: env.str("METRICS_EXPORTER", ExporterPrometheus),
		TracesExporter:  env.str("TRACING_EXPORTER", ExporterNone),
		SampleRate:      env.float("OTEL_TRACES_SAMPLER_ARG", 0.1),
		OTLPEndpoint:    env.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:    env.boolean("OTEL_EXPORTER_OTLP_INSECURE", false),
		Stdout:          os.Stderr,
		Audit: AuditConfig{
			Enabled:           env.boolean("AUDIT_LOGGING_ENABLED", true),
			IncludeRecipients: env.boolean("AUDIT_LOGGING_INCLUDE_PII", false),
		},
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.SampleRate < 0 || c.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %g", c.SampleRate))
	}
	if c.MetricsExporter != "" && !slices.Contains(metricsExporters, c.MetricsExporter) {
		errs = append(errs, fmt.Errorf("invalid metrics exporter %q, must be one of %v", c.MetricsExporter, metricsExporters))
	}
	if c.TracesExporter != "" && !slices.Contains(tracesExporters, c.TracesExporter) {
		errs = append(errs, fmt.Errorf("invalid tracing exporter %q, must be one of %v", c.TracesExporter, tracesExporters))
	}
	if c.usesOTLP() && c.OTLPEndpoint == "" {
		errs = append(errs, errors.New("OTLP endpoint is required when using an OTLP exporter; set OTEL_EXPORTER_OTLP_ENDPOINT"))
	}
	return errors.Join(errs...)
}

func (c Config) usesOTLP() bool {
	return c.MetricsExporter == ExporterOTLP || c.TracesExporter == ExporterOTLP
}

func (c Config) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stderr
}

type envReader func(string) (string, bool)

func (e envReader) str(key, def string) string {
	if v, ok := e(key); ok && v != "" {
		return v
	}
	return def
}

func (e envReader) boolean(key string, def bool) bool {
	if v, err := strconv.ParseBool(e.str(key, "")); err == nil {
		return v
	}
	return def
}

func (e envReader) float(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(e.str(key, ""), 64); err == nil {
		return v
	}
	return def
}
