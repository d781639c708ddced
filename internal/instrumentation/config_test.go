package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func envOf(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	config := ConfigFromEnv(envOf(nil))

	assert.Equal(t, "gmailmcp", config.ServiceName)
	assert.False(t, config.Enabled)
	assert.Equal(t, ExporterPrometheus, config.MetricsExporter)
	assert.Equal(t, ExporterNone, config.TracesExporter)
	assert.Equal(t, 0.1, config.SampleRate)
	assert.NotNil(t, config.Stdout)
	assert.Equal(t, AuditConfig{Enabled: true}, config.Audit)
}

func TestConfigFromEnv(t *testing.T) {
	config := ConfigFromEnv(envOf(map[string]string{
		"INSTRUMENTATION_ENABLED":     "true",
		"METRICS_EXPORTER":            "stdout",
		"TRACING_EXPORTER":            "otlp",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "collector:4318",
		"OTEL_TRACES_SAMPLER_ARG":     "not-a-number",
		"AUDIT_LOGGING_INCLUDE_PII":   "true",
		"AUDIT_LOGGING_ENABLED":       "maybe",
	}))

	assert.True(t, config.Enabled)
	assert.Equal(t, ExporterStdout, config.MetricsExporter)
	assert.Equal(t, ExporterOTLP, config.TracesExporter)
	assert.Equal(t, "collector:4318", config.OTLPEndpoint)
	assert.Equal(t, 0.1, config.SampleRate, "invalid values fall back to the default")
	assert.True(t, config.Audit.Enabled, "invalid values fall back to the default")
	assert.True(t, config.Audit.IncludeRecipients)
}

func TestDefaultConfig_ReadsProcessEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "driver")
	assert.Equal(t, "driver", DefaultConfig().ServiceName)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "valid defaults", config: Config{MetricsExporter: ExporterPrometheus, TracesExporter: ExporterNone, SampleRate: 0.5}},
		{name: "sampling rate too high", config: Config{SampleRate: 1.5}, wantErr: "trace sampling rate"},
		{name: "sampling rate negative", config: Config{SampleRate: -0.1}, wantErr: "trace sampling rate"},
		{name: "unknown metrics exporter", config: Config{MetricsExporter: "statsd"}, wantErr: `invalid metrics exporter "statsd"`},
		{name: "unknown tracing exporter", config: Config{TracesExporter: "zipkin"}, wantErr: `invalid tracing exporter "zipkin"`},
		{name: "otlp without endpoint", config: Config{TracesExporter: ExporterOTLP}, wantErr: "OTLP endpoint is required"},
		{name: "otlp with endpoint", config: Config{TracesExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_ValidateReportsAllErrors(t *testing.T) {
	err := Config{SampleRate: 2, MetricsExporter: "statsd", TracesExporter: "zipkin"}.Validate()
	assert.ErrorContains(t, err, "trace sampling rate")
	assert.ErrorContains(t, err, "statsd")
	assert.ErrorContains(t, err, "zipkin")
}
