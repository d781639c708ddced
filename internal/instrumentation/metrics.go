package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrSource    = "source"
	attrTool      = "tool"
	attrStep      = "step"
)

var durationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

// timed is a counter and a duration histogram recorded with the same attributes.
type timed struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

func (t timed) record(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	if t.total == nil || t.duration == nil {
		return
	}
	opt := metric.WithAttributes(attrs...)
	t.total.Add(ctx, 1, opt)
	t.duration.Record(ctx, d.Seconds(), opt)
}

// Metrics records the gmailmcp instruments. The zero value and a nil pointer
// are no-op recorders.
type Metrics struct {
	activeSessions metric.Int64UpDownCounter
	credentials    metric.Int64Counter

	googleAPI timed // google_api_operations_total, google_api_operation_duration_seconds
	tools     timed // mcp_tool_invocations_total, mcp_tool_duration_seconds
	steps     timed // driver_steps_total, driver_step_duration_seconds
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var errs []error
	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to create %s counter: %w", name, err))
		}
		return c
	}
	histogram := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(durationBuckets...))
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to create %s histogram: %w", name, err))
		}
		return h
	}

	m := &Metrics{
		credentials: counter("credential_resolutions_total",
			"Total number of per-request credential resolutions", "{resolution}"),
		googleAPI: timed{
			total: counter("google_api_operations_total",
				"Total number of Google API operations", "{operation}"),
			duration: histogram("google_api_operation_duration_seconds",
				"Google API operation duration in seconds"),
		},
		tools: timed{
			total: counter("mcp_tool_invocations_total",
				"Total number of MCP tool invocations", "{invocation}"),
			duration: histogram("mcp_tool_duration_seconds",
				"MCP tool execution duration in seconds"),
		},
		steps: timed{
			total: counter("driver_steps_total",
				"Total number of interaction steps run by the driver", "{step}"),
			duration: histogram("driver_step_duration_seconds",
				"Interaction step duration in seconds, including the round trip to the server"),
		},
	}

	sessions, err := meter.Int64UpDownCounter("active_sessions",
		metric.WithDescription("Number of open MCP sessions"), metric.WithUnit("{session}"))
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to create active_sessions gauge: %w", err))
	}
	m.activeSessions = sessions

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordGoogleAPIOperation records one tool call against a Google service.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.googleAPI.record(ctx, duration,
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status))
}

// RecordCredentialResolution records where a request's credentials came from and
// whether they were usable. source is CredentialSourceUser or CredentialSourceServer,
// result one of the CredentialResult values.
func (m *Metrics) RecordCredentialResolution(ctx context.Context, source, result string) {
	if m == nil || m.credentials == nil {
		return
	}
	m.credentials.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrSource, source),
		attribute.String(attrResult, result)))
}

// RecordToolInvocation records one MCP tool call on the server.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.tools.record(ctx, duration,
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status))
}

// RecordDriverStep records one interaction step of the driver.
func (m *Metrics) RecordDriverStep(ctx context.Context, step, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.steps.record(ctx, duration,
		attribute.String(attrStep, step),
		attribute.String(attrStatus, status))
}

func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, 1)
}

func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Add(ctx, -1)
}
