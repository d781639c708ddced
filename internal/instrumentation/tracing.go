package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of every gmailmcp span.
const TracerName = "github.com/teemow/gmailmcp"

// Span attribute keys.
const (
	SpanAttrTool             = "mcp.tool"
	SpanAttrCredentialSource = "mcp.credential_source"
	SpanAttrService          = "google.service"
	SpanAttrOperation        = "google.operation"
	SpanAttrStep             = "driver.step"
	SpanAttrRunID            = "driver.run_id"
)

func startSpan(ctx context.Context, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(kind),
		trace.WithAttributes(attrs...),
	)
}

// StartToolSpan starts the server span of one MCP tool call, named "tool.<name>".
func StartToolSpan(ctx context.Context, tool string) (context.Context, trace.Span) {
	return startSpan(ctx, "tool."+tool, trace.SpanKindServer,
		attribute.String(SpanAttrTool, tool))
}

// StartGoogleAPISpan starts a client span named "google.<service>.<operation>".
func StartGoogleAPISpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return startSpan(ctx, "google."+service+"."+operation, trace.SpanKindClient,
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation))
}

// StartDriverStepSpan starts the client span of one driver step, named
// "driver.<step>". Empty runID and tool are left out.
func StartDriverStepSpan(ctx context.Context, step, runID, tool string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String(SpanAttrStep, step)}
	if runID != "" {
		attrs = append(attrs, attribute.String(SpanAttrRunID, runID))
	}
	if tool != "" {
		attrs = append(attrs, attribute.String(SpanAttrTool, tool))
	}
	return startSpan(ctx, "driver."+step, trace.SpanKindClient, attrs...)
}

// MarkCredentialSource tags the current span with where the request's token came from.
func MarkCredentialSource(ctx context.Context, source string) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(SpanAttrCredentialSource, source))
}

// EndSpan sets the span status from err and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceID returns the trace ID of the span in ctx, or "" without a valid span.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
