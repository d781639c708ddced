// Package instrumentation provides OpenTelemetry instrumentation for gmailmcp.
//
// Both sides of the stdio pipe are instrumented:
//   - the driver ("run") records one span and one metric point per interaction step
//   - the server ("serve") records MCP tool invocations, Google API operations and
//     how per-request credentials were resolved
//
// # Metrics
//
//   - mcp_tool_invocations_total / mcp_tool_duration_seconds: tool calls handled by the server
//   - google_api_operations_total / google_api_operation_duration_seconds: Gmail API calls
//   - credential_resolutions_total: credential source (user, server) and result per request
//   - driver_steps_total / driver_step_duration_seconds: interaction steps run by the driver
//   - active_sessions: open MCP sessions
//
// # Configuration
//
// Instrumentation is configured via environment variables and is disabled by default:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_EXPORTER_OTLP_INSECURE: Use plain HTTP for OTLP (default: false)
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: gmailmcp)
//   - AUDIT_LOGGING_ENABLED: One audit record per tool call (default: true)
//   - AUDIT_LOGGING_INCLUDE_PII: Log send and draft recipients in clear text instead of hashed (default: false)
//
// # Traces
//
// Spans are named tool.<name> (server), google.gmail.<operation> (each Gmail API
// call, a child of the tool span) and driver.<step> (driver).
//
// The stdout exporters write to stderr, since stdout is owned by the console report
// or by the stdio transport.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "search_emails", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
