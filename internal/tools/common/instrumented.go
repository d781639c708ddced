package common

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/server"
)

type invocationKey struct{}

// invocationFromContext returns the invocation record of the running tool call, if any.
func invocationFromContext(ctx context.Context) *instrumentation.ToolInvocation {
	ti, _ := ctx.Value(invocationKey{}).(*instrumentation.ToolInvocation)
	return ti
}

// InstrumentedToolHandlerWithService wraps a tool handler with a tool span, metrics
// and audit logging. It records both:
//   - MCP tool invocation metrics (mcp_tool_invocations_total, mcp_tool_duration_seconds)
//   - Google API operation metrics (google_api_operations_total, google_api_operation_duration_seconds)
//
// Usage:
//
//	s.AddTool(tool, common.InstrumentedToolHandlerWithService("list_email_labels", "gmail", "list", sc, handler))
func InstrumentedToolHandlerWithService(
	toolName string,
	serviceName string,
	operation string,
	sc *server.ServerContext,
	handler mcpserver.ToolHandlerFunc,
) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		invocation := instrumentation.NewToolInvocation(ctx, toolName, serviceName, operation)
		ctx = context.WithValue(ctx, invocationKey{}, invocation)

		result, err := handler(ctx, request)

		failure := err
		if failure == nil && result != nil && result.IsError {
			failure = resultError(result)
		}
		instrumentation.EndSpan(span, failure)
		invocation.Finish(failure)

		metrics := sc.Metrics()
		metrics.RecordToolInvocation(ctx, toolName, invocation.Status(), invocation.Duration)
		metrics.RecordGoogleAPIOperation(ctx, serviceName, operation, invocation.Status(), invocation.Duration)

		sc.AuditLogger().Log(invocation)

		return result, err
	}
}

// RecordRecipients adds the recipients of a sent or drafted message to the
// audit record of the running tool call.
func RecordRecipients(ctx context.Context, lists ...[]string) {
	ti := invocationFromContext(ctx)
	if ti == nil {
		return
	}
	for _, l := range lists {
		ti.Recipients = append(ti.Recipients, l...)
	}
}

type toolError string

func (e toolError) Error() string { return string(e) }

// resultError turns the text of an error result into an error for spans and audit logs.
func resultError(result *mcp.CallToolResult) error {
	for _, c := range result.Content {
		switch tc := c.(type) {
		case mcp.TextContent:
			return toolError(tc.Text)
		case *mcp.TextContent:
			return toolError(tc.Text)
		}
	}
	return toolError("tool returned an error result")
}
