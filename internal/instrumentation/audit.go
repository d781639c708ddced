package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/gmailmcp/internal/logging"
)

// ToolInvocation is the audit record of one MCP tool call.
type ToolInvocation struct {
	Tool      string
	Service   string
	Operation string

	// CredentialSource is CredentialSourceUser or CredentialSourceServer.
	CredentialSource string

	// Recipients of a sent or drafted message.
	Recipients []string

	TraceID  string
	Started  time.Time
	Duration time.Duration
	Err      error
}

// NewToolInvocation starts the record. ctx should carry the tool span.
func NewToolInvocation(ctx context.Context, tool, service, operation string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		Service:   service,
		Operation: operation,
		TraceID:   TraceID(ctx),
		Started:   time.Now(),
	}
}

// Finish stops the clock. err is the Go error or the error result of the call.
func (ti *ToolInvocation) Finish(err error) {
	ti.Duration = time.Since(ti.Started)
	ti.Err = err
}

// Status returns StatusSuccess or StatusError.
func (ti *ToolInvocation) Status() string {
	return statusOf(ti.Err)
}

// AuditLogger writes one record per tool call: "tool_executed" at info level
// or "tool_failed" at warn level.
type AuditLogger struct {
	logger *slog.Logger
	cfg    AuditConfig
}

func NewAuditLogger(logger *slog.Logger, cfg AuditConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger, cfg: cfg}
}

// Log writes the record of ti. A nil or disabled logger does nothing.
func (al *AuditLogger) Log(ti *ToolInvocation) {
	if al == nil || !al.cfg.Enabled {
		return
	}

	attrs := []slog.Attr{
		logging.Tool(ti.Tool),
		slog.String("service", ti.Service),
		slog.String("operation", ti.Operation),
		logging.Duration(ti.Duration),
		logging.TraceID(ti.TraceID),
		logging.Recipients(ti.Recipients, al.cfg.IncludeRecipients),
		logging.Err(ti.Err),
	}
	if ti.CredentialSource != "" {
		attrs = append(attrs, slog.String("credential_source", ti.CredentialSource))
	}

	level, msg := slog.LevelInfo, "tool_executed"
	if ti.Err != nil {
		level, msg = slog.LevelWarn, "tool_failed"
	}
	al.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
