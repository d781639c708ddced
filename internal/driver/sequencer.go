package driver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gmailmcp/internal/credentials"
	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/logging"
)

// Tool names called by the sequencer.
const (
	ToolListEmailLabels = "list_email_labels"
	ToolSearchEmails    = "search_emails"
	ToolSendEmail       = "send_email"
)

// Step names used in results, logs and metrics.
const (
	StepListTools  = "list_tools"
	StepListLabels = "list_labels"
	StepSearch     = "search_emails"
	StepSend       = "send_email"
)

// Plan holds the configurable arguments of the interaction steps.
type Plan struct {
	Query      string
	MaxResults int

	To       []string
	Subject  string
	Body     string
	MimeType string
}

// DefaultPlan returns the arguments used when nothing is configured.
func DefaultPlan() Plan {
	return Plan{
		Query:      "is:unread",
		MaxResults: 5,
		To:         []string{"test@example.com"},
		Subject:    "Test email from MCP with user authentication",
		Body:       "This email was sent using the Gmail MCP server with stateless authentication.",
		MimeType:   "text/plain",
	}
}

// withDefaults fills empty fields from DefaultPlan.
func (p Plan) withDefaults() Plan {
	def := DefaultPlan()
	if p.Query == "" {
		p.Query = def.Query
	}
	if p.MaxResults <= 0 {
		p.MaxResults = def.MaxResults
	}
	if len(p.To) == 0 {
		p.To = def.To
	}
	if p.Subject == "" {
		p.Subject = def.Subject
	}
	if p.Body == "" {
		p.Body = def.Body
	}
	if p.MimeType == "" {
		p.MimeType = def.MimeType
	}
	return p
}

// StepResult is the outcome of one interaction step.
type StepResult struct {
	Name string
	Tool string

	// Text is the first text content of the response, if any.
	Text string
	Err  error

	Duration time.Duration
}

// OK reports whether the step succeeded.
func (r StepResult) OK() bool {
	return r.Err == nil
}

// Status returns "success" or "error".
func (r StepResult) Status() string {
	if r.Err == nil {
		return instrumentation.StatusSuccess
	}
	return instrumentation.StatusError
}

// Report aggregates the results of one run.
type Report struct {
	RunID   string
	Results []StepResult
}

// Failed returns the results that carry an error.
func (r Report) Failed() []StepResult {
	var out []StepResult
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Step returns the result for the named step.
func (r Report) Step(name string) (StepResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return StepResult{}, false
}

// ToolError is returned for a tool result flagged as an error.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tool %s returned an error", e.Tool)
	}
	return e.Message
}

// Sequencer runs the fixed interaction sequence against a session.
type Sequencer struct {
	Session Session
	Bundle  credentials.Bundle
	Plan    Plan
	Console *Console
	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
	RunID   string
}

type toolStep struct {
	name    string
	tool    string
	section string
	marker  string
	action  string
	success string
	args    map[string]any
}

func (s *Sequencer) steps() []toolStep {
	plan := s.Plan.withDefaults()

	return []toolStep{
		{
			name:    StepListLabels,
			tool:    ToolListEmailLabels,
			marker:  MarkerLabels,
			section: "Listing Gmail labels...",
			action:  "listing labels",
			success: "Labels retrieved successfully:",
			args:    map[string]any{},
		},
		{
			name:    StepSearch,
			tool:    ToolSearchEmails,
			marker:  MarkerSearch,
			section: "Searching emails...",
			action:  "searching emails",
			success: "Email search completed:",
			args: map[string]any{
				"query":      plan.Query,
				"maxResults": plan.MaxResults,
			},
		},
		{
			name:    StepSend,
			tool:    ToolSendEmail,
			marker:  MarkerSend,
			section: "Sending test email...",
			action:  "sending email",
			success: "Email sent successfully:",
			args: map[string]any{
				"to":       plan.To,
				"subject":  plan.Subject,
				"body":     plan.Body,
				"mimeType": plan.MimeType,
			},
		},
	}
}

// Run executes the steps in order. A failed tool listing aborts the run with
// its error. Tool call failures are recorded in the report and printed, and the
// sequence continues. Cancellation of ctx stops the sequence, in which case
// ctx.Err() is returned with the partial report.
func (s *Sequencer) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: s.RunID}

	res := s.listTools(ctx)
	report.Results = append(report.Results, res)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	if res.Err != nil {
		return report, fmt.Errorf("failed to list tools: %w", res.Err)
	}

	for _, step := range s.steps() {
		res := s.callTool(ctx, step)
		report.Results = append(report.Results, res)
		if err := ctx.Err(); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (s *Sequencer) listTools(ctx context.Context) StepResult {
	s.Console.Section(MarkerTools, "Listing available tools...")

	return s.observe(ctx, StepListTools, "", func(ctx context.Context) (string, error) {
		resp, err := s.Session.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			return "", err
		}

		s.Console.Textf("Tools found: %d", len(resp.Tools))
		names := make([]string, 0, len(resp.Tools))
		for _, tool := range resp.Tools {
			s.Console.Textf("  - %s: %s", tool.Name, tool.Description)
			names = append(names, tool.Name)
		}
		return strings.Join(names, ","), nil
	})
}

func (s *Sequencer) callTool(ctx context.Context, step toolStep) StepResult {
	s.Console.Section(step.marker, step.section)

	return s.observe(ctx, step.name, step.tool, func(ctx context.Context) (string, error) {
		req := mcp.CallToolRequest{}
		req.Params.Name = step.tool
		req.Params.Arguments = credentials.Attach(step.args, s.Bundle)

		result, err := s.Session.CallTool(ctx, req)
		if err == nil && result != nil && result.IsError {
			err = &ToolError{Tool: step.tool, Message: firstText(result)}
		}
		if err != nil {
			if ctx.Err() == nil {
				s.Console.Failure(fmt.Sprintf("Error %s: %v", step.action, err))
			}
			return "", err
		}

		s.Console.Success(step.success)
		text := firstText(result)
		if text != "" {
			s.Console.Text(text)
		}
		return text, nil
	})
}

// observe times fn and records a span, a metric point and a debug log line for it.
func (s *Sequencer) observe(ctx context.Context, name, tool string, fn func(context.Context) (string, error)) StepResult {
	spanCtx, span := instrumentation.StartDriverStepSpan(ctx, name, s.RunID, tool)

	start := time.Now()
	text, err := fn(spanCtx)
	res := StepResult{
		Name:     name,
		Tool:     tool,
		Text:     text,
		Err:      err,
		Duration: time.Since(start),
	}

	instrumentation.EndSpan(span, err)
	s.Metrics.RecordDriverStep(ctx, name, res.Status(), res.Duration)

	s.logger().Debug("step finished",
		logging.RunID(s.RunID),
		logging.Step(name),
		logging.Tool(tool),
		logging.Status(res.Status()),
		logging.Duration(res.Duration),
		logging.TraceID(instrumentation.TraceID(spanCtx)),
		logging.Err(err))

	return res
}

func (s *Sequencer) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// firstText returns the text of the first content item when it is text.
func firstText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	if text, ok := mcp.AsTextContent(result.Content[0]); ok {
		return text.Text
	}
	return ""
}
