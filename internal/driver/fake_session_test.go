package driver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gmailmcp/internal/credentials"
)

type fakeResponse struct {
	result *mcp.CallToolResult
	err    error

	// hook runs before the response is returned.
	hook func(ctx context.Context) error
}

type fakeSession struct {
	mu sync.Mutex

	tools        []mcp.Tool
	listToolsErr error
	responses    map[string]fakeResponse

	calls  []mcp.CallToolRequest
	closed int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		tools: []mcp.Tool{
			{Name: ToolListEmailLabels, Description: "List all available Gmail labels"},
			{Name: ToolSearchEmails, Description: "Search for emails using Gmail search syntax"},
			{Name: ToolSendEmail, Description: "Send a new email"},
		},
		responses: map[string]fakeResponse{
			ToolListEmailLabels: {result: mcp.NewToolResultText("Found 1 labels (1 system, 0 user):")},
			ToolSearchEmails:    {result: mcp.NewToolResultText("No messages found.")},
			ToolSendEmail:       {result: mcp.NewToolResultText("Email sent successfully with ID: sent-1")},
		},
	}
}

func (f *fakeSession) ListTools(ctx context.Context, _ mcp.ListToolsRequest) (*mcp.ListToolsResult, error) {
	if f.listToolsErr != nil {
		return nil, f.listToolsErr
	}
	return &mcp.ListToolsResult{Tools: f.tools}, nil
}

func (f *fakeSession) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	resp, ok := f.responses[req.Params.Name]
	f.mu.Unlock()

	if !ok {
		return nil, errors.New("unknown tool " + req.Params.Name)
	}
	if resp.hook != nil {
		if err := resp.hook(ctx); err != nil {
			return nil, err
		}
	}
	return resp.result, resp.err
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeSession) calledTools() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		names = append(names, c.Params.Name)
	}
	return names
}

func (f *fakeSession) args(tool string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.Params.Name == tool {
			args, _ := c.Params.Arguments.(map[string]any)
			return args
		}
	}
	return nil
}

func (f *fakeSession) bootstrapper() Bootstrapper {
	return func(context.Context) (Session, func() error, error) {
		return f, f.Close, nil
	}
}

func liveBundle() credentials.Bundle {
	return credentials.Bundle{
		AccessToken:  "ya29.real-token",
		RefreshToken: "1//real-refresh",
		Scope:        "https://www.googleapis.com/auth/gmail.modify",
		TokenType:    "Bearer",
		ExpiryDate:   time.Now().Add(time.Hour).UnixMilli(),
	}
}
