package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailmcp/internal/credentials"
	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/server"
)

// GmailHandler is a tool handler that receives a Gmail client built for the
// request's credentials and the arguments with all authentication fields removed.
type GmailHandler func(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error)

// WithGmailClient resolves the credentials of each request, builds a Gmail client
// and calls h. Credential problems are returned as tool errors.
func WithGmailClient(sc *server.ServerContext, h GmailHandler) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		res, err := sc.ResolveToken(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(CredentialErrorMessage(err)), nil
		}
		instrumentation.MarkCredentialSource(ctx, res.Source)
		if ti := invocationFromContext(ctx); ti != nil {
			ti.CredentialSource = res.Source
		}

		client, err := sc.GmailClientForToken(ctx, res.Token)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create Gmail client: %v", err)), nil
		}

		return h(ctx, client, credentials.StripAuthFields(args))
	}
}

// GmailTool wires a Gmail handler with credential resolution and instrumentation.
func GmailTool(toolName, operation string, sc *server.ServerContext, h GmailHandler) mcpserver.ToolHandlerFunc {
	return InstrumentedToolHandlerWithService(toolName, instrumentation.ServiceGmail, operation, sc, WithGmailClient(sc, h))
}

// CredentialErrorMessage renders a credential resolution failure for MCP clients.
func CredentialErrorMessage(err error) string {
	switch {
	case errors.Is(err, credentials.ErrCredentialsExpired):
		return "Access token has expired. Please refresh your credentials."
	case errors.Is(err, credentials.ErrMissingAccessToken):
		return "Missing access token in user credentials."
	case errors.Is(err, credentials.ErrCredentialsNotFound):
		return "User credentials are required but not found in request. Please include credentials in the '_userCredentials' field."
	case errors.Is(err, server.ErrNoCredentials):
		return "Gmail credentials are required. Include them in the '_userCredentials' field or configure GMAIL_CREDENTIALS_PATH on the server."
	default:
		return fmt.Sprintf("Authentication error: %v", err)
	}
}
