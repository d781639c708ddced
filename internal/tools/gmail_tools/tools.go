package gmail_tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailmcp/internal/credentials"
	"github.com/teemow/gmailmcp/internal/server"
)

// Tool names.
const (
	ToolListEmailLabels    = "list_email_labels"
	ToolCreateLabel        = "create_label"
	ToolUpdateLabel        = "update_label"
	ToolDeleteLabel        = "delete_label"
	ToolGetOrCreateLabel   = "get_or_create_label"
	ToolSearchEmails       = "search_emails"
	ToolReadEmail          = "read_email"
	ToolModifyEmail        = "modify_email"
	ToolDeleteEmail        = "delete_email"
	ToolSendEmail          = "send_email"
	ToolDraftEmail         = "draft_email"
	ToolBatchModifyEmails  = "batch_modify_emails"
	ToolBatchDeleteEmails  = "batch_delete_emails"
	ToolDownloadAttachment = "download_attachment"
)

// Tools returns the Gmail tools with their handlers bound to sc.
func Tools(sc *server.ServerContext) []mcpserver.ServerTool {
	var tools []mcpserver.ServerTool
	tools = append(tools, labelTools(sc)...)
	tools = append(tools, emailTools(sc)...)
	tools = append(tools, batchTools(sc)...)
	tools = append(tools, attachmentTools(sc)...)
	return tools
}

// RegisterGmailTools registers all Gmail tools with the MCP server.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	s.AddTools(Tools(sc)...)
	return nil
}

// withUserCredentials documents the reserved credentials argument in a tool schema.
func withUserCredentials() mcp.ToolOption {
	return mcp.WithObject(credentials.ArgumentKey,
		mcp.Description("OAuth credentials of the calling user (access_token, refresh_token, scope, token_type, expiry_date). "+
			"Honoured when the server runs with USE_USER_CREDENTIALS=true."),
	)
}
