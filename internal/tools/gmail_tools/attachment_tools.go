package gmail_tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/server"
	"github.com/teemow/gmailmcp/internal/tools/common"
)

func attachmentTools(sc *server.ServerContext) []mcpserver.ServerTool {
	downloadTool := mcp.NewTool(ToolDownloadAttachment,
		mcp.WithDescription("Downloads an email attachment to a specified location"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("ID of the email message containing the attachment"),
		),
		mcp.WithString("attachmentId",
			mcp.Required(),
			mcp.Description("ID of the attachment to download"),
		),
		mcp.WithString("filename",
			mcp.Description("Filename to save the attachment as (if not provided, uses original filename)"),
		),
		mcp.WithString("savePath",
			mcp.Description("Directory path to save the attachment (defaults to current directory)"),
		),
		withUserCredentials(),
	)

	return []mcpserver.ServerTool{
		{
			Tool:    downloadTool,
			Handler: common.GmailTool(ToolDownloadAttachment, instrumentation.OperationGet, sc, handleDownloadAttachment),
		},
	}
}

func handleDownloadAttachment(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error) {
	messageID, err := common.RequiredStringArg(args, "messageId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	attachmentID, err := common.RequiredStringArg(args, "attachmentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := client.GetAttachment(ctx, messageID, attachmentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to download attachment: %v", err)), nil
	}

	filename := common.StringArg(args, "filename")
	if filename == "" {
		filename, err = client.AttachmentFilename(ctx, messageID, attachmentID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to download attachment: %v", err)), nil
		}
	}
	filename, err = safeFilename(filename)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to download attachment: %v", err)), nil
	}

	dir := common.StringArg(args, "savePath")
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to download attachment: %v", err)), nil
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to download attachment: %v", err)), nil
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to download attachment: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Attachment downloaded successfully:\nFile: %s\nSize: %d bytes\nSaved to: %s",
		filename, len(data), path)), nil
}

// safeFilename keeps only the last path element so a filename cannot leave savePath.
func safeFilename(name string) (string, error) {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename %q", name)
	}
	return base, nil
}
