package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/server"
	"github.com/teemow/gmailmcp/internal/tools/batch"
	"github.com/teemow/gmailmcp/internal/tools/common"
)

func batchTools(sc *server.ServerContext) []mcpserver.ServerTool {
	batchModifyTool := mcp.NewTool(ToolBatchModifyEmails,
		mcp.WithDescription("Modifies labels for multiple emails in batches"),
		mcp.WithArray("messageIds",
			mcp.Required(),
			mcp.Description("List of message IDs to modify"),
			mcp.WithStringItems(),
		),
		mcp.WithArray("addLabelIds",
			mcp.Description("List of label IDs to add to all messages"),
			mcp.WithStringItems(),
		),
		mcp.WithArray("removeLabelIds",
			mcp.Description("List of label IDs to remove from all messages"),
			mcp.WithStringItems(),
		),
		batchSizeOption(),
		withUserCredentials(),
	)

	batchDeleteTool := mcp.NewTool(ToolBatchDeleteEmails,
		mcp.WithDescription("Permanently deletes multiple emails in batches"),
		mcp.WithArray("messageIds",
			mcp.Required(),
			mcp.Description("List of message IDs to delete"),
			mcp.WithStringItems(),
		),
		batchSizeOption(),
		withUserCredentials(),
	)

	return []mcpserver.ServerTool{
		{
			Tool:    batchModifyTool,
			Handler: common.GmailTool(ToolBatchModifyEmails, instrumentation.OperationModify, sc, handleBatchModifyEmails),
		},
		{
			Tool:    batchDeleteTool,
			Handler: common.GmailTool(ToolBatchDeleteEmails, instrumentation.OperationDelete, sc, handleBatchDeleteEmails),
		},
	}
}

func batchSizeOption() mcp.ToolOption {
	return mcp.WithNumber("batchSize",
		mcp.Description(fmt.Sprintf("Number of messages to process in each batch (default: %d)", batch.DefaultSize)),
	)
}

func messageIDs(args map[string]any) ([]string, error) {
	ids, err := common.StringListArg(args, "messageIds")
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("'messageIds' field is required")
	}
	return ids, nil
}

func handleBatchModifyEmails(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error) {
	ids, err := messageIDs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	add, err := common.StringListArg(args, "addLabelIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	remove, err := common.StringListArg(args, "removeLabelIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(add) == 0 && len(remove) == 0 {
		return mcp.NewToolResultError("'addLabelIds' or 'removeLabelIds' is required"), nil
	}

	size := int(common.IntArg(args, "batchSize", batch.DefaultSize))
	results := batch.ProcessBatch(ctx, ids, size, func(ctx context.Context, id string) error {
		return client.ModifyMessage(ctx, id, add, remove)
	})
	return mcp.NewToolResultText(batch.FormatResults(batch.ModifyWording, results)), nil
}

func handleBatchDeleteEmails(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error) {
	ids, err := messageIDs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	size := int(common.IntArg(args, "batchSize", batch.DefaultSize))
	results := batch.ProcessBatch(ctx, ids, size, client.DeleteMessage)
	return mcp.NewToolResultText(batch.FormatResults(batch.DeleteWording, results)), nil
}
