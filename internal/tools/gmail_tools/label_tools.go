package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/server"
	"github.com/teemow/gmailmcp/internal/tools/common"
)

func labelTools(sc *server.ServerContext) []mcpserver.ServerTool {
	listLabelsTool := mcp.NewTool(ToolListEmailLabels,
		mcp.WithDescription("Retrieves all available Gmail labels"),
		withUserCredentials(),
	)

	createLabelTool := mcp.NewTool(ToolCreateLabel,
		mcp.WithDescription("Creates a new Gmail label"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name for the new label"),
		),
		messageListVisibilityOption(),
		labelListVisibilityOption(),
		withUserCredentials(),
	)

	updateLabelTool := mcp.NewTool(ToolUpdateLabel,
		mcp.WithDescription("Updates an existing Gmail label"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the label to update"),
		),
		mcp.WithString("name",
			mcp.Description("New name for the label"),
		),
		messageListVisibilityOption(),
		labelListVisibilityOption(),
		withUserCredentials(),
	)

	deleteLabelTool := mcp.NewTool(ToolDeleteLabel,
		mcp.WithDescription("Deletes a Gmail label"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the label to delete"),
		),
		withUserCredentials(),
	)

	getOrCreateLabelTool := mcp.NewTool(ToolGetOrCreateLabel,
		mcp.WithDescription("Gets an existing label by name or creates it if it doesn't exist"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the label to get or create"),
		),
		messageListVisibilityOption(),
		labelListVisibilityOption(),
		withUserCredentials(),
	)

	return []mcpserver.ServerTool{
		{
			Tool:    listLabelsTool,
			Handler: common.GmailTool(ToolListEmailLabels, instrumentation.OperationList, sc, handleListLabels),
		},
		{
			Tool:    createLabelTool,
			Handler: common.GmailTool(ToolCreateLabel, instrumentation.OperationCreate, sc, handleCreateLabel),
		},
		{
			Tool:    updateLabelTool,
			Handler: common.GmailTool(ToolUpdateLabel, instrumentation.OperationUpdate, sc, handleUpdateLabel),
		},
		{
			Tool:    deleteLabelTool,
			Handler: common.GmailTool(ToolDeleteLabel, instrumentation.OperationDelete, sc, handleDeleteLabel),
		},
		{
			Tool:    getOrCreateLabelTool,
			Handler: common.GmailTool(ToolGetOrCreateLabel, instrumentation.OperationCreate, sc, handleGetOrCreateLabel),
		},
	}
}

func messageListVisibilityOption() mcp.ToolOption {
	return mcp.WithString("messageListVisibility",
		mcp.Description("Whether to show or hide the label in the message list"),
		mcp.Enum("show", "hide"),
	)
}

func labelListVisibilityOption() mcp.ToolOption {
	return mcp.WithString("labelListVisibility",
		mcp.Description("Visibility of the label in the label list"),
		mcp.Enum("labelShow", "labelShowIfUnread", "labelHide"),
	)
}

func handleListLabels(ctx context.Context, client *gmail.Client, _ map[string]any) (*mcp.CallToolResult, error) {
	labels, err := client.ListLabels(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}
	return mcp.NewToolResultText(gmail.FormatLabels(labels)), nil
}

func handleCreateLabel(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error) {
	name, err := common.RequiredStringArg(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	label, err := client.CreateLabel(ctx, name, gmail.CreateLabelOptions{
		MessageListVisibility: common.StringArg(args, "messageListVisibility"),
		LabelListVisibility:   common.StringArg(args, "labelListVisibility"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create label: %v", err)), nil
	}
	return mcp.NewToolResultText(gmail.FormatLabel("Label created successfully", label)), nil
}

func handleUpdateLabel(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error) {
	id, err := common.RequiredStringArg(args, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	label, err := client.UpdateLabel(ctx, id, gmail.UpdateLabelOptions{
		Name:                  common.StringArg(args, "name"),
		MessageListVisibility: common.StringArg(args, "messageListVisibility"),
		LabelListVisibility:   common.StringArg(args, "labelListVisibility"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update label: %v", err)), nil
	}
	return mcp.NewToolResultText(gmail.FormatLabel("Label updated successfully", label)), nil
}

func handleDeleteLabel(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error) {
	id, err := common.RequiredStringArg(args, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	label, err := client.DeleteLabel(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete label: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Label %q deleted successfully.", label.Name)), nil
}

func handleGetOrCreateLabel(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error) {
	name, err := common.RequiredStringArg(args, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	label, created, err := client.GetOrCreateLabel(ctx, name, gmail.CreateLabelOptions{
		MessageListVisibility: common.StringArg(args, "messageListVisibility"),
		LabelListVisibility:   common.StringArg(args, "labelListVisibility"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get or create label: %v", err)), nil
	}

	heading := "Successfully found existing label"
	if created {
		heading = "Successfully created new label"
	}
	return mcp.NewToolResultText(gmail.FormatLabel(heading, label)), nil
}
