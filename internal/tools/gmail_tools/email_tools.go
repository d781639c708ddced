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

func emailTools(sc *server.ServerContext) []mcpserver.ServerTool {
	searchTool := mcp.NewTool(ToolSearchEmails,
		mcp.WithDescription("Searches for emails using Gmail search syntax"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query (e.g., 'from:example@gmail.com', 'is:unread')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
		withUserCredentials(),
	)

	readTool := mcp.NewTool(ToolReadEmail,
		mcp.WithDescription("Retrieves the content of a specific email"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("ID of the email message to retrieve"),
		),
		withUserCredentials(),
	)

	modifyTool := mcp.NewTool(ToolModifyEmail,
		mcp.WithDescription("Modifies email labels (move to different folders)"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("ID of the email message to modify"),
		),
		mcp.WithArray("labelIds",
			mcp.Description("List of label IDs to apply"),
			mcp.WithStringItems(),
		),
		mcp.WithArray("addLabelIds",
			mcp.Description("List of label IDs to add to the message"),
			mcp.WithStringItems(),
		),
		mcp.WithArray("removeLabelIds",
			mcp.Description("List of label IDs to remove from the message"),
			mcp.WithStringItems(),
		),
		withUserCredentials(),
	)

	deleteTool := mcp.NewTool(ToolDeleteEmail,
		mcp.WithDescription("Permanently deletes an email"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("ID of the email message to delete"),
		),
		withUserCredentials(),
	)

	sendTool := mcp.NewTool(ToolSendEmail, composeOptions("Sends a new email")...)
	draftTool := mcp.NewTool(ToolDraftEmail, composeOptions("Draft a new email")...)

	return []mcpserver.ServerTool{
		{
			Tool:    searchTool,
			Handler: common.GmailTool(ToolSearchEmails, instrumentation.OperationSearch, sc, handleSearchEmails),
		},
		{
			Tool:    readTool,
			Handler: common.GmailTool(ToolReadEmail, instrumentation.OperationGet, sc, handleReadEmail),
		},
		{
			Tool:    modifyTool,
			Handler: common.GmailTool(ToolModifyEmail, instrumentation.OperationModify, sc, handleModifyEmail),
		},
		{
			Tool:    deleteTool,
			Handler: common.GmailTool(ToolDeleteEmail, instrumentation.OperationDelete, sc, handleDeleteEmail),
		},
		{
			Tool:    sendTool,
			Handler: common.GmailTool(ToolSendEmail, instrumentation.OperationSend, sc, handleSendEmail),
		},
		{
			Tool:    draftTool,
			Handler: common.GmailTool(ToolDraftEmail, instrumentation.OperationCreate, sc, handleDraftEmail),
		},
	}
}

// composeOptions is the schema shared by send_email and draft_email.
func composeOptions(description string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithArray("to",
			mcp.Required(),
			mcp.Description("List of recipient email addresses"),
			mcp.WithStringItems(),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body content (used for text/plain or when htmlBody not provided)"),
		),
		mcp.WithString("htmlBody",
			mcp.Description("HTML version of the email body"),
		),
		mcp.WithString("mimeType",
			mcp.Description("Email content type (default: text/plain)"),
			mcp.Enum(gmail.MimeTypePlain, gmail.MimeTypeHTML, gmail.MimeTypeAlternative),
		),
		mcp.WithArray("cc",
			mcp.Description("List of CC recipients"),
			mcp.WithStringItems(),
		),
		mcp.WithArray("bcc",
			mcp.Description("List of BCC recipients"),
			mcp.WithStringItems(),
		),
		mcp.WithString("threadId",
			mcp.Description("Thread ID to reply to"),
		),
		mcp.WithString("inReplyTo",
			mcp.Description("Message ID being replied to"),
		),
		withUserCredentials(),
	}
}

func handleSearchEmails(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error) {
	query, err := common.RequiredStringArg(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxResults := common.IntArg(args, "maxResults", gmail.DefaultMaxResults)

	results, err := client.SearchMessages(ctx, query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search emails: %v", err)), nil
	}
	return mcp.NewToolResultText(gmail.FormatSearchResults(results)), nil
}

func handleReadEmail(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error) {
	messageID, err := common.RequiredStringArg(args, "messageId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	email, err := client.GetMessage(ctx, messageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read email: %v", err)), nil
	}
	return mcp.NewToolResultText(gmail.FormatEmail(email)), nil
}

func handleModifyEmail(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error) {
	messageID, err := common.RequiredStringArg(args, "messageId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	add, remove, err := labelChanges(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.ModifyMessage(ctx, messageID, add, remove); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to modify email: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Email %s labels updated successfully", messageID)), nil
}

func handleDeleteEmail(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error) {
	messageID, err := common.RequiredStringArg(args, "messageId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteMessage(ctx, messageID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete email: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Email %s deleted successfully", messageID)), nil
}

// labelChanges reads addLabelIds and removeLabelIds. labelIds is accepted as
// an older name for addLabelIds; addLabelIds wins when both are given.
func labelChanges(args map[string]any) (add, remove []string, err error) {
	add, err = common.StringListArg(args, "labelIds")
	if err != nil {
		return nil, nil, err
	}
	explicit, err := common.StringListArg(args, "addLabelIds")
	if err != nil {
		return nil, nil, err
	}
	if explicit != nil {
		add = explicit
	}
	remove, err = common.StringListArg(args, "removeLabelIds")
	if err != nil {
		return nil, nil, err
	}
	return add, remove, nil
}

func handleSendEmail(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error) {
	msg, err := parseEmailMessage(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	common.RecordRecipients(ctx, msg.To, msg.Cc, msg.Bcc)

	id, err := client.SendEmail(ctx, msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send email: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Email sent successfully with ID: %s", id)), nil
}

func handleDraftEmail(ctx context.Context, client *gmail.Client, args map[string]any) (*mcp.CallToolResult, error) {
	msg, err := parseEmailMessage(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	common.RecordRecipients(ctx, msg.To, msg.Cc, msg.Bcc)

	id, err := client.CreateDraft(ctx, msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create draft: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Email draft created successfully with ID: %s", id)), nil
}

func parseEmailMessage(args map[string]any) (*gmail.EmailMessage, error) {
	to, err := common.StringListArg(args, "to")
	if err != nil {
		return nil, err
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("'to' field is required")
	}
	cc, err := common.StringListArg(args, "cc")
	if err != nil {
		return nil, err
	}
	bcc, err := common.StringListArg(args, "bcc")
	if err != nil {
		return nil, err
	}

	msg := &gmail.EmailMessage{
		To:        to,
		Cc:        cc,
		Bcc:       bcc,
		Subject:   common.StringArg(args, "subject"),
		Body:      common.StringArg(args, "body"),
		HTMLBody:  common.StringArg(args, "htmlBody"),
		MimeType:  common.StringArg(args, "mimeType"),
		ThreadID:  common.StringArg(args, "threadId"),
		InReplyTo: common.StringArg(args, "inReplyTo"),
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}
