package google

import (
	gmail "google.golang.org/api/gmail/v1"
)

// DefaultOAuthScopes are the Gmail scopes the MCP tools need.
//   - full mailbox: delete_email and batch_delete_emails delete permanently
//   - modify: read, search, label, draft and attachments
//   - send: send_email
//   - labels: label management
var DefaultOAuthScopes = []string{
	gmail.MailGoogleComScope,
	gmail.GmailModifyScope,
	gmail.GmailSendScope,
	gmail.GmailLabelsScope,
}
