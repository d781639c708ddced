// Package gmail_tools provides the Gmail MCP tools served by "gmailmcp serve".
//
// Tools:
//   - list_email_labels: list system and user labels
//   - create_label, update_label, delete_label: manage user labels
//   - get_or_create_label: find a label by name, creating it when missing
//   - search_emails: search with Gmail query syntax
//   - read_email: read a message with its plain text body
//   - modify_email, delete_email: change the labels of a message or delete it
//   - batch_modify_emails, batch_delete_emails: the same for many messages, in chunks
//   - send_email, draft_email: compose plain text, HTML or multipart messages
//   - download_attachment: save an attachment to disk
//
// Every tool accepts the caller's OAuth credentials in the reserved
// "_userCredentials" argument when the server runs with USE_USER_CREDENTIALS=true.
package gmail_tools
