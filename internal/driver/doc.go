// Package driver implements the interaction driver behind "gmailmcp run".
//
// A run validates the credential bundle, launches the Gmail MCP server as a
// subprocess speaking MCP over stdio, and performs a fixed sequence of calls:
//
//  1. tools/list
//  2. list_email_labels
//  3. search_emails (query "is:unread", maxResults 5 by default)
//  4. send_email
//
// Every tool call carries the bundle under the "_userCredentials" argument.
// A failing step is printed and recorded in the Report; the sequence continues.
// Cancelling the run context (SIGINT/SIGTERM) stops the sequence and the
// Runner prints a goodbye line instead of an error.
package driver
