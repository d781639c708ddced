// Package config loads the optional TOML run configuration of "gmailmcp run".
//
// Example file:
//
//	[credentials]
//	file = "~/.gmail-mcp/user.json"   # or inline fields below
//	access_token = "ya29..."
//	refresh_token = "1//..."
//	scope = "https://www.googleapis.com/auth/gmail.modify"
//	token_type = "Bearer"
//	expiry_date = 1767225600000
//
//	[server]
//	command = "/usr/local/bin/gmailmcp"
//	args = ["serve"]
//	env = { DEBUG_USER_AUTH = "false" }
//
//	[search]
//	query = "is:unread"
//	max_results = 5
//
//	[email]
//	to = ["test@example.com"]
//	subject = "Test Email from Go Client"
//	body = "This is a test email sent from the Go MCP client example."
//	mime_type = "text/plain"
//
// Values set here override the built-in defaults and are themselves overridden
// by environment variables and command line flags.
package config
