// Package cmd implements the command-line interface for gmailmcp.
//
// This package provides the following commands:
//   - run: Launch the Gmail MCP server and exercise its tools with user credentials
//   - serve: Start the Gmail MCP server on stdio
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The run command is the default command when no subcommand is specified.
package cmd
