// Package common provides the plumbing shared by the MCP tool implementations:
// instrumented handler wrappers, per-request Gmail client resolution and
// argument parsing helpers.
package common
