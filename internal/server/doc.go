// Package server provides the state shared by the Gmail MCP tool handlers.
//
// ServerContext carries the mode flags of the stdio server (per-request user
// credentials, debug logging), resolves the OAuth token for each tool call and
// builds a fresh Gmail client from it. Token resolution order:
//  1. the request's credential bundle, when USE_USER_CREDENTIALS is on
//  2. the server credentials file (GMAIL_CREDENTIALS_PATH)
//
// MetricsServer exposes the Prometheus metrics of the instrumentation provider on
// a dedicated port, since the stdio transport has no HTTP listener.
package server
