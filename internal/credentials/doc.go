// Package credentials models the OAuth credential bundle that travels inline with
// every tool call when the Gmail MCP server runs in per-request credential mode.
//
// The driver side builds a Bundle, validates it once before any process is started,
// and attaches it unchanged under the reserved "_userCredentials" argument key.
// The server side extracts the same Bundle from the tool arguments, strips the
// authentication fields before the tool logic sees them, and converts it into an
// oauth2.Token for the Gmail API client.
//
// Bundles are encoded with snake_case JSON keys (access_token, refresh_token, scope,
// token_type, expiry_date). Decoding additionally accepts the camelCase spelling
// (accessToken, refreshToken, ...) so that clients written against either schema
// interoperate.
//
// Tokens are never logged. Use logging.SanitizeToken when a token has to appear in
// diagnostics.
package credentials
