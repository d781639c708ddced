// Package google provides OAuth2 configuration and token sources for the Gmail API.
//
// Two token origins exist:
//   - per-request user credentials, converted from a credentials.Bundle
//   - the server's own credentials file (GMAIL_CREDENTIALS_PATH, default
//     ~/.gmail-mcp/credentials.json), used when a request carries none
//
// When Google OAuth client credentials are configured (GOOGLE_CLIENT_ID and
// GOOGLE_CLIENT_SECRET), token sources refresh expired access tokens with the
// refresh token. Without them the access token is used as-is.
package google
