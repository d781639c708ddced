package google

import (
	"context"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ClientCredentials are the OAuth client id and secret used to refresh tokens.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

// Configured reports whether both id and secret are set.
func (c ClientCredentials) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// ClientCredentialsFromEnv reads GOOGLE_STDIO_CLIENT_ID / GOOGLE_STDIO_CLIENT_SECRET,
// falling back to GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET.
func ClientCredentialsFromEnv() ClientCredentials {
	c := ClientCredentials{
		ClientID:     os.Getenv("GOOGLE_STDIO_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_STDIO_CLIENT_SECRET"),
	}
	if c.ClientID == "" {
		c.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		c.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	return c
}

// OAuthConfig returns the OAuth2 configuration for the Gmail API.
func OAuthConfig(creds ClientCredentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       DefaultOAuthScopes,
	}
}

// TokenSource returns a token source for tok. With configured client credentials
// the source refreshes the token when it expires; otherwise tok is returned unchanged.
func TokenSource(ctx context.Context, creds ClientCredentials, tok *oauth2.Token) oauth2.TokenSource {
	if !creds.Configured() || tok.RefreshToken == "" {
		return oauth2.StaticTokenSource(tok)
	}
	return OAuthConfig(creds).TokenSource(ctx, tok)
}

// HTTPClient returns an HTTP client that authenticates with ts.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func HTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)

	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}

	return client
}
