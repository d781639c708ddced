package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/teemow/gmailmcp/internal/credentials"
)

// ErrNoServerCredentials is returned when the server has no credentials file to fall back to.
var ErrNoServerCredentials = errors.New("no server credentials configured")

// TokenProvider provides the server's own OAuth token, used when a request
// carries no user credentials.
type TokenProvider interface {
	// Token returns the current token.
	Token(ctx context.Context) (*oauth2.Token, error)

	// Available reports whether a token can be provided at all.
	Available() bool
}

// DefaultCredentialsPath returns GMAIL_CREDENTIALS_PATH or ~/.gmail-mcp/credentials.json.
func DefaultCredentialsPath() string {
	if p := os.Getenv("GMAIL_CREDENTIALS_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gmail-mcp", "credentials.json")
}

// FileTokenProvider reads the token from a credentials file in the bundle format
// (access_token, refresh_token, scope, token_type, expiry_date).
type FileTokenProvider struct {
	path  string
	creds ClientCredentials
}

// NewFileTokenProvider creates a file-based token provider. creds enable refresh.
func NewFileTokenProvider(path string, creds ClientCredentials) *FileTokenProvider {
	return &FileTokenProvider{path: path, creds: creds}
}

// Path returns the credentials file path.
func (p *FileTokenProvider) Path() string {
	return p.path
}

// Available reports whether the credentials file exists.
func (p *FileTokenProvider) Available() bool {
	if p == nil || p.path == "" {
		return false
	}
	_, err := os.Stat(p.path)
	return err == nil
}

// Token reads the credentials file and returns a token, refreshed when possible.
func (p *FileTokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	if !p.Available() {
		return nil, ErrNoServerCredentials
	}

	bundle, err := credentials.LoadFile(p.path)
	if err != nil {
		return nil, err
	}
	if bundle.AccessToken == "" && bundle.RefreshToken == "" {
		return nil, fmt.Errorf("credentials file %s contains no tokens", p.path)
	}

	tok, err := TokenSource(ctx, p.creds, bundle.Token()).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token from file: %w", err)
	}
	return tok, nil
}
