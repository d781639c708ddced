package google

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
)

func TestClientCredentialsFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_STDIO_CLIENT_ID", "")
	t.Setenv("GOOGLE_STDIO_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_CLIENT_ID", "generic-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "generic-secret")

	creds := ClientCredentialsFromEnv()
	assert.Equal(t, "generic-id", creds.ClientID)
	assert.True(t, creds.Configured())

	t.Setenv("GOOGLE_STDIO_CLIENT_ID", "stdio-id")
	assert.Equal(t, "stdio-id", ClientCredentialsFromEnv().ClientID)
}

func TestOAuthConfig(t *testing.T) {
	conf := OAuthConfig(ClientCredentials{ClientID: "id", ClientSecret: "secret"})
	assert.Equal(t, "id", conf.ClientID)
	assert.Contains(t, conf.Scopes, gmail.GmailModifyScope)
	assert.Contains(t, conf.Endpoint.TokenURL, "google")
}

func TestTokenSource_StaticWithoutClientCredentials(t *testing.T) {
	tok := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: time.Now().Add(-time.Hour)}

	got, err := TokenSource(context.Background(), ClientCredentials{}, tok).Token()
	require.NoError(t, err)
	assert.Equal(t, "at", got.AccessToken, "static sources hand out the token even when expired")
}

func TestHTTPClient_UsesOAuthTransport(t *testing.T) {
	client := HTTPClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "at"}))
	transport, ok := client.Transport.(*oauth2.Transport)
	require.True(t, ok)
	assert.NotNil(t, transport.Base)
}

func TestFileTokenProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")

	provider := NewFileTokenProvider(path, ClientCredentials{})
	assert.False(t, provider.Available())
	_, err := provider.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoServerCredentials)

	expiry := time.Now().Add(time.Hour).UnixMilli()
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token":"server-at","refresh_token":"rt","token_type":"Bearer","expiry_date":`+
		itoa(expiry)+`}`), 0600))

	assert.True(t, provider.Available())
	tok, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "server-at", tok.AccessToken)
	assert.Equal(t, path, provider.Path())
}

func TestFileTokenProvider_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0600))

	_, err := NewFileTokenProvider(path, ClientCredentials{}).Token(context.Background())
	assert.Error(t, err)
}

func TestDefaultCredentialsPath(t *testing.T) {
	t.Setenv("GMAIL_CREDENTIALS_PATH", "/etc/gmail/creds.json")
	assert.Equal(t, "/etc/gmail/creds.json", DefaultCredentialsPath())

	t.Setenv("GMAIL_CREDENTIALS_PATH", "")
	assert.Equal(t, "credentials.json", filepath.Base(DefaultCredentialsPath()))
}

func TestFileTokenProvider_Nil(t *testing.T) {
	var p *FileTokenProvider
	assert.False(t, p.Available())
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
