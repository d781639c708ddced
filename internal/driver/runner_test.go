package driver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gmailmcp/internal/credentials"
)

func newTestRunner(bundle credentials.Bundle, bootstrap Bootstrapper) (*Runner, *bytes.Buffer) {
	var out bytes.Buffer
	return &Runner{
		Bundle:    bundle,
		Plan:      DefaultPlan(),
		Bootstrap: bootstrap,
		Console:   NewConsole(&out, nil),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		NewRunID:  func() string { return "run-1" },
	}, &out
}

func failingBootstrap(t *testing.T) Bootstrapper {
	return func(context.Context) (Session, func() error, error) {
		t.Fatal("bootstrap must not be called")
		return nil, nil, nil
	}
}

func TestRunner_MissingField(t *testing.T) {
	tests := []struct {
		field string
		clear func(*credentials.Bundle)
	}{
		{"access_token", func(b *credentials.Bundle) { b.AccessToken = "" }},
		{"refresh_token", func(b *credentials.Bundle) { b.RefreshToken = "" }},
		{"scope", func(b *credentials.Bundle) { b.Scope = "" }},
		{"token_type", func(b *credentials.Bundle) { b.TokenType = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			bundle := liveBundle()
			tt.clear(&bundle)

			r, out := newTestRunner(bundle, failingBootstrap(t))
			err := r.Run(context.Background())

			require.ErrorIs(t, err, ErrValidationFailed)
			var fieldErr *credentials.ValidationError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
			assert.Contains(t, out.String(), "❌ Error: Required field '"+tt.field+"' is missing from the credentials")
		})
	}
}

func TestRunner_PlaceholderToken(t *testing.T) {
	r, out := newTestRunner(credentials.Example(), failingBootstrap(t))

	err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.ErrorIs(t, err, credentials.ErrPlaceholderToken)
	assert.True(t, IsReported(err))

	text := out.String()
	assert.Contains(t, text, "You must replace the example credentials with real credentials")
	assert.Contains(t, text, "Instructions:")
	assert.Contains(t, text, "1. Configure OAuth 2.0")
	assert.NotContains(t, text, "Example completed")
}

func TestRunner_Success(t *testing.T) {
	session := newFakeSession()
	bundle := liveBundle()
	r, out := newTestRunner(bundle, session.bootstrapper())

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []string{ToolListEmailLabels, ToolSearchEmails, ToolSendEmail}, session.calledTools())
	assert.Equal(t, 1, session.closed)

	for _, tool := range session.calledTools() {
		attached, ok := session.args(tool)[credentials.ArgumentKey].(credentials.Bundle)
		require.True(t, ok, "tool %s carries the bundle", tool)
		assert.Equal(t, bundle, attached)
	}

	search := session.args(ToolSearchEmails)
	assert.Equal(t, "is:unread", search["query"])
	assert.Equal(t, 5, search["maxResults"])

	send := session.args(ToolSendEmail)
	assert.Equal(t, []string{"test@example.com"}, send["to"])
	assert.Equal(t, "text/plain", send["mimeType"])

	text := out.String()
	assert.Contains(t, text, "Tools found: 3")
	assert.Contains(t, text, "  - list_email_labels: List all available Gmail labels")
	assert.Contains(t, text, "Email sent successfully with ID: sent-1")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), "✅ Example completed"))
}

func TestRunner_SearchFailureDoesNotStopSend(t *testing.T) {
	session := newFakeSession()
	session.responses[ToolSearchEmails] = fakeResponse{err: errors.New("Invalid query")}
	r, out := newTestRunner(liveBundle(), session.bootstrapper())

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []string{ToolListEmailLabels, ToolSearchEmails, ToolSendEmail}, session.calledTools())
	text := out.String()
	assert.Contains(t, text, "Error searching emails: Invalid query")
	assert.Contains(t, text, "Email sent successfully:")
	assert.Contains(t, text, "✅ Example completed")
}

func TestRunner_ToolErrorResultIsIsolated(t *testing.T) {
	session := newFakeSession()
	session.responses[ToolListEmailLabels] = fakeResponse{result: mcp.NewToolResultError("Access token has expired. Please refresh your credentials.")}
	r, out := newTestRunner(liveBundle(), session.bootstrapper())

	require.NoError(t, r.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Error listing labels: Access token has expired. Please refresh your credentials.")
	assert.NotContains(t, text, "Labels retrieved successfully")
	assert.Contains(t, text, "Email search completed:")
}

func TestRunner_ZeroTools(t *testing.T) {
	session := newFakeSession()
	session.tools = nil
	r, out := newTestRunner(liveBundle(), session.bootstrapper())

	require.NoError(t, r.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Tools found: 0\n")
	assert.NotContains(t, text, "  - ")
	assert.Len(t, session.calledTools(), 3)
}

func TestRunner_ListToolsFailureIsUnexpected(t *testing.T) {
	session := newFakeSession()
	session.listToolsErr = errors.New("method not found")
	r, out := newTestRunner(liveBundle(), session.bootstrapper())

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "method not found")
	assert.NotErrorIs(t, err, ErrValidationFailed)
	assert.True(t, IsReported(err))

	assert.Empty(t, session.calledTools())
	assert.Equal(t, 1, session.closed)

	text := out.String()
	assert.Contains(t, text, "❌ Unexpected error: failed to list tools: method not found")
	assert.NotContains(t, text, "Example completed")
}

func TestRunner_Interrupt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := newFakeSession()
	session.responses[ToolSearchEmails] = fakeResponse{hook: func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	}}
	r, out := newTestRunner(liveBundle(), session.bootstrapper())

	require.NoError(t, r.Run(ctx))

	assert.Equal(t, []string{ToolListEmailLabels, ToolSearchEmails}, session.calledTools())
	assert.Equal(t, 1, session.closed)

	text := out.String()
	assert.Contains(t, text, "👋 Client closed by user")
	assert.NotContains(t, text, "Error searching emails")
	assert.NotContains(t, text, "Example completed")
}

func TestRunner_BootstrapFailure(t *testing.T) {
	bootErr := errors.New("failed to start server \"missing\": exec: not found")
	r, out := newTestRunner(liveBundle(), func(context.Context) (Session, func() error, error) {
		return nil, nil, bootErr
	})

	err := r.Run(context.Background())
	require.ErrorIs(t, err, bootErr)
	assert.NotErrorIs(t, err, ErrValidationFailed)
	assert.True(t, IsReported(err))
	assert.Contains(t, out.String(), "❌ Unexpected error: failed to start server")
}
