package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesToGivenWriter(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := Setup(&buf, false, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("visible", Tool("search_emails"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "tool=search_emails")
	assert.Same(t, logger, slog.Default())
}

func TestSetup_DebugOverridesLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := Setup(&buf, true, slog.LevelWarn)
	logger.Debug("debug line")
	assert.Contains(t, buf.String(), "debug line")
}

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{"tool", Tool("send_email"), KeyTool, "send_email"},
		{"run id", RunID("abc"), KeyRunID, "abc"},
		{"step", Step("search"), KeyStep, "search"},
		{"status", Status("success"), KeyStatus, "success"},
		{"duration", Duration(2 * time.Second), KeyDuration, "2s"},
		{"error", Err(errors.New("boom")), KeyError, "boom"},
		{"trace id", TraceID("0af7651916cd43dd8448eb211c80319c"), KeyTraceID, "0af7651916cd43dd8448eb211c80319c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKey, tt.attr.Key)
			assert.Equal(t, tt.wantVal, tt.attr.Value.String())
		})
	}
}

func TestEmptyAttributesAreDropped(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("done", Err(nil), TraceID(""), Recipients(nil, false))
	assert.NotContains(t, buf.String(), KeyError)
	assert.NotContains(t, buf.String(), KeyTraceID)
	assert.NotContains(t, buf.String(), KeyRecipients)
}

func TestHashAddress(t *testing.T) {
	got := HashAddress("jane@example.com")
	require.Len(t, got, 21) // "addr:" + 16 hex chars
	assert.Equal(t, "addr:", got[:5])
	assert.Equal(t, got, HashAddress(" Jane@Example.com "))
	assert.NotEqual(t, got, HashAddress("john@example.com"))
	assert.Empty(t, HashAddress(""))
}

func TestRecipients(t *testing.T) {
	addrs := []string{"jane@example.com", "john@example.com"}

	hashed := Recipients(addrs, false)
	assert.Equal(t, KeyRecipients, hashed.Key)
	assert.Equal(t, HashAddress(addrs[0])+","+HashAddress(addrs[1]), hashed.Value.String())
	assert.NotContains(t, hashed.Value.String(), "example.com")

	plain := Recipients(addrs, true)
	assert.Equal(t, "jane@example.com,john@example.com", plain.Value.String())
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "<empty>", SanitizeToken(""))
	assert.Equal(t, "[token:6 chars]", SanitizeToken("abc123"))
	assert.NotContains(t, SanitizeToken("ya29.secret"), "ya29")
}
