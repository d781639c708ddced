package credentials

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundle_MarshalUsesSnakeCase(t *testing.T) {
	data, err := json.Marshal(Example())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{"access_token", "refresh_token", "scope", "token_type", "expiry_date"} {
		assert.Contains(t, raw, key)
	}
	assert.NotContains(t, raw, "id_token")
}

func TestBundle_UnmarshalAcceptsBothSpellings(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "snake case",
			input: `{"access_token":"at","refresh_token":"rt","scope":"s","token_type":"Bearer","expiry_date":1700000000000}`,
		},
		{
			name:  "camel case",
			input: `{"accessToken":"at","refreshToken":"rt","scope":"s","tokenType":"Bearer","expiryDate":1700000000000}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Bundle
			require.NoError(t, json.Unmarshal([]byte(tt.input), &b))
			assert.Equal(t, Bundle{
				AccessToken:  "at",
				RefreshToken: "rt",
				Scope:        "s",
				TokenType:    "Bearer",
				ExpiryDate:   1700000000000,
			}, b)
		})
	}
}

func TestBundle_UnmarshalNullFields(t *testing.T) {
	var b Bundle
	require.NoError(t, json.Unmarshal([]byte(`{"accessToken":"at","refreshToken":null,"expiryDate":null}`), &b))
	assert.Equal(t, "at", b.AccessToken)
	assert.Empty(t, b.RefreshToken)
	assert.Zero(t, b.ExpiryDate)
}

func TestBundle_IsExpired(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	tests := []struct {
		name   string
		expiry int64
		want   bool
	}{
		{"no expiry", 0, false},
		{"well in the future", now.Add(time.Hour).UnixMilli(), false},
		{"inside buffer", now.Add(4 * time.Minute).UnixMilli(), true},
		{"exactly at buffer", now.Add(ExpiryBuffer).UnixMilli(), true},
		{"in the past", now.Add(-time.Minute).UnixMilli(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Bundle{AccessToken: "at", ExpiryDate: tt.expiry}
			assert.Equal(t, tt.want, b.IsExpired(now))
		})
	}
}

func TestBundle_Token(t *testing.T) {
	b := Bundle{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiryDate:   1_700_000_000_000,
		IDToken:      "idt",
	}

	tok := b.Token()
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, "rt", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.True(t, tok.Expiry.Equal(time.UnixMilli(1_700_000_000_000)))
	assert.Equal(t, "idt", tok.Extra("id_token"))
}

func TestMerge(t *testing.T) {
	base := Example()
	merged := Merge(base, Bundle{AccessToken: "real", ExpiryDate: 42})

	assert.Equal(t, "real", merged.AccessToken)
	assert.Equal(t, int64(42), merged.ExpiryDate)
	assert.Equal(t, base.RefreshToken, merged.RefreshToken)
	assert.Equal(t, base.Scope, merged.Scope)
	assert.Equal(t, base.TokenType, merged.TokenType)
}
