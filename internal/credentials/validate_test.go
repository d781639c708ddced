package credentials

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBundle() Bundle {
	b := Example()
	b.AccessToken = "ya29.real-token"
	return b
}

func TestValidate_MissingField(t *testing.T) {
	tests := []struct {
		field string
		clear func(*Bundle)
	}{
		{"access_token", func(b *Bundle) { b.AccessToken = "" }},
		{"refresh_token", func(b *Bundle) { b.RefreshToken = "" }},
		{"scope", func(b *Bundle) { b.Scope = "" }},
		{"token_type", func(b *Bundle) { b.TokenType = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			b := validBundle()
			tt.clear(&b)

			err := b.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_Placeholder(t *testing.T) {
	err := Example().Validate()
	assert.ErrorIs(t, err, ErrPlaceholderToken)
}

func TestValidate_PlaceholderWithOtherFieldsChanged(t *testing.T) {
	b := Bundle{
		AccessToken:  PlaceholderAccessToken,
		RefreshToken: "1//real",
		Scope:        "https://mail.google.com/",
		TokenType:    "Bearer",
		ExpiryDate:   time.Now().Add(time.Hour).UnixMilli(),
	}
	assert.ErrorIs(t, b.Validate(), ErrPlaceholderToken)
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, validBundle().Validate())
}

func TestValidate_ExpiryNotRequired(t *testing.T) {
	b := validBundle()
	b.ExpiryDate = 0
	assert.NoError(t, b.Validate())
}

func TestCheckUsable(t *testing.T) {
	now := time.Now()

	assert.ErrorIs(t, Bundle{}.CheckUsable(now), ErrMissingAccessToken)
	assert.ErrorIs(t, Bundle{AccessToken: "at", ExpiryDate: now.Add(-time.Hour).UnixMilli()}.CheckUsable(now), ErrCredentialsExpired)
	assert.NoError(t, Bundle{AccessToken: "at"}.CheckUsable(now))
	assert.NoError(t, Bundle{AccessToken: "at", ExpiryDate: now.Add(time.Hour).UnixMilli()}.CheckUsable(now))
}
