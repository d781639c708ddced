package credentials

import (
	"encoding/json"
	"time"

	"golang.org/x/oauth2"
)

// ArgumentKey is the reserved tool argument carrying the credential bundle.
const ArgumentKey = "_userCredentials"

// PlaceholderAccessToken is the access token of the built-in example bundle.
// A bundle still carrying it has not been configured and is rejected by Validate.
const PlaceholderAccessToken = "ya29.a0ARrdaM..."

// ExpiryBuffer is how long before its expiry date an access token is treated as expired.
const ExpiryBuffer = 5 * time.Minute

// Bundle is the OAuth token set attached to every outgoing tool call.
type Bundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
	// ExpiryDate is a Unix timestamp in milliseconds. Zero means unknown.
	ExpiryDate int64  `json:"expiry_date"`
	IDToken    string `json:"id_token,omitempty"`
}

// Example returns the example bundle shipped with the driver. Its access token is
// the placeholder, so it never passes validation as-is.
func Example() Bundle {
	return Bundle{
		AccessToken:  PlaceholderAccessToken,
		RefreshToken: "1//0G-...",
		Scope:        "https://www.googleapis.com/auth/gmail.modify",
		TokenType:    "Bearer",
		ExpiryDate:   1640995200000,
	}
}

// wireBundle accepts both the snake_case and camelCase spellings of every field.
// Pointers distinguish absent and null values from empty ones.
type wireBundle struct {
	AccessToken       *string `json:"access_token"`
	AccessTokenCamel  *string `json:"accessToken"`
	RefreshToken      *string `json:"refresh_token"`
	RefreshTokenCamel *string `json:"refreshToken"`
	Scope             *string `json:"scope"`
	TokenType         *string `json:"token_type"`
	TokenTypeCamel    *string `json:"tokenType"`
	ExpiryDate        *int64  `json:"expiry_date"`
	ExpiryDateCamel   *int64  `json:"expiryDate"`
	IDToken           *string `json:"id_token"`
	IDTokenCamel      *string `json:"idToken"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	var w wireBundle
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*b = Bundle{
		AccessToken:  firstString(w.AccessToken, w.AccessTokenCamel),
		RefreshToken: firstString(w.RefreshToken, w.RefreshTokenCamel),
		Scope:        firstString(w.Scope),
		TokenType:    firstString(w.TokenType, w.TokenTypeCamel),
		IDToken:      firstString(w.IDToken, w.IDTokenCamel),
	}
	if w.ExpiryDate != nil {
		b.ExpiryDate = *w.ExpiryDate
	} else if w.ExpiryDateCamel != nil {
		b.ExpiryDate = *w.ExpiryDateCamel
	}
	return nil
}

func firstString(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}

// Expiry returns the expiry date as a time. The zero time is returned when unknown.
func (b Bundle) Expiry() time.Time {
	if b.ExpiryDate == 0 {
		return time.Time{}
	}
	return time.UnixMilli(b.ExpiryDate)
}

// IsExpired reports whether the access token expires within ExpiryBuffer of now.
// A bundle without an expiry date is never considered expired.
func (b Bundle) IsExpired(now time.Time) bool {
	if b.ExpiryDate == 0 {
		return false
	}
	return !now.Before(b.Expiry().Add(-ExpiryBuffer))
}

// Token converts the bundle into an oauth2.Token.
func (b Bundle) Token() *oauth2.Token {
	tokenType := b.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	tok := &oauth2.Token{
		AccessToken:  b.AccessToken,
		TokenType:    tokenType,
		RefreshToken: b.RefreshToken,
		Expiry:       b.Expiry(),
	}
	if b.IDToken != "" {
		tok = tok.WithExtra(map[string]interface{}{"id_token": b.IDToken})
	}
	return tok
}

// Merge returns base with every non-zero field of override applied on top.
func Merge(base, override Bundle) Bundle {
	if override.AccessToken != "" {
		base.AccessToken = override.AccessToken
	}
	if override.RefreshToken != "" {
		base.RefreshToken = override.RefreshToken
	}
	if override.Scope != "" {
		base.Scope = override.Scope
	}
	if override.TokenType != "" {
		base.TokenType = override.TokenType
	}
	if override.ExpiryDate != 0 {
		base.ExpiryDate = override.ExpiryDate
	}
	if override.IDToken != "" {
		base.IDToken = override.IDToken
	}
	return base
}
