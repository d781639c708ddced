package credentials

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPlaceholderToken is returned when the access token is still the example placeholder.
	ErrPlaceholderToken = errors.New("access token is the example placeholder, replace it with real credentials")

	// ErrMissingAccessToken is returned by CheckUsable when a request carries no access token.
	ErrMissingAccessToken = errors.New("missing access token in user credentials")

	// ErrCredentialsExpired is returned by CheckUsable when the access token has expired.
	ErrCredentialsExpired = errors.New("access token has expired, please refresh your credentials")
)

// RequiredFields lists the bundle fields that must be non-empty, in check order.
var RequiredFields = []string{"access_token", "refresh_token", "scope", "token_type"}

// ValidationError reports a required field that is missing or empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field '%s' is missing from the credentials", e.Field)
}

// Validate checks that every required field is present and that the access token
// is not the example placeholder. It returns a *ValidationError for the first
// missing field, or ErrPlaceholderToken.
func (b Bundle) Validate() error {
	for _, field := range RequiredFields {
		if b.field(field) == "" {
			return &ValidationError{Field: field}
		}
	}

	if b.AccessToken == PlaceholderAccessToken {
		return ErrPlaceholderToken
	}

	return nil
}

// CheckUsable is the per-request check the server applies before calling Gmail:
// an access token must be present and must not be about to expire.
// Refresh tokens are optional here since refresh is only possible with client credentials.
func (b Bundle) CheckUsable(now time.Time) error {
	if b.AccessToken == "" {
		return ErrMissingAccessToken
	}
	if b.IsExpired(now) {
		return ErrCredentialsExpired
	}
	return nil
}

func (b Bundle) field(name string) string {
	switch name {
	case "access_token":
		return b.AccessToken
	case "refresh_token":
		return b.RefreshToken
	case "scope":
		return b.Scope
	case "token_type":
		return b.TokenType
	default:
		return ""
	}
}
