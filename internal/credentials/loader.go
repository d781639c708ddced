package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by FromEnv.
const (
	EnvCredentialsFile = "GMAILMCP_CREDENTIALS_FILE"
	EnvAccessToken     = "GMAILMCP_ACCESS_TOKEN"
	EnvRefreshToken    = "GMAILMCP_REFRESH_TOKEN"
	EnvScope           = "GMAILMCP_SCOPE"
	EnvTokenType       = "GMAILMCP_TOKEN_TYPE"
	EnvExpiryDate      = "GMAILMCP_EXPIRY_DATE"
)

// LoadFile reads a JSON encoded bundle from path.
func LoadFile(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}
	return b, nil
}

// FromEnv overlays the GMAILMCP_* environment variables onto base.
// lookup is typically os.LookupEnv.
func FromEnv(base Bundle, lookup func(string) (string, bool)) (Bundle, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if path, ok := lookup(EnvCredentialsFile); ok && path != "" {
		fromFile, err := LoadFile(path)
		if err != nil {
			return Bundle{}, err
		}
		base = Merge(base, fromFile)
	}

	var override Bundle
	override.AccessToken, _ = lookup(EnvAccessToken)
	override.RefreshToken, _ = lookup(EnvRefreshToken)
	override.Scope, _ = lookup(EnvScope)
	override.TokenType, _ = lookup(EnvTokenType)

	if v, ok := lookup(EnvExpiryDate); ok && v != "" {
		expiry, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Bundle{}, fmt.Errorf("invalid %s %q: %w", EnvExpiryDate, v, err)
		}
		override.ExpiryDate = expiry
	}

	return Merge(base, override), nil
}
