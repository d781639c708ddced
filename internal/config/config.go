package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/teemow/gmailmcp/internal/credentials"
)

// EnvConfigFile names the run configuration file when --config is not given.
const EnvConfigFile = "GMAILMCP_CONFIG"

// RunConfig is the content of the run configuration file.
type RunConfig struct {
	Credentials CredentialsSection `toml:"credentials"`
	Server      ServerSection      `toml:"server"`
	Search      SearchSection      `toml:"search"`
	Email       EmailSection       `toml:"email"`

	path string
}

// CredentialsSection holds inline credentials or a path to a credentials file.
type CredentialsSection struct {
	File         string `toml:"file"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	Scope        string `toml:"scope"`
	TokenType    string `toml:"token_type"`
	ExpiryDate   int64  `toml:"expiry_date"`
}

// ServerSection overrides how the MCP server process is launched.
type ServerSection struct {
	Command string            `toml:"command"`
	Args    []string          `toml:"args"`
	Env     map[string]string `toml:"env"`
}

// SearchSection configures the search_emails step.
type SearchSection struct {
	Query      string `toml:"query"`
	MaxResults int    `toml:"max_results"`
}

// EmailSection configures the send_email step.
type EmailSection struct {
	To       []string `toml:"to"`
	Subject  string   `toml:"subject"`
	Body     string   `toml:"body"`
	MimeType string   `toml:"mime_type"`
}

// Bundle returns the inline credentials as a bundle. Unset fields stay empty.
func (c CredentialsSection) Bundle() credentials.Bundle {
	return credentials.Bundle{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		Scope:        c.Scope,
		TokenType:    c.TokenType,
		ExpiryDate:   c.ExpiryDate,
	}
}

// Path returns the file the configuration was loaded from, or "".
func (c *RunConfig) Path() string {
	return c.path
}

// Load reads the run configuration from path. An empty path falls back to
// $GMAILMCP_CONFIG; if that is unset too, an empty configuration is returned.
func Load(path string) (*RunConfig, error) {
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path == "" {
		return &RunConfig{}, nil
	}

	path = ExpandHome(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %s does not exist", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.path = path
	cfg.Credentials.File = ExpandHome(cfg.Credentials.File)
	return cfg, nil
}

// Parse decodes a TOML run configuration. Unknown keys are rejected.
func Parse(data []byte) (*RunConfig, error) {
	var cfg RunConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	if cfg.Search.MaxResults < 0 {
		return nil, fmt.Errorf("search.max_results must not be negative, got %d", cfg.Search.MaxResults)
	}
	return &cfg, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
