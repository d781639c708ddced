package driver

import (
	"fmt"
	"os"
	"sort"
)

// DefaultServerEnv is added to the inherited environment of the launched server.
var DefaultServerEnv = map[string]string{
	"USE_USER_CREDENTIALS": "true",
	"DEBUG_USER_AUTH":      "true",
}

// LaunchDescriptor describes how to start the MCP server subprocess.
type LaunchDescriptor struct {
	Command string
	Args    []string

	// Env overrides are added on top of the inherited environment.
	Env map[string]string
}

// DefaultLaunchDescriptor launches the running executable with the "serve" subcommand.
func DefaultLaunchDescriptor() (LaunchDescriptor, error) {
	exe, err := os.Executable()
	if err != nil {
		return LaunchDescriptor{}, fmt.Errorf("failed to locate executable: %w", err)
	}

	env := make(map[string]string, len(DefaultServerEnv))
	for k, v := range DefaultServerEnv {
		env[k] = v
	}

	return LaunchDescriptor{
		Command: exe,
		Args:    []string{"serve"},
		Env:     env,
	}, nil
}

// WithEnv returns a copy of d with extra environment overrides applied.
func (d LaunchDescriptor) WithEnv(extra map[string]string) LaunchDescriptor {
	env := make(map[string]string, len(d.Env)+len(extra))
	for k, v := range d.Env {
		env[k] = v
	}
	for k, v := range extra {
		env[k] = v
	}
	d.Env = env
	return d
}

// Environ returns the overrides as sorted KEY=VALUE pairs.
func (d LaunchDescriptor) Environ() []string {
	keys := make([]string, 0, len(d.Env))
	for k := range d.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+d.Env[k])
	}
	return out
}

// Validate checks that a command is set.
func (d LaunchDescriptor) Validate() error {
	if d.Command == "" {
		return fmt.Errorf("server command is required")
	}
	return nil
}
