package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gmailmcp/internal/credentials"
	"github.com/teemow/gmailmcp/internal/driver"
	"github.com/teemow/gmailmcp/internal/server"
)

func TestApplyServeEnv(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		env      map[string]string
		expected serveOptions
	}{
		{
			name:     "defaults",
			expected: serveOptions{metrics: MetricsConfig{Addr: server.DefaultMetricsAddr}},
		},
		{
			name: "environment",
			env: map[string]string{
				"USE_USER_CREDENTIALS":   "true",
				"DEBUG_USER_AUTH":        "1",
				"METRICS_ENABLED":        "true",
				"METRICS_ADDR":           ":9191",
				"GMAIL_CREDENTIALS_PATH": "/etc/gmail.json",
			},
			expected: serveOptions{
				userCredentials: true,
				debugMode:       true,
				credentialsPath: "/etc/gmail.json",
				metrics:         MetricsConfig{Enabled: true, Addr: ":9191"},
			},
		},
		{
			name: "flags win over environment",
			args: []string{"--user-credentials=false", "--metrics-addr", ":7000"},
			env: map[string]string{
				"USE_USER_CREDENTIALS": "true",
				"METRICS_ADDR":         ":9191",
			},
			expected: serveOptions{metrics: MetricsConfig{Addr: ":7000"}},
		},
		{
			name:     "invalid boolean is ignored",
			env:      map[string]string{"USE_USER_CREDENTIALS": "yes please"},
			expected: serveOptions{metrics: MetricsConfig{Addr: server.DefaultMetricsAddr}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newServeCmd()
			require.NoError(t, cmd.Flags().Parse(tt.args))

			var opts serveOptions
			opts.userCredentials, _ = cmd.Flags().GetBool("user-credentials")
			opts.metrics.Addr, _ = cmd.Flags().GetString("metrics-addr")

			applyServeEnv(cmd, &opts, envMap(tt.env))
			assert.Equal(t, tt.expected, opts)
		})
	}
}

func TestGenerateDocs(t *testing.T) {
	cmd := newGenerateDocsCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	md := out.String()
	assert.Contains(t, md, "# MCP Tools Reference")
	assert.Contains(t, md, "## Email Tools")
	assert.Contains(t, md, "## Label Tools")
	assert.Contains(t, md, "## Attachment Tools")
	assert.Contains(t, md, "### search_emails")
	assert.Contains(t, md, "### batch_delete_emails")
	assert.Contains(t, md, "| `batchSize` | number | no |")
	assert.Contains(t, md, "| `query` | string | yes | Gmail search query")
	assert.Contains(t, md, "| `to` | string[] | yes |")
	assert.Contains(t, md, "| `_userCredentials` | object | no |")
}

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)
	assert.Equal(t, "gmailmcp version 1.2.3\n", out.String())
}

func TestPrintError(t *testing.T) {
	var out bytes.Buffer
	printError(&out, errors.New("unknown flag: --nope"))
	assert.Equal(t, "Error: unknown flag: --nope\n", out.String())

	out.Reset()
	r := &driver.Runner{
		Bundle:  credentials.Example(),
		Console: driver.NewConsole(io.Discard, nil),
	}
	err := r.Run(context.Background())
	require.ErrorIs(t, err, driver.ErrValidationFailed)
	printError(&out, err)
	assert.Empty(t, out.String())
}
