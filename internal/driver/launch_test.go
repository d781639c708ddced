package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLaunchDescriptor(t *testing.T) {
	d, err := DefaultLaunchDescriptor()
	require.NoError(t, err)

	assert.NotEmpty(t, d.Command)
	assert.Equal(t, []string{"serve"}, d.Args)
	assert.Equal(t, []string{"DEBUG_USER_AUTH=true", "USE_USER_CREDENTIALS=true"}, d.Environ())
	assert.NoError(t, d.Validate())
}

func TestLaunchDescriptor_WithEnv(t *testing.T) {
	base := LaunchDescriptor{Command: "node", Args: []string{"dist/index.js"}, Env: map[string]string{"A": "1"}}

	d := base.WithEnv(map[string]string{"B": "2", "A": "3"})
	assert.Equal(t, []string{"A=3", "B=2"}, d.Environ())
	assert.Equal(t, []string{"A=1"}, base.Environ(), "the original descriptor is unchanged")
}

func TestLaunchDescriptor_Validate(t *testing.T) {
	assert.EqualError(t, LaunchDescriptor{}.Validate(), "server command is required")
}
