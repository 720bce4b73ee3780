package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Duration("poll-interval", 500*time.Millisecond, "")
	cmd.Flags().Int("log-buffer", 100, "")
	addConfigFlag(cmd)
	return cmd
}

func TestBindViperDashedEnv(t *testing.T) {
	t.Setenv("CLIPKEEP_POLL_INTERVAL", "2s")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := testCmd()
	v := viper.New()
	require.NoError(t, bindViper(cmd, v))
	assert.Equal(t, 2*time.Second, v.GetDuration("poll-interval"))
	assert.Equal(t, 100, v.GetInt("log-buffer"))
}

func TestBindViperPrecedence(t *testing.T) {
	t.Setenv("CLIPKEEP_LOG_BUFFER", "50")

	path := filepath.Join(t.TempDir(), "clipkeep.toml")
	require.NoError(t, os.WriteFile(path, []byte("poll-interval = \"1s\"\nlog-buffer = 10\n"), 0o600))

	cmd := testCmd()
	require.NoError(t, cmd.Flags().Set("config", path))
	v := viper.New()
	require.NoError(t, bindViper(cmd, v))
	assert.Equal(t, time.Second, v.GetDuration("poll-interval"), "file beats default")
	assert.Equal(t, 50, v.GetInt("log-buffer"), "env beats file")

	require.NoError(t, cmd.Flags().Set("log-buffer", "7"))
	assert.Equal(t, 7, v.GetInt("log-buffer"), "flag beats env")
}
