//go:build linux

package autolaunch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXDGAutostart(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "autostart")
	a := &xdgAutostart{exe: "/usr/local/bin/clipkeep", args: []string{"daemon"}, dir: dir}

	assert.False(t, a.Enabled())
	require.NoError(t, a.Disable(), "disabling a missing entry is not an error")

	require.NoError(t, Set(a, true))
	assert.True(t, a.Enabled())

	data, err := os.ReadFile(filepath.Join(dir, "clipkeep.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Exec=/usr/local/bin/clipkeep daemon\n")

	require.NoError(t, Set(a, false))
	assert.False(t, a.Enabled())
}

func TestXDGAutostartQuotesExec(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "autostart")
	a := &xdgAutostart{exe: "/opt/My Apps/clipkeep", args: []string{"daemon", "--db", "/tmp/100%/s.db"}, dir: dir}
	require.NoError(t, a.Enable())

	data, err := os.ReadFile(filepath.Join(dir, "clipkeep.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Exec=\"/opt/My Apps/clipkeep\" daemon --db /tmp/100%%/s.db\n")
}

func TestExecQuote(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"plain":      "plain",
		"":           `""`,
		"a b":        `"a b"`,
		`say "hi"`:   `"say \\"hi\\""`,
		"$HOME":      `"\\$HOME"`,
		`C:\bin`:     `"C:\\\\bin"`,
		"50%":        "50%%",
		"it's":       `"it's"`,
		"x;rm -rf /": `"x;rm -rf /"`,
	} {
		assert.Equal(t, want, execQuote(in), in)
	}
}
