//go:build windows

package autolaunch

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows/registry"
)

func TestRunKey(t *testing.T) {
	t.Parallel()

	path := fmt.Sprintf(`Software\clipkeep-test-%d`, os.Getpid())
	t.Cleanup(func() { _ = registry.DeleteKey(registry.CURRENT_USER, path) })
	r := &runKey{exe: `C:\Program Files\clipkeep\clipkeep.exe`, args: []string{"daemon"}, path: path}

	assert.False(t, r.Enabled())
	require.NoError(t, r.Disable(), "disabling a missing entry is not an error")

	require.NoError(t, Set(r, true))
	assert.True(t, r.Enabled())

	k, err := registry.OpenKey(registry.CURRENT_USER, path, registry.QUERY_VALUE)
	require.NoError(t, err)
	got, _, err := k.GetStringValue(runValue)
	k.Close()
	require.NoError(t, err)
	assert.Equal(t, `"C:\Program Files\clipkeep\clipkeep.exe" daemon`, got)

	require.NoError(t, Set(r, false))
	assert.False(t, r.Enabled())
}
