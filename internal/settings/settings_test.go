package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFirstRunDefaults(t *testing.T) {
	t.Parallel()

	s, firstRun, err := Load(context.Background(), NewMemoryStore(nil))
	require.NoError(t, err)
	assert.True(t, firstRun)
	assert.Equal(t, Default(), s)
}

func TestLoadMalformedValues(t *testing.T) {
	t.Parallel()

	st := NewMemoryStore(map[string]string{
		KeyMaxHistoryItems:   "-3",
		KeyAutoLaunchEnabled: "maybe",
		KeyShowStartupScreen: "false",
		KeyHasLaunchedBefore: "true",
	})
	s, firstRun, err := Load(context.Background(), st)
	require.NoError(t, err)
	assert.False(t, firstRun)
	assert.Equal(t, DefaultMaxHistoryItems, s.MaxHistoryItems)
	assert.False(t, s.AutoLaunchEnabled)
	assert.False(t, s.ShowStartupScreen)
}

func TestSaveMarksLaunched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := NewMemoryStore(nil)
	want := Settings{MaxHistoryItems: 7, AutoLaunchEnabled: true}
	require.NoError(t, Save(ctx, st, want))

	got, firstRun, err := Load(ctx, st)
	require.NoError(t, err)
	assert.False(t, firstRun)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, st.Saves())
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.db")

	st, err := OpenSQLite(path)
	require.NoError(t, err)
	assert.Equal(t, path, st.Path())
	require.NoError(t, Save(ctx, st, Settings{MaxHistoryItems: 3, ShowStartupScreen: true}))
	require.NoError(t, Save(ctx, st, Settings{MaxHistoryItems: 9, AutoLaunchEnabled: true}))
	require.NoError(t, st.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	values, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "9", values[KeyMaxHistoryItems])
	assert.Equal(t, "true", values[KeyHasLaunchedBefore])

	s, firstRun, err := Load(ctx, reopened)
	require.NoError(t, err)
	assert.False(t, firstRun)
	assert.Equal(t, Settings{MaxHistoryItems: 9, AutoLaunchEnabled: true}, s)
}
