package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCombo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Combo
		wantErr bool
	}{
		{in: "ctrl+shift+v", want: Combo{Mods: ModCtrl | ModShift, Key: 'v'}},
		{in: " Cmd + Shift + V ", want: Combo{Mods: ModMeta | ModShift, Key: 'v'}},
		{in: "primary+shift+v", want: Combo{Mods: Primary() | ModShift, Key: 'v'}},
		{in: "alt+space", want: Combo{Mods: ModAlt, Key: ' '}},
		{in: "ctrl+shift", wantErr: true},
		{in: "v+ctrl", wantErr: true},
		{in: "ctrl+f12", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCombo(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComboMatchesExactModifiers(t *testing.T) {
	t.Parallel()

	c := Combo{Mods: ModCtrl | ModShift, Key: 'v'}
	assert.True(t, c.Matches(Event{Key: 'v', Mods: ModCtrl | ModShift}))
	assert.True(t, c.Matches(Event{Key: 'V', Mods: ModCtrl | ModShift}))
	assert.False(t, c.Matches(Event{Key: 'v', Mods: ModCtrl}))
	assert.False(t, c.Matches(Event{Key: 'v', Mods: ModCtrl | ModShift | ModAlt}))
	assert.False(t, c.Matches(Event{Key: 'c', Mods: ModCtrl | ModShift}))
	assert.Equal(t, "ctrl+shift+v", c.String())
}

func TestSystemLocalFilterConsumesMatch(t *testing.T) {
	t.Parallel()

	s := NewSystem(nil)
	c := Combo{Mods: ModCtrl | ModShift, Key: 'v'}
	var fired int
	l, err := s.InstallLocal(c, func() { fired++ })
	require.NoError(t, err)

	assert.True(t, s.Dispatch(Event{Key: 'v', Mods: ModCtrl | ModShift}))
	assert.False(t, s.Dispatch(Event{Key: 'v', Mods: ModCtrl}))
	assert.Equal(t, 1, fired)

	require.NoError(t, s.Uninstall(l))
	require.NoError(t, s.Uninstall(l))
	assert.False(t, s.Dispatch(Event{Key: 'v', Mods: ModCtrl | ModShift}))
	assert.Equal(t, 1, fired)
}

func TestSystemMenu(t *testing.T) {
	t.Parallel()

	s := NewSystem(nil)
	c := Default()
	var fired int
	l, err := s.InstallMenu(c, func() { fired++ })
	require.NoError(t, err)
	assert.Equal(t, ScopeMenu, l.Scope)

	assert.True(t, s.TriggerMenu(c))
	assert.False(t, s.TriggerMenu(Combo{Key: 'x'}))
	assert.Equal(t, 1, fired)

	require.NoError(t, s.Uninstall(l))
	assert.False(t, s.TriggerMenu(c))
	assert.Equal(t, 1, fired)
}
