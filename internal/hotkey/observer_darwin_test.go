//go:build darwin

package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDarwinMods(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Modifier(0), darwinMods(0))
	assert.Equal(t, ModMeta|ModShift, darwinMods(cgFlagCommand|cgFlagShift))
	assert.Equal(t, ModCtrl|ModAlt, darwinMods(cgFlagControl|cgFlagAlt|1<<16))
	assert.True(t, Default().Matches(Event{Key: darwinKeys[9], Mods: darwinMods(cgFlagCommand | cgFlagShift)}))
}
