//go:build windows

package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVKRune(t *testing.T) {
	t.Parallel()

	for vk, want := range map[uint32]rune{'V': 'v', 'A': 'a', '7': '7', vkSpace: ' '} {
		r, ok := vkRune(vk)
		assert.True(t, ok, vk)
		assert.Equal(t, want, r)
	}
	_, ok := vkRune(vkShift)
	assert.False(t, ok)
}
