//go:build linux

package permission

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipkeep/internal/hotkey"
)

func TestEvdevCheckerGranted(t *testing.T) {
	t.Parallel()

	dev := filepath.Join(t.TempDir(), "event0")
	require.NoError(t, os.WriteFile(dev, nil, 0o600))

	tests := []struct {
		name    string
		find    func() (string, error)
		granted bool
		wantErr bool
	}{
		{
			name:    "readable device",
			find:    func() (string, error) { return dev, nil },
			granted: true,
		},
		{
			name: "no keyboard",
			find: func() (string, error) { return "", hotkey.ErrNoKeyboard },
		},
		{
			name: "no keyboard, wrapped",
			find: func() (string, error) {
				return "", fmt.Errorf("%w: %w", hotkey.ErrNoKeyboard, os.ErrNotExist)
			},
		},
		{
			name:    "lookup failure",
			find:    func() (string, error) { return "", errors.New("read /dev/input: i/o error") },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			granted, err := evdevChecker{find: tt.find}.Granted()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.granted, granted)
		})
	}
}
