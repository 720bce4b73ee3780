//go:build linux

package permission

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"go.klb.dev/clipkeep/internal/hotkey"
)

// evdevChecker treats read access to the keyboard event device as the
// input-capture permission.
type evdevChecker struct {
	find func() (string, error)
}

func newPlatform() Checker { return evdevChecker{find: hotkey.KeyboardDevicePath} }

// Granted reports false without an error on hosts with no keyboard device:
// there is nothing to observe, which is not a platform failure.
func (c evdevChecker) Granted() (bool, error) {
	path, err := c.find()
	if errors.Is(err, hotkey.ErrNoKeyboard) {
		slog.Debug("no keyboard device, global hotkey unavailable", "err", err)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("locate keyboard device: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return false, nil
		}
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	_ = f.Close()
	return true, nil
}

// Request has no OS prompt on Linux; the user has to join the input group.
func (evdevChecker) Request() error {
	slog.Warn("global hotkeys need read access to the keyboard device",
		"hint", "add your user to the 'input' group and log in again",
	)
	return nil
}
