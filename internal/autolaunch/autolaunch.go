// Package autolaunch registers clipkeep to start at login.
package autolaunch

import (
	"errors"
	"fmt"
	"os"
)

// ErrUnsupported is returned on platforms without an implementation.
var ErrUnsupported = errors.New("auto-launch not supported on this platform")

// Registrar is the platform auto-launch capability.
type Registrar interface {
	// Enabled reports whether a login entry is currently installed.
	Enabled() bool
	// Enable installs the login entry.
	Enable() error
	// Disable removes the login entry. Removing a missing entry is not an error.
	Disable() error
}

// Set enables or disables r.
func Set(r Registrar, enabled bool) error {
	if enabled {
		return r.Enable()
	}
	return r.Disable()
}

// New returns the platform registrar launching exe with args. An empty exe
// means the running executable.
func New(exe string, args ...string) Registrar {
	if exe == "" {
		exe, _ = os.Executable()
	}
	return newPlatform(exe, args)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
