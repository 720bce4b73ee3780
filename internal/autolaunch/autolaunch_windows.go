//go:build windows

package autolaunch

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/sys/windows/registry"
)

const (
	runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`
	runValue   = "clipkeep"
)

// runKey registers the daemon under the current user's Run key.
type runKey struct {
	exe  string
	args []string
	path string // overrides runKeyPath in tests
}

func newPlatform(exe string, args []string) Registrar {
	return &runKey{exe: exe, args: args, path: runKeyPath}
}

// command quotes the executable unconditionally, as Run entries expect.
func (r *runKey) command() string {
	parts := []string{`"` + r.exe + `"`}
	for _, a := range r.args {
		parts = append(parts, syscall.EscapeArg(a))
	}
	return strings.Join(parts, " ")
}

func (r *runKey) Enabled() bool {
	k, err := registry.OpenKey(registry.CURRENT_USER, r.path, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()
	_, _, err = k.GetStringValue(runValue)
	return err == nil
}

func (r *runKey) Enable() error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, r.path, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()
	if err := k.SetStringValue(runValue, r.command()); err != nil {
		return fmt.Errorf("write run value: %w", err)
	}
	return nil
}

func (r *runKey) Disable() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, r.path, registry.SET_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()
	if err := k.DeleteValue(runValue); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete run value: %w", err)
	}
	return nil
}
