//go:build !linux && !darwin && !windows

package autolaunch

type unsupported struct{}

func newPlatform(string, []string) Registrar { return unsupported{} }

func (unsupported) Enabled() bool  { return false }
func (unsupported) Enable() error  { return ErrUnsupported }
func (unsupported) Disable() error { return nil }
