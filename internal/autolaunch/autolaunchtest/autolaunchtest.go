// Package autolaunchtest provides an in-memory autolaunch.Registrar.
package autolaunchtest

import "sync"

// Fake records auto-launch state in memory.
type Fake struct {
	mu      sync.Mutex
	enabled bool
	calls   []bool

	// Err, when set, is returned by Enable and Disable without changing state.
	Err error
}

func (f *Fake) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *Fake) Enable() error  { return f.set(true) }
func (f *Fake) Disable() error { return f.set(false) }

func (f *Fake) set(v bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, v)
	if f.Err != nil {
		return f.Err
	}
	f.enabled = v
	return nil
}

// Calls returns every requested state in order, including failed ones.
func (f *Fake) Calls() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.calls...)
}
