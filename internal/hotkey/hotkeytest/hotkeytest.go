// Package hotkeytest provides a deterministic hotkey.Registrar for tests.
package hotkeytest

import (
	"slices"

	"go.klb.dev/clipkeep/internal/hotkey"
)

// Fake records listeners without touching any platform API.
type Fake struct {
	nextID  uint64
	active  map[uint64]entry
	history []hotkey.Listener

	// Fail, when set for a scope, is returned by that scope's Install call.
	Fail map[hotkey.Scope]error
}

type entry struct {
	l      hotkey.Listener
	action func()
}

var _ hotkey.Registrar = (*Fake)(nil)

// New returns an empty Fake.
func New() *Fake {
	return &Fake{active: make(map[uint64]entry), Fail: make(map[hotkey.Scope]error)}
}

func (f *Fake) install(scope hotkey.Scope, c hotkey.Combo, action func()) (hotkey.Listener, error) {
	if err := f.Fail[scope]; err != nil {
		return hotkey.Listener{}, err
	}
	f.nextID++
	l := hotkey.Listener{ID: f.nextID, Scope: scope, Combo: c}
	f.active[l.ID] = entry{l, action}
	f.history = append(f.history, l)
	return l, nil
}

func (f *Fake) InstallLocal(c hotkey.Combo, action func()) (hotkey.Listener, error) {
	return f.install(hotkey.ScopeLocal, c, action)
}

func (f *Fake) InstallGlobal(c hotkey.Combo, action func()) (hotkey.Listener, error) {
	return f.install(hotkey.ScopeGlobal, c, action)
}

func (f *Fake) InstallMenu(c hotkey.Combo, action func()) (hotkey.Listener, error) {
	return f.install(hotkey.ScopeMenu, c, action)
}

func (f *Fake) Uninstall(l hotkey.Listener) error {
	delete(f.active, l.ID)
	return nil
}

// Active returns the number of installed listeners of scope.
func (f *Fake) Active(scope hotkey.Scope) int {
	n := 0
	for _, e := range f.active {
		if e.l.Scope == scope {
			n++
		}
	}
	return n
}

// Installs returns how many listeners of scope were ever installed.
func (f *Fake) Installs(scope hotkey.Scope) int {
	n := 0
	for _, l := range f.history {
		if l.Scope == scope {
			n++
		}
	}
	return n
}

// Fire runs the action of every active listener of scope and returns how
// many fired.
func (f *Fake) Fire(scope hotkey.Scope) int {
	var ids []uint64
	for id, e := range f.active {
		if e.l.Scope == scope {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		f.active[id].action()
	}
	return len(ids)
}
