// Package hotkey describes key combinations and the listener capability the
// engine installs them through.
//
// There are three listener scopes:
//
//   - local:  an in-process filter; a matched event is consumed and does not
//     propagate further.
//   - global: a system-wide observer. It needs the input-capture permission
//     and cannot stop the event reaching other applications.
//   - menu:   a menu keyboard equivalent offered when the global path is
//     unavailable.
package hotkey

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"unicode"
)

// Modifier is a bit set of modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModMeta
)

// Primary returns the platform's primary shortcut modifier: Command on macOS,
// Control elsewhere.
func Primary() Modifier {
	if runtime.GOOS == "darwin" {
		return ModMeta
	}
	return ModCtrl
}

func (m Modifier) String() string {
	var parts []string
	for _, n := range []struct {
		bit  Modifier
		name string
	}{{ModCtrl, "ctrl"}, {ModAlt, "alt"}, {ModShift, "shift"}, {ModMeta, "cmd"}} {
		if m&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "+")
}

// Combo is a modifier set plus one non-modifier key.
type Combo struct {
	Mods Modifier `json:"mods"`
	Key  rune     `json:"key"`
}

// Default returns the history shortcut: primary modifier + Shift + V.
func Default() Combo {
	return Combo{Mods: Primary() | ModShift, Key: 'v'}
}

func (c Combo) String() string {
	key := string(c.Key)
	if c.Key == ' ' {
		key = "space"
	}
	if c.Mods == 0 {
		return key
	}
	return c.Mods.String() + "+" + key
}

// Matches reports whether e is exactly this combination.
func (c Combo) Matches(e Event) bool {
	return e.Mods == c.Mods && unicode.ToLower(e.Key) == unicode.ToLower(c.Key)
}

// ParseCombo parses strings like "ctrl+shift+v" or "primary+shift+v".
func ParseCombo(s string) (Combo, error) {
	var c Combo
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		last := i == len(parts)-1
		switch p {
		case "ctrl", "control":
			c.Mods |= ModCtrl
		case "shift":
			c.Mods |= ModShift
		case "alt", "option", "opt":
			c.Mods |= ModAlt
		case "cmd", "command", "meta", "super", "win":
			c.Mods |= ModMeta
		case "primary", "mod":
			c.Mods |= Primary()
		case "space":
			if !last {
				return Combo{}, fmt.Errorf("hotkey %q: key must come last", s)
			}
			c.Key = ' '
		default:
			r := []rune(p)
			if !last || len(r) != 1 || !(unicode.IsLetter(r[0]) || unicode.IsDigit(r[0])) {
				return Combo{}, fmt.Errorf("hotkey %q: unrecognised part %q", s, p)
			}
			c.Key = r[0]
		}
	}
	if c.Key == 0 {
		return Combo{}, fmt.Errorf("hotkey %q: no key", s)
	}
	return c, nil
}

// Event is a key-down delivered to a listener.
type Event struct {
	Key  rune     `json:"key"`
	Mods Modifier `json:"mods"`
}

// Scope identifies the kind of listener.
type Scope int

const (
	ScopeLocal Scope = iota
	ScopeGlobal
	ScopeMenu
)

func (s Scope) String() string {
	switch s {
	case ScopeLocal:
		return "local"
	case ScopeGlobal:
		return "global"
	case ScopeMenu:
		return "menu"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Listener is a handle to an installed listener.
type Listener struct {
	ID    uint64
	Scope Scope
	Combo Combo
}

// ErrGlobalUnsupported is returned by InstallGlobal where no system-wide
// observer exists.
var ErrGlobalUnsupported = errors.New("global hotkey observer not supported on this platform")

// Registrar installs and removes listeners.
type Registrar interface {
	InstallLocal(c Combo, action func()) (Listener, error)
	InstallGlobal(c Combo, action func()) (Listener, error)
	InstallMenu(c Combo, action func()) (Listener, error)
	// Uninstall removes l. Removing an unknown listener is a no-op.
	Uninstall(l Listener) error
}

// Dispatcher is implemented by registrars that accept key events and menu
// activations from the presentation layer.
type Dispatcher interface {
	// Dispatch offers e to the local listeners and reports whether one
	// consumed it.
	Dispatch(e Event) bool
	// TriggerMenu fires the menu equivalent bound to c, if any.
	TriggerMenu(c Combo) bool
}
