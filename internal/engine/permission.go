package engine

import (
	"log/slog"

	"go.klb.dev/clipkeep/internal/hotkey"
	"go.klb.dev/clipkeep/internal/notify"
)

// CheckPermissionsStatus re-queries the input permission. It is idempotent
// and is what lifecycle signals (activation, focus) call.
//
//   - granted, not Ready:  Ready, hot-keys reinstalled, permission-granted sent
//   - not granted, Ready:  NeedsPermission, hot-keys reinstalled without the
//     global observer
//   - otherwise nothing changes
func (m *Manager) CheckPermissionsStatus() {
	granted, err := m.deps.Permission.Granted()
	if err != nil {
		m.fail(err)
		return
	}
	switch {
	case granted && m.state.Phase != Ready:
		m.stopRetry()
		m.grant()
	case !granted && m.state.Phase == Ready:
		slog.Warn("input permission revoked")
		m.granted = false
		m.setState(State{Phase: NeedsPermission})
		m.RegisterHotkey()
	case !granted && m.state.Phase == Failed:
		m.setState(State{Phase: NeedsPermission})
	default:
		slog.Debug("permission unchanged", "granted", granted, "state", m.state.String())
	}
}

// RequestPermissions shows the OS permission prompt and polls for the answer:
// after the grace delay, then every PermissionInterval, for at most
// PermissionAttempts queries. Any sequence already in flight is cancelled
// first, so at most one runs at a time.
func (m *Manager) RequestPermissions() {
	if m.state.Phase == Ready {
		slog.Info("input permission already granted")
		return
	}
	m.stopRetry()

	if err := m.deps.Permission.Request(); err != nil {
		slog.Warn("permission prompt failed", "err", err)
	}

	gen := m.retryGen
	m.retryAttempt = 0
	slog.Info("waiting for input permission",
		"grace", m.cfg.PermissionGrace,
		"interval", m.cfg.PermissionInterval,
		"attempts", m.cfg.PermissionAttempts,
	)
	m.retry = m.deps.Scheduler.After(m.cfg.PermissionGrace, func() {
		if gen != m.retryGen {
			return
		}
		m.retry = m.deps.Scheduler.Every(m.cfg.PermissionInterval, func() { m.pollPermission(gen) })
		m.pollPermission(gen)
	})
}

func (m *Manager) pollPermission(gen uint64) {
	if gen != m.retryGen {
		return
	}
	m.retryAttempt++
	granted, err := m.deps.Permission.Granted()
	switch {
	case err != nil:
		m.stopRetry()
		m.fail(err)
	case granted:
		slog.Info("input permission granted", "attempt", m.retryAttempt)
		m.stopRetry()
		m.grant()
	case m.retryAttempt >= m.cfg.PermissionAttempts:
		slog.Info("timed out waiting for input permission", "attempts", m.retryAttempt)
		m.stopRetry()
	}
}

// stopRetry cancels the retry sequence and invalidates any callback of it
// that is already queued.
func (m *Manager) stopRetry() {
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	m.retryGen++
}

func (m *Manager) grant() {
	m.granted = true
	m.setState(State{Phase: Ready})
	m.RegisterHotkey()
	m.deps.Notify.Publish(notify.PermissionGranted, "")
}

// fail records an unrecoverable permission query failure. Hot-keys fall back
// to the local filter and the menu equivalent.
func (m *Manager) fail(err error) {
	slog.Error("permission query failed", "err", err)
	m.granted = false
	m.setState(State{Phase: Failed, Message: err.Error()})
	m.RegisterHotkey()
}

// RegisterHotkey replaces every listener: the local filter always, the
// global observer when permission is granted, and the menu equivalent
// whenever no global observer ended up installed. Install failures are
// logged and that listener stays absent.
func (m *Manager) RegisterHotkey() {
	m.UnregisterHotkey()

	hk := m.deps.Hotkeys
	if hk == nil {
		return
	}
	c := m.cfg.Hotkey
	m.install(hotkey.ScopeLocal, func() (hotkey.Listener, error) {
		return hk.InstallLocal(c, func() { m.activate(hotkey.ScopeLocal) })
	})
	global := m.granted && m.install(hotkey.ScopeGlobal, func() (hotkey.Listener, error) {
		return hk.InstallGlobal(c, func() { m.activate(hotkey.ScopeGlobal) })
	})
	if !global {
		m.install(hotkey.ScopeMenu, func() (hotkey.Listener, error) {
			return hk.InstallMenu(c, func() { m.activate(hotkey.ScopeMenu) })
		})
	}
	m.publish()
}

func (m *Manager) install(scope hotkey.Scope, fn func() (hotkey.Listener, error)) bool {
	l, err := fn()
	if err != nil {
		slog.Warn("hotkey install failed", "scope", scope.String(), "combo", m.cfg.Hotkey.String(), "err", err)
		return false
	}
	slog.Debug("hotkey installed", "scope", scope.String(), "combo", m.cfg.Hotkey.String(), "id", l.ID)
	m.listeners = append(m.listeners, l)
	return true
}

// UnregisterHotkey removes every listener. Calling it with none installed is
// a no-op.
func (m *Manager) UnregisterHotkey() {
	if len(m.listeners) == 0 {
		return
	}
	for _, l := range m.listeners {
		if err := m.deps.Hotkeys.Uninstall(l); err != nil {
			slog.Warn("hotkey uninstall failed", "scope", l.Scope.String(), "err", err)
		}
	}
	m.listeners = nil
	m.publish()
}

func (m *Manager) activate(scope hotkey.Scope) {
	slog.Info("history hotkey activated", "scope", scope.String())
	m.deps.Notify.Publish(notify.HotkeyActivated, scope.String())
}

// DispatchKey offers a key event from the presentation layer to the local
// filter and reports whether it was consumed.
func (m *Manager) DispatchKey(e hotkey.Event) bool {
	d, ok := m.deps.Hotkeys.(hotkey.Dispatcher)
	if !ok {
		return false
	}
	return d.Dispatch(e)
}

// TriggerMenu fires the menu equivalent bound to c, if one is installed.
func (m *Manager) TriggerMenu(c hotkey.Combo) bool {
	d, ok := m.deps.Hotkeys.(hotkey.Dispatcher)
	if !ok {
		return false
	}
	return d.TriggerMenu(c)
}
