// Package engine is the clipboard-history core: the clipboard poller, the
// history it feeds, and the permission/hot-key state machine.
//
// A Manager is not safe for concurrent use. Every method except Snapshot and
// Logs must run on the control loop that also runs the Scheduler's callbacks;
// in the daemon that is a sched.Loop and commands reach it through Loop.Do.
// Readers on other goroutines use Snapshot, which returns an immutable copy.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"go.klb.dev/clipkeep/internal/autolaunch"
	"go.klb.dev/clipkeep/internal/clip"
	"go.klb.dev/clipkeep/internal/history"
	"go.klb.dev/clipkeep/internal/hotkey"
	"go.klb.dev/clipkeep/internal/item"
	"go.klb.dev/clipkeep/internal/logging"
	"go.klb.dev/clipkeep/internal/notify"
	"go.klb.dev/clipkeep/internal/permission"
	"go.klb.dev/clipkeep/internal/sched"
	"go.klb.dev/clipkeep/internal/settings"
)

// ErrIndexOutOfRange is returned by PasteItemAtIndex for an index outside
// the history.
var ErrIndexOutOfRange = errors.New("history index out of range")

// Phase is the coarse lifecycle state.
type Phase int

const (
	Initializing Phase = iota
	Ready
	NeedsPermission
	Failed
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case NeedsPermission:
		return "needs-permission"
	case Failed:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the lifecycle state. Message is set only in the Failed phase.
type State struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message,omitempty"`
}

func (s State) String() string {
	if s.Message != "" {
		return s.Phase.String() + ": " + s.Message
	}
	return s.Phase.String()
}

// Config holds the engine's timing and hot-key parameters.
type Config struct {
	PollInterval       time.Duration
	PermissionGrace    time.Duration
	PermissionInterval time.Duration
	PermissionAttempts int
	AutoSaveInterval   time.Duration
	Hotkey             hotkey.Combo
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		PollInterval:       500 * time.Millisecond,
		PermissionGrace:    time.Second,
		PermissionInterval: 500 * time.Millisecond,
		PermissionAttempts: 20,
		AutoSaveInterval:   30 * time.Second,
		Hotkey:             hotkey.Default(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.PermissionGrace < 0 {
		c.PermissionGrace = d.PermissionGrace
	}
	if c.PermissionInterval <= 0 {
		c.PermissionInterval = d.PermissionInterval
	}
	if c.PermissionAttempts <= 0 {
		c.PermissionAttempts = d.PermissionAttempts
	}
	if c.AutoSaveInterval <= 0 {
		c.AutoSaveInterval = d.AutoSaveInterval
	}
	if c.Hotkey.Key == 0 {
		c.Hotkey = d.Hotkey
	}
	return c
}

// Publisher receives UI notifications. *notify.Hub implements it.
type Publisher interface {
	Publish(kind notify.Kind, detail string)
}

// Deps are the capabilities the engine consumes.
type Deps struct {
	Scheduler  sched.Scheduler
	Clipboard  clip.Backend
	Permission permission.Checker
	Hotkeys    hotkey.Registrar
	Settings   settings.Store
	AutoLaunch autolaunch.Registrar
	Notify     Publisher
	// Logs is the ring the UI reads; optional.
	Logs *logging.Sink
	// Now defaults to time.Now.
	Now func() time.Time
}

// Snapshot is an immutable view of the engine for readers on any goroutine.
type Snapshot struct {
	History           []item.Item
	State             State
	Settings          settings.Settings
	PermissionGranted bool
	Monitoring        bool
	Hotkeys           []hotkey.Listener
	FirstRun          bool
}

// Manager owns the history, settings and permission state.
type Manager struct {
	cfg  Config
	deps Deps

	hist     *history.Store
	settings settings.Settings
	dirty    bool
	firstRun bool

	state   State
	granted bool

	// poller
	poll      sched.Timer
	clipReady bool
	lastToken uint64

	// permission retry sequence
	retry        sched.Timer
	retryGen     uint64
	retryAttempt int

	autosave  sched.Timer
	listeners []hotkey.Listener

	snap atomic.Pointer[Snapshot]
}

// New returns a Manager in the Initializing state. Call Start on the control
// loop to bring it up.
func New(cfg Config, deps Deps) *Manager {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Notify == nil {
		deps.Notify = nopPublisher{}
	}
	if deps.Permission == nil {
		deps.Permission = permission.Static(false)
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clip.Headless()
	}
	if deps.Settings == nil {
		deps.Settings = settings.NewMemoryStore(nil)
	}
	m := &Manager{
		cfg:      cfg.withDefaults(),
		deps:     deps,
		hist:     history.New(),
		settings: settings.Default(),
	}
	m.publish()
	return m
}

// Start loads settings, resolves the initial permission state, installs
// hot-keys and begins monitoring. Nothing here is fatal: failures are logged
// and the engine continues with reduced functionality.
func (m *Manager) Start(ctx context.Context) {
	s, firstRun, err := settings.Load(ctx, m.deps.Settings)
	if err != nil {
		slog.Error("loading settings failed, using defaults", "err", err)
	}
	m.settings = s
	m.firstRun = firstRun

	if firstRun {
		slog.Info("first run, enabling auto-launch")
		m.settings.AutoLaunchEnabled = false
		if err := m.setAutoLaunch(true); err != nil {
			slog.Warn("auto-launch left disabled", "err", err)
		}
		if err := m.SaveSettings(ctx); err != nil {
			slog.Error("saving first-run settings failed", "err", err)
		}
	}

	slog.Info("engine starting",
		"max_history", m.settings.MaxHistoryItems,
		"auto_launch", m.settings.AutoLaunchEnabled,
		"hotkey", m.cfg.Hotkey.String(),
	)

	granted, err := m.deps.Permission.Granted()
	switch {
	case err != nil:
		m.fail(err)
	case granted:
		m.granted = true
		m.setState(State{Phase: Ready})
	default:
		slog.Info("input permission not granted, hot-key limited to local and menu")
		m.setState(State{Phase: NeedsPermission})
	}
	m.RegisterHotkey()
	m.StartMonitoring(false)

	m.autosave = m.deps.Scheduler.Every(m.cfg.AutoSaveInterval, m.autoSave)
	m.publish()
}

// Shutdown removes hot-keys, stops every timer and flushes settings.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.UnregisterHotkey()
	m.StopMonitoring()
	m.stopRetry()
	if m.autosave != nil {
		m.autosave.Stop()
		m.autosave = nil
	}
	err := m.SaveSettings(ctx)
	m.publish()
	slog.Info("engine stopped")
	return err
}

// Snapshot returns the most recently published view. Safe from any
// goroutine; the returned slices belong to the caller.
func (m *Manager) Snapshot() Snapshot {
	s := *m.snap.Load()
	s.History = slices.Clone(s.History)
	s.Hotkeys = slices.Clone(s.Hotkeys)
	return s
}

// Logs returns the captured log entries, oldest first. Safe from any goroutine.
func (m *Manager) Logs() []logging.Entry {
	if m.deps.Logs == nil {
		return nil
	}
	return m.deps.Logs.Entries()
}

// publish replaces the snapshot with a copy of the current state.
func (m *Manager) publish() {
	m.snap.Store(&Snapshot{
		History:           m.hist.Snapshot(),
		State:             m.state,
		Settings:          m.settings,
		PermissionGranted: m.granted,
		Monitoring:        m.poll != nil,
		Hotkeys:           slices.Clone(m.listeners),
		FirstRun:          m.firstRun,
	})
}

func (m *Manager) setState(s State) {
	if s == m.state {
		return
	}
	prev := m.state
	m.state = s
	slog.Info("state changed", "from", prev.String(), "to", s.String())
	m.deps.Notify.Publish(notify.StateChanged, s.String())
	m.publish()
}

type nopPublisher struct{}

func (nopPublisher) Publish(notify.Kind, string) {}
