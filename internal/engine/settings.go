package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.klb.dev/clipkeep/internal/autolaunch"
	"go.klb.dev/clipkeep/internal/notify"
	"go.klb.dev/clipkeep/internal/settings"
)

const autoSaveTimeout = 5 * time.Second

// ToggleAutoLaunch registers or removes the login entry. On failure the flag
// keeps its previous value and the error is returned.
func (m *Manager) ToggleAutoLaunch(enabled bool) error {
	if err := m.setAutoLaunch(enabled); err != nil {
		return err
	}
	m.publish()
	return nil
}

func (m *Manager) setAutoLaunch(enabled bool) error {
	if m.deps.AutoLaunch == nil {
		return fmt.Errorf("auto-launch: %w", autolaunch.ErrUnsupported)
	}
	if err := autolaunch.Set(m.deps.AutoLaunch, enabled); err != nil {
		slog.Error("auto-launch registration failed", "enabled", enabled, "err", err)
		return fmt.Errorf("auto-launch: %w", err)
	}
	if m.settings.AutoLaunchEnabled != enabled {
		m.settings.AutoLaunchEnabled = enabled
		m.dirty = true
	}
	slog.Info("auto-launch updated", "enabled", enabled)
	return nil
}

// UpdateSettings applies s. A lower history limit truncates immediately and
// a changed auto-launch flag goes through ToggleAutoLaunch. Settings are
// persisted at the next save checkpoint, not here.
func (m *Manager) UpdateSettings(s settings.Settings) error {
	s = s.Validate()

	var errs []error
	if s.AutoLaunchEnabled != m.settings.AutoLaunchEnabled {
		errs = append(errs, m.setAutoLaunch(s.AutoLaunchEnabled))
	}
	if s.MaxHistoryItems != m.settings.MaxHistoryItems || s.ShowStartupScreen != m.settings.ShowStartupScreen {
		m.settings.MaxHistoryItems = s.MaxHistoryItems
		m.settings.ShowStartupScreen = s.ShowStartupScreen
		m.dirty = true
	}
	if dropped := m.hist.Truncate(m.settings.MaxHistoryItems); dropped > 0 {
		slog.Info("history truncated", "dropped", dropped, "max", m.settings.MaxHistoryItems)
		m.deps.Notify.Publish(notify.HistoryChanged, "truncated")
	}
	m.publish()
	return errors.Join(errs...)
}

// SaveSettings writes the settings and the launch marker.
func (m *Manager) SaveSettings(ctx context.Context) error {
	if err := settings.Save(ctx, m.deps.Settings, m.settings); err != nil {
		slog.Error("saving settings failed", "err", err)
		return err
	}
	m.dirty = false
	slog.Debug("settings saved")
	return nil
}

func (m *Manager) autoSave() {
	if !m.dirty {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), autoSaveTimeout)
	defer cancel()
	_ = m.SaveSettings(ctx)
}
