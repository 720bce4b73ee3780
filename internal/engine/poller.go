package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"go.klb.dev/clipkeep/internal/clip"
	"go.klb.dev/clipkeep/internal/history"
	"go.klb.dev/clipkeep/internal/item"
	"go.klb.dev/clipkeep/internal/notify"
)

// StartMonitoring starts the clipboard poll timer. If monitoring is already
// running it does nothing unless force is set, in which case the timer is
// restarted and the clipboard cursor re-initialised on the next tick.
func (m *Manager) StartMonitoring(force bool) {
	if m.poll != nil {
		if !force {
			slog.Debug("clipboard monitoring already running")
			return
		}
		m.poll.Stop()
		m.poll = nil
	}
	m.clipReady = false
	m.poll = m.deps.Scheduler.Every(m.cfg.PollInterval, m.Tick)
	slog.Info("clipboard monitoring started",
		"backend", m.deps.Clipboard.Name(),
		"interval", m.cfg.PollInterval,
		"forced", force,
	)
	m.publish()
}

// StopMonitoring cancels the poll timer.
func (m *Manager) StopMonitoring() {
	if m.poll == nil {
		return
	}
	m.poll.Stop()
	m.poll = nil
	slog.Info("clipboard monitoring stopped")
	m.publish()
}

// Tick runs one poll. The first tick after (re)starting only records the
// change token; later ticks classify content whenever the token moves.
func (m *Manager) Tick() {
	cb := m.deps.Clipboard
	if !m.clipReady {
		m.lastToken = cb.ChangeToken()
		m.clipReady = true
		slog.Debug("clipboard cursor initialised", "token", m.lastToken)
		return
	}

	token := cb.ChangeToken()
	if token == m.lastToken {
		return
	}
	m.lastToken = token

	kind, err := m.classify()
	if err != nil {
		slog.Warn("clipboard read failed, change skipped", "err", err)
		return
	}
	if _, ok := kind.(item.Unknown); ok {
		slog.Info("clipboard change observed but content unrecognized", "token", token)
		return
	}
	m.add(item.New(kind, m.deps.Now()))
}

// classify reads the clipboard slots in priority order: text, image, files.
func (m *Manager) classify() (item.Kind, error) {
	cb := m.deps.Clipboard

	text, err := cb.ReadText()
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	if text != "" {
		return item.Text{Value: text}, nil
	}

	data, err := cb.ReadImage()
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > 0 {
		img, err := item.DecodeImage(data)
		if err == nil {
			return img, nil
		}
		slog.Debug("clipboard image not decodable", "size_bytes", len(data), "err", err)
	}

	files, err := cb.ReadFiles()
	if err != nil && !errors.Is(err, clip.ErrUnsupported) {
		return nil, fmt.Errorf("read files: %w", err)
	}
	var paths []string
	for _, p := range files {
		if p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) > 0 {
		return item.FileList{Paths: paths}, nil
	}

	return item.Unknown{}, nil
}

func (m *Manager) add(it item.Item) {
	switch m.hist.Add(it, m.settings.MaxHistoryItems) {
	case history.Added:
		item.Log("clipboard item added", it)
		m.deps.Notify.Publish(notify.HistoryChanged, "added")
		m.publish()
	case history.Duplicate:
		slog.Info("duplicate clipboard item discarded", "kind", it.Kind().Name())
	case history.Rejected:
		slog.Debug("clipboard item rejected", "kind", it.Kind().Name(), "id", it.ID())
	}
}

// PasteItemAtIndex writes history item i back to the clipboard and asks the
// UI to dismiss its popover. An out-of-range index writes nothing and returns
// ErrIndexOutOfRange.
func (m *Manager) PasteItemAtIndex(i int) error {
	it, ok := m.hist.At(i)
	if !ok {
		err := fmt.Errorf("paste index %d (history has %d): %w", i, m.hist.Len(), ErrIndexOutOfRange)
		slog.Warn("paste rejected", "err", err)
		return err
	}

	cb := m.deps.Clipboard
	err := item.Match(it.Kind(),
		func(t item.Text) error { return cb.WriteText(t.Value) },
		func(img item.Image) error { return cb.WriteImage(img.Data) },
		func(f item.FileList) error { return cb.WriteFiles(f.Paths) },
		func(item.Unknown) error { return clip.ErrUnsupported },
	)
	if err != nil {
		slog.Error("paste failed", "index", i, "kind", it.Kind().Name(), "err", err)
		return fmt.Errorf("paste item %d: %w", i, err)
	}

	item.Log("clipboard item pasted", it)
	m.deps.Notify.Publish(notify.DismissPopover, it.ID())
	return nil
}

// ClearHistory empties the history.
func (m *Manager) ClearHistory() {
	n := m.hist.Len()
	m.hist.Clear()
	slog.Info("history cleared", "removed", n)
	m.deps.Notify.Publish(notify.HistoryChanged, "cleared")
	m.publish()
}
