// Package control serves the engine over the local control socket. Commands
// are run on the engine's control loop; reads come from snapshots.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"go.klb.dev/clipkeep/internal/engine"
	"go.klb.dev/clipkeep/internal/hotkey"
	"go.klb.dev/clipkeep/internal/item"
	"go.klb.dev/clipkeep/internal/message"
	"go.klb.dev/clipkeep/internal/notify"
	"go.klb.dev/clipkeep/internal/wire"
)

const (
	readTimeout = 10 * time.Second
	watchBuffer = 64
)

// Runner runs fn on the control loop and waits for it. *sched.Loop
// implements it.
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// Server answers control requests.
type Server struct {
	run     Runner
	eng     *engine.Manager
	hub     *notify.Hub
	backend string
	started time.Time

	watchers atomic.Uint64
}

// New returns a Server. backend is reported in STATUS responses.
func New(run Runner, eng *engine.Manager, hub *notify.Hub, backend string) *Server {
	return &Server{
		run:     run,
		eng:     eng,
		hub:     hub,
		backend: backend,
		started: time.Now(),
	}
}

// Serve accepts connections until ctx is cancelled or ln fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("control accept: %w", err)
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	wc := wire.New(conn)

	wc.SetReadDeadline(readTimeout)
	msg, err := wc.ReadMsg()
	if err != nil {
		slog.Debug("control: read failed", "err", err)
		return
	}
	wc.SetReadDeadline(0)

	if msg.Type == message.TypeWatch {
		s.watch(ctx, wc)
		return
	}

	resp := s.Handle(ctx, msg)
	if err := wc.WriteMsg(resp); err != nil {
		slog.Debug("control: write failed", "type", msg.Type, "err", err)
	}
}

// Handle answers one request. WATCH is only meaningful on a connection and
// is rejected here.
func (s *Server) Handle(ctx context.Context, msg *message.Message) *message.Message {
	slog.Debug("control: request", "type", msg.Type)

	resp := msg.Reply()
	var err error
	switch msg.Type {
	case message.TypeHistory:
		resp.Items = items(s.eng.Snapshot().History, msg.Full)

	case message.TypePaste:
		err = s.exec(ctx, func() error { return s.eng.PasteItemAtIndex(msg.Index) })

	case message.TypeClear:
		err = s.exec(ctx, func() error { s.eng.ClearHistory(); return nil })

	case message.TypeStatus:
		resp.Status = s.status()

	case message.TypeLogs:
		resp.Logs = s.eng.Logs()

	case message.TypeCheckPermissions, message.TypeActivate:
		err = s.exec(ctx, func() error { s.eng.CheckPermissionsStatus(); return nil })
		resp.Status = s.status()

	case message.TypeRequestPermissions:
		err = s.exec(ctx, func() error { s.eng.RequestPermissions(); return nil })
		resp.Status = s.status()

	case message.TypeAutoLaunch:
		err = s.exec(ctx, func() error { return s.eng.ToggleAutoLaunch(msg.Enabled) })
		resp.Status = s.status()

	case message.TypeStartMonitoring:
		err = s.exec(ctx, func() error { s.eng.StartMonitoring(msg.Force); return nil })
		resp.Status = s.status()

	case message.TypeStopMonitoring:
		err = s.exec(ctx, func() error { s.eng.StopMonitoring(); return nil })
		resp.Status = s.status()

	case message.TypeSettings:
		if msg.Settings != nil {
			next := *msg.Settings
			err = s.exec(ctx, func() error { return s.eng.UpdateSettings(next) })
		}
		cur := s.eng.Snapshot().Settings
		resp.Settings = &cur

	case message.TypeSaveSettings:
		err = s.exec(ctx, func() error { return s.eng.SaveSettings(ctx) })

	case message.TypeKey:
		if msg.Key == nil {
			return msg.Fail(errors.New("missing key event"))
		}
		ev := *msg.Key
		resp.Consumed, err = onLoop(ctx, s.run, func() bool { return s.eng.DispatchKey(ev) })

	case message.TypeMenu:
		c, cerr := s.menuCombo(msg.Combo)
		if cerr != nil {
			return msg.Fail(cerr)
		}
		resp.Consumed, err = onLoop(ctx, s.run, func() bool { return s.eng.TriggerMenu(c) })

	default:
		return msg.Fail(fmt.Errorf("unknown message type %q", msg.Type))
	}

	if err != nil {
		return msg.Fail(err)
	}
	return resp
}

// exec runs an engine command on the control loop and returns the loop's
// error or the command's.
func (s *Server) exec(ctx context.Context, fn func() error) error {
	opErr, err := onLoop(ctx, s.run, fn)
	if err != nil {
		return err
	}
	return opErr
}

// onLoop runs fn on the control loop and returns its result. The result
// travels over a buffered channel, so a closure that only runs after ctx
// has ended writes nothing the caller still reads.
func onLoop[T any](ctx context.Context, run Runner, fn func() T) (T, error) {
	out := make(chan T, 1)
	if err := run.Do(ctx, func() { out <- fn() }); err != nil {
		var zero T
		return zero, err
	}
	return <-out, nil
}

// menuCombo parses s, or picks the installed menu equivalent when s is empty.
func (s *Server) menuCombo(str string) (hotkey.Combo, error) {
	if str != "" {
		return hotkey.ParseCombo(str)
	}
	for _, l := range s.eng.Snapshot().Hotkeys {
		if l.Scope == hotkey.ScopeMenu {
			return l.Combo, nil
		}
	}
	return hotkey.Combo{}, errors.New("no menu equivalent installed")
}

func (s *Server) status() *message.Status {
	snap := s.eng.Snapshot()
	hk := make([]string, len(snap.Hotkeys))
	for i, l := range snap.Hotkeys {
		hk[i] = l.Scope.String() + ":" + l.Combo.String()
	}
	return &message.Status{
		Phase:             snap.State.Phase.String(),
		Message:           snap.State.Message,
		PermissionGranted: snap.PermissionGranted,
		Monitoring:        snap.Monitoring,
		HistoryLen:        len(snap.History),
		Hotkeys:           hk,
		Settings:          snap.Settings,
		Backend:           s.backend,
		Subscribers:       s.hub.Count(),
		FirstRun:          snap.FirstRun,
		StartedAt:         s.started,
	}
}

// watch streams notifications until the client hangs up or ctx ends.
func (s *Server) watch(ctx context.Context, wc *wire.Conn) {
	sub := notify.NewChan(fmt.Sprintf("watch:%d", s.watchers.Add(1)), watchBuffer)
	s.hub.Register(sub)
	defer s.hub.Unregister(sub)

	if err := wc.WriteMsg(&message.Message{Type: message.TypeWatch, OK: true}); err != nil {
		return
	}

	// Any read result, including EOF, means the client is gone.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, err := wc.ReadMsg(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-gone:
			return
		case ev := <-sub.C:
			if err := wc.WriteMsg(&message.Message{Type: message.TypeEvent, Event: &ev}); err != nil {
				slog.Debug("control: watcher write failed", "subscriber", sub.ID(), "err", err)
				return
			}
		}
	}
}

func items(hist []item.Item, full bool) []message.Item {
	out := make([]message.Item, len(hist))
	for i, it := range hist {
		out[i] = message.NewItem(it, full)
	}
	return out
}
