package control

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipkeep/internal/autolaunch/autolaunchtest"
	"go.klb.dev/clipkeep/internal/clip/cliptest"
	"go.klb.dev/clipkeep/internal/engine"
	"go.klb.dev/clipkeep/internal/hotkey"
	"go.klb.dev/clipkeep/internal/ipc"
	"go.klb.dev/clipkeep/internal/message"
	"go.klb.dev/clipkeep/internal/notify"
	"go.klb.dev/clipkeep/internal/permission/permissiontest"
	"go.klb.dev/clipkeep/internal/sched"
	"go.klb.dev/clipkeep/internal/sched/schedtest"
	"go.klb.dev/clipkeep/internal/settings"
)

type fixture struct {
	loop *sched.Loop
	clip *cliptest.Fake
	eng  *engine.Manager
	hub  *notify.Hub
	srv  *Server
}

// newFixture runs an engine on a real control loop. Timers use a fake
// scheduler that is never advanced; tests drive ticks explicitly.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	f := &fixture{
		loop: sched.NewLoop(16),
		clip: cliptest.New(),
		hub:  notify.New(),
	}
	go f.loop.Run(ctx)

	f.eng = engine.New(engine.DefaultConfig(), engine.Deps{
		Scheduler:  schedtest.New(),
		Clipboard:  f.clip,
		Permission: permissiontest.New(false),
		Hotkeys:    hotkey.NewSystem(func(fn func()) { f.loop.Post(fn) }),
		Settings:   settings.NewMemoryStore(map[string]string{settings.KeyHasLaunchedBefore: "true"}),
		AutoLaunch: &autolaunchtest.Fake{},
		Notify:     f.hub,
	})
	require.NoError(t, f.loop.Do(ctx, func() { f.eng.Start(ctx) }))
	f.srv = New(f.loop, f.eng, f.hub, f.clip.Name())
	return f
}

func (f *fixture) copyText(t *testing.T, s string) {
	t.Helper()
	require.NoError(t, f.loop.Do(context.Background(), func() {
		f.eng.Tick() // initialises on first use
		f.clip.SetText(s)
		f.eng.Tick()
	}))
}

func (f *fixture) handle(t *testing.T, msg *message.Message) *message.Message {
	t.Helper()
	return f.srv.Handle(context.Background(), msg)
}

func TestHandleStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.handle(t, &message.Message{Type: message.TypeStatus})
	require.True(t, resp.OK, resp.Error)
	require.NotNil(t, resp.Status)
	assert.Equal(t, "needs-permission", resp.Status.Phase)
	assert.False(t, resp.Status.PermissionGranted)
	assert.True(t, resp.Status.Monitoring)
	assert.Equal(t, "fake", resp.Status.Backend)
	assert.Len(t, resp.Status.Hotkeys, 2)
}

func TestHandleHistoryPasteClear(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.copyText(t, "first")
	f.copyText(t, "second")

	resp := f.handle(t, &message.Message{Type: message.TypeHistory})
	require.True(t, resp.OK)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "second", resp.Items[0].Text)
	assert.Equal(t, "text", resp.Items[0].Kind)

	resp = f.handle(t, &message.Message{Type: message.TypePaste, Index: 1})
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, []cliptest.Write{{Slot: "text", Text: "first"}}, f.clip.Writes())

	resp = f.handle(t, &message.Message{Type: message.TypePaste, Index: 5})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, engine.ErrIndexOutOfRange.Error())
	require.Error(t, resp.Err())

	resp = f.handle(t, &message.Message{Type: message.TypeClear})
	require.True(t, resp.OK)
	assert.Empty(t, f.eng.Snapshot().History)
}

func TestHandleSettings(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	for _, s := range []string{"a", "b", "c"} {
		f.copyText(t, s)
	}

	resp := f.handle(t, &message.Message{Type: message.TypeSettings})
	require.True(t, resp.OK)
	assert.Equal(t, settings.DefaultMaxHistoryItems, resp.Settings.MaxHistoryItems)

	resp = f.handle(t, &message.Message{
		Type:     message.TypeSettings,
		Settings: &settings.Settings{MaxHistoryItems: 1, ShowStartupScreen: true},
	})
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, 1, resp.Settings.MaxHistoryItems)
	assert.Len(t, f.eng.Snapshot().History, 1)

	resp = f.handle(t, &message.Message{Type: message.TypeSaveSettings})
	assert.True(t, resp.OK, resp.Error)
}

func TestHandleKeyAndMenu(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.handle(t, &message.Message{Type: message.TypeKey})
	assert.False(t, resp.OK)

	c := hotkey.Default()
	resp = f.handle(t, &message.Message{Type: message.TypeKey, Key: &hotkey.Event{Key: c.Key, Mods: c.Mods}})
	require.True(t, resp.OK)
	assert.True(t, resp.Consumed)

	resp = f.handle(t, &message.Message{Type: message.TypeKey, Key: &hotkey.Event{Key: 'x', Mods: c.Mods}})
	require.True(t, resp.OK)
	assert.False(t, resp.Consumed)

	resp = f.handle(t, &message.Message{Type: message.TypeMenu})
	require.True(t, resp.OK, resp.Error)
	assert.True(t, resp.Consumed)

	resp = f.handle(t, &message.Message{Type: message.TypeMenu, Combo: "nonsense+"})
	assert.False(t, resp.OK)
}

func TestHandleMonitoringAndPermissions(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.handle(t, &message.Message{Type: message.TypeStopMonitoring})
	require.True(t, resp.OK)
	assert.False(t, resp.Status.Monitoring)

	resp = f.handle(t, &message.Message{Type: message.TypeStartMonitoring, Force: true})
	require.True(t, resp.OK)
	assert.True(t, resp.Status.Monitoring)

	resp = f.handle(t, &message.Message{Type: message.TypeActivate})
	require.True(t, resp.OK)
	assert.Equal(t, "needs-permission", resp.Status.Phase)

	resp = f.handle(t, &message.Message{Type: message.TypeRequestPermissions})
	require.True(t, resp.OK)

	resp = f.handle(t, &message.Message{Type: message.TypeAutoLaunch, Enabled: true})
	require.True(t, resp.OK, resp.Error)
	assert.True(t, resp.Status.Settings.AutoLaunchEnabled)
}

func TestHandleUnknown(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	resp := f.handle(t, &message.Message{Type: "BOGUS"})
	assert.False(t, resp.OK)
	assert.Equal(t, message.Type("BOGUS"), resp.Type)
	assert.Contains(t, resp.Error, "unknown message type")
}

func TestServeOverSocket(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	dir, err := os.MkdirTemp("", "ck")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	path := filepath.Join(dir, "s.sock")

	ln, err := ipc.Listen(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- f.srv.Serve(ctx, ln) }()

	resp, err := Call(ctx, path, &message.Message{Type: message.TypeStatus})
	require.NoError(t, err)
	assert.Equal(t, "needs-permission", resp.Status.Phase)

	events := make(chan notify.Event, 8)
	watchCtx, stopWatch := context.WithCancel(ctx)
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- Watch(watchCtx, path, func(ev notify.Event) { events <- ev })
	}()
	require.Eventually(t, func() bool { return f.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err = Call(ctx, path, &message.Message{Type: message.TypeClear})
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, notify.HistoryChanged, ev.Kind)
		assert.Equal(t, "cleared", ev.Detail)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	stopWatch()
	require.NoError(t, <-watchDone)
	require.Eventually(t, func() bool { return f.hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)

	_, err = Call(ctx, path, &message.Message{Type: message.TypePaste, Index: 3})
	require.Error(t, err)

	cancel()
	require.NoError(t, <-served)

	_, err = net.Dial("unix", path)
	assert.Error(t, err)
}

// lateRunner gives up at once and runs the command afterwards, the way
// Loop.Do behaves when ctx ends before the loop reaches the task.
type lateRunner struct {
	pending chan func()
}

func (r *lateRunner) Do(_ context.Context, fn func()) error {
	r.pending <- fn
	return context.Canceled
}

func TestHandleCommandRunsAfterCancel(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	run := &lateRunner{pending: make(chan func(), 1)}
	srv := New(run, f.eng, f.hub, "fake")

	c := hotkey.Default()
	resp := srv.Handle(context.Background(), &message.Message{Type: message.TypeKey, Key: &hotkey.Event{Key: c.Key, Mods: c.Mods}})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, context.Canceled.Error())

	late := <-run.pending
	require.NoError(t, f.loop.Do(context.Background(), late))
	assert.False(t, resp.Consumed, "a command finishing late does not touch the response")
}
