package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipkeep/internal/autolaunch"
	"go.klb.dev/clipkeep/internal/clip"
	"go.klb.dev/clipkeep/internal/control"
	"go.klb.dev/clipkeep/internal/engine"
	"go.klb.dev/clipkeep/internal/hotkey"
	"go.klb.dev/clipkeep/internal/ipc"
	"go.klb.dev/clipkeep/internal/logging"
	"go.klb.dev/clipkeep/internal/notify"
	"go.klb.dev/clipkeep/internal/permission"
	"go.klb.dev/clipkeep/internal/sched"
	"go.klb.dev/clipkeep/internal/settings"
)

const shutdownTimeout = 5 * time.Second

func newDaemonCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the clipboard history daemon",
		Long: `Starts clipkeep. The daemon polls the system clipboard, keeps the history,
installs the history hot-key and serves the control socket used by the other
sub-commands.

Config file (first found wins, --config skips the search):
  $XDG_CONFIG_HOME/clipkeep/clipkeep.toml
  /etc/clipkeep/clipkeep.toml

Every flag has an environment override: --poll-interval is
CLIPKEEP_POLL_INTERVAL.

Precedence (lowest → highest): defaults → config file → CLIPKEEP_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runDaemon(v) },
	}

	d := engine.DefaultConfig()
	f := cmd.Flags()
	f.String("db", settings.DefaultPath(), "settings database path")
	f.Bool("no-persist", false, "keep settings in memory only")
	f.Bool("headless", false, "disable system clipboard access (no-op backend)")
	f.String("hotkey", "primary+shift+v", "history hot-key")
	f.Duration("poll-interval", d.PollInterval, "clipboard poll interval")
	f.Duration("permission-grace", d.PermissionGrace, "delay before polling after a permission prompt")
	f.Duration("permission-interval", d.PermissionInterval, "permission poll interval")
	f.Int("permission-attempts", d.PermissionAttempts, "permission polls before giving up")
	f.Duration("autosave-interval", d.AutoSaveInterval, "settings auto-save interval")
	f.Int("log-buffer", logging.DefaultSinkSize, "log entries kept for \"clipkeep logs\"")
	addSocketFlag(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(v *viper.Viper) error {
	sink := logging.NewSink(v.GetInt("log-buffer"))
	setupLogging(v, sink)

	combo, err := hotkey.ParseCombo(v.GetString("hotkey"))
	if err != nil {
		return err
	}
	cfg := engine.Config{
		PollInterval:       v.GetDuration("poll-interval"),
		PermissionGrace:    v.GetDuration("permission-grace"),
		PermissionInterval: v.GetDuration("permission-interval"),
		PermissionAttempts: v.GetInt("permission-attempts"),
		AutoSaveInterval:   v.GetDuration("autosave-interval"),
		Hotkey:             combo,
	}

	var store settings.Store = settings.NewMemoryStore(nil)
	dbPath := "memory"
	if !v.GetBool("no-persist") {
		db, err := settings.OpenSQLite(v.GetString("db"))
		if err != nil {
			return err
		}
		defer db.Close()
		store, dbPath = db, db.Path()
	}

	socket := v.GetString("socket")
	ln, err := ipc.Listen(socket)
	if err != nil {
		return err
	}
	defer ln.Close()

	slog.Info("clipkeep daemon starting",
		"version", Version,
		"socket", socket,
		"db", dbPath,
		"hotkey", combo.String(),
	)

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	loop := sched.NewLoop(64)
	go loop.Run(loopCtx)

	backend := clip.New(v.GetBool("headless"))
	defer backend.Close()

	hub := notify.New()
	eng := engine.New(cfg, engine.Deps{
		Scheduler:  loop,
		Clipboard:  backend,
		Permission: permission.New(),
		Hotkeys:    hotkey.NewSystem(func(fn func()) { loop.Post(fn) }),
		Settings:   store,
		AutoLaunch: autolaunch.New("", "daemon"),
		Notify:     hub,
		Logs:       sink,
	})
	if err := loop.Do(loopCtx, func() { eng.Start(loopCtx) }); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := control.New(loop, eng, hub, backend.Name())
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, ln) }()

	slog.Info("clipkeep daemon running", "backend", backend.Name())

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-served:
		if err != nil {
			slog.Error("control socket failed", "err", err)
		}
		stop()
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var shutdownErr error
	if err := loop.Do(sctx, func() { shutdownErr = eng.Shutdown(sctx) }); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return shutdownErr
}
