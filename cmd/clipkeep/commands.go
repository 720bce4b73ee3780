package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipkeep/internal/control"
	"go.klb.dev/clipkeep/internal/hotkey"
	"go.klb.dev/clipkeep/internal/message"
	"go.klb.dev/clipkeep/internal/notify"
	"go.klb.dev/clipkeep/internal/settings"
)

func newPermissionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Check or request the input-capture permission",
		Long: `The global hot-key needs permission to observe keyboard input outside
clipkeep: Accessibility on macOS, read access to the keyboard device on Linux.

  check    re-query the permission (what app activation does)
  request  show the OS prompt and poll for the answer`,
	}

	check, _ := newClientCmd("check", "Re-query the permission", cobra.NoArgs, func(_ *cobra.Command, v *viper.Viper, _ []string) error {
		return requestStatus(v, &message.Message{Type: message.TypeCheckPermissions})
	})
	request, _ := newClientCmd("request", "Prompt for the permission", cobra.NoArgs, func(_ *cobra.Command, v *viper.Viper, _ []string) error {
		return requestStatus(v, &message.Message{Type: message.TypeRequestPermissions})
	})
	cmd.AddCommand(check, request)
	return cmd
}

func newAutoLaunchCmd() *cobra.Command {
	cmd, _ := newClientCmd("autolaunch <on|off>", "Enable or disable starting at login", cobra.ExactArgs(1), func(_ *cobra.Command, v *viper.Viper, args []string) error {
		enabled, err := parseOnOff(args[0])
		if err != nil {
			return err
		}
		return requestStatus(v, &message.Message{Type: message.TypeAutoLaunch, Enabled: enabled})
	})
	return cmd
}

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Start or stop clipboard monitoring",
	}

	start, _ := newClientCmd("start", "Start polling the clipboard", cobra.NoArgs, func(_ *cobra.Command, v *viper.Viper, _ []string) error {
		return requestStatus(v, &message.Message{Type: message.TypeStartMonitoring, Force: v.GetBool("force")})
	})
	start.Flags().Bool("force", false, "restart the poll timer even if running")

	stop, _ := newClientCmd("stop", "Stop polling the clipboard", cobra.NoArgs, func(_ *cobra.Command, v *viper.Viper, _ []string) error {
		return requestStatus(v, &message.Message{Type: message.TypeStopMonitoring})
	})
	cmd.AddCommand(start, stop)
	return cmd
}

func newSettingsCmd() *cobra.Command {
	cmd, _ := newClientCmd("settings", "Show or change settings", cobra.NoArgs, runSettings)
	cmd.Long = `Without flags, prints the current settings. With --max-items or
--startup-screen, updates them. Changes are persisted at the next save
checkpoint; pass --save to write them immediately.`
	f := cmd.Flags()
	f.Int("max-items", 0, "maximum history length")
	f.String("startup-screen", "", "show the startup screen: on|off")
	f.Bool("save", false, "persist settings now")
	return cmd
}

func runSettings(cmd *cobra.Command, v *viper.Viper, _ []string) error {
	resp, err := call(v, &message.Message{Type: message.TypeSettings})
	if err != nil {
		return err
	}
	s := *resp.Settings

	changed := false
	if cmd.Flags().Changed("max-items") {
		s.MaxHistoryItems = v.GetInt("max-items")
		changed = true
	}
	if cmd.Flags().Changed("startup-screen") {
		on, err := parseOnOff(v.GetString("startup-screen"))
		if err != nil {
			return err
		}
		s.ShowStartupScreen = on
		changed = true
	}
	if changed {
		if resp, err = call(v, &message.Message{Type: message.TypeSettings, Settings: &s}); err != nil {
			return err
		}
	}
	if v.GetBool("save") {
		if _, err := call(v, &message.Message{Type: message.TypeSaveSettings}); err != nil {
			return err
		}
	}

	if v.GetBool("json") {
		return printJSON(resp.Settings)
	}
	printSettings(*resp.Settings)
	return nil
}

func printSettings(s settings.Settings) {
	fmt.Printf("%s = %d\n", settings.KeyMaxHistoryItems, s.MaxHistoryItems)
	fmt.Printf("%s = %t\n", settings.KeyAutoLaunchEnabled, s.AutoLaunchEnabled)
	fmt.Printf("%s = %t\n", settings.KeyShowStartupScreen, s.ShowStartupScreen)
}

func newWatchCmd() *cobra.Command {
	cmd, _ := newClientCmd("watch", "Stream daemon notifications", cobra.NoArgs, func(_ *cobra.Command, v *viper.Viper, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		asJSON := v.GetBool("json")
		return control.Watch(ctx, v.GetString("socket"), func(ev notify.Event) {
			if asJSON {
				_ = printJSON(ev)
				return
			}
			fmt.Printf("%s  %-18s %s\n", ev.Time.Format(time.TimeOnly), ev.Kind, ev.Detail)
		})
	})
	cmd.Long = `Prints notifications as the daemon publishes them: history-changed,
hotkey-activated, permission-granted, dismiss-popover and state-changed.
Runs until interrupted.`
	return cmd
}

func newKeyCmd() *cobra.Command {
	cmd, _ := newClientCmd("key <combo>", "Deliver a key event to the local hot-key filter", cobra.ExactArgs(1), func(_ *cobra.Command, v *viper.Viper, args []string) error {
		req := &message.Message{Type: message.TypeMenu}
		if !v.GetBool("menu") {
			c, err := hotkey.ParseCombo(args[0])
			if err != nil {
				return err
			}
			req = &message.Message{Type: message.TypeKey, Key: &hotkey.Event{Key: c.Key, Mods: c.Mods}}
		} else {
			req.Combo = args[0]
		}
		resp, err := call(v, req)
		if err != nil {
			return err
		}
		if v.GetBool("json") {
			return printJSON(map[string]bool{"consumed": resp.Consumed})
		}
		fmt.Println(yesNo(resp.Consumed, "consumed", "not matched"))
		return nil
	})
	cmd.Long = `Sends a key-down (e.g. "primary+shift+v") through the daemon's in-process
filter, as a presentation layer would. With --menu the combo triggers the
menu equivalent instead.`
	cmd.Flags().Bool("menu", false, "trigger the menu equivalent")
	return cmd
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "enable", "enabled":
		return true, nil
	case "off", "disable", "disabled":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%q: want on or off", s)
	}
	return b, nil
}
