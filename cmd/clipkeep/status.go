package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipkeep/internal/message"
)

func newStatusCmd() *cobra.Command {
	cmd, _ := newClientCmd("status", "Show daemon state", cobra.NoArgs, func(_ *cobra.Command, v *viper.Viper, _ []string) error {
		return requestStatus(v, &message.Message{Type: message.TypeStatus})
	})
	cmd.Long = `Displays the daemon's lifecycle state, input permission, hot-key listeners
and settings.`
	return cmd
}

// requestStatus sends req and prints the Status carried in the response.
func requestStatus(v *viper.Viper, req *message.Message) error {
	resp, err := call(v, req)
	if err != nil {
		return err
	}
	if resp.Status == nil {
		return nil
	}
	if v.GetBool("json") {
		return printJSON(resp.Status)
	}
	printStatus(resp.Status, v.GetString("socket"))
	return nil
}

func printStatus(s *message.Status, socket string) {
	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)

	state := s.Phase
	if s.Message != "" {
		state += " (" + s.Message + ")"
	}
	fmt.Fprintf(w, "State:\t%s\n", state)
	fmt.Fprintf(w, "Permission:\t%s\n", yesNo(s.PermissionGranted, "granted", "not granted"))
	fmt.Fprintf(w, "Monitoring:\t%s\n", yesNo(s.Monitoring, "on", "off"))
	fmt.Fprintf(w, "Backend:\t%s\n", s.Backend)
	fmt.Fprintf(w, "Socket:\t%s\n", socket)
	fmt.Fprintf(w, "Started:\t%s (%s)\n", s.StartedAt.Format(time.RFC3339), fmtAge(s.StartedAt))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "History:\t%d / %d\n", s.HistoryLen, s.Settings.MaxHistoryItems)
	hk := "-"
	if len(s.Hotkeys) > 0 {
		hk = strings.Join(s.Hotkeys, ", ")
	}
	fmt.Fprintf(w, "Hot-keys:\t%s\n", hk)
	fmt.Fprintf(w, "Auto-launch:\t%s\n", yesNo(s.Settings.AutoLaunchEnabled, "enabled", "disabled"))
	fmt.Fprintf(w, "Watchers:\t%d\n", s.Subscribers)
	_ = w.Flush()
}

func yesNo(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Format("15:04:05")
}

func newLogsCmd() *cobra.Command {
	cmd, _ := newClientCmd("logs", "Print the daemon's recent log entries", cobra.NoArgs, func(_ *cobra.Command, v *viper.Viper, _ []string) error {
		resp, err := call(v, &message.Message{Type: message.TypeLogs})
		if err != nil {
			return err
		}
		if v.GetBool("json") {
			return printJSON(resp.Logs)
		}
		for _, e := range resp.Logs {
			fmt.Printf("%s  %s\n", e.Time.Format("15:04:05.000"), e.Message)
		}
		return nil
	})
	return cmd
}
