// clipkeep: clipboard history daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/clipkeep/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "clipkeep",
		Short: "Clipboard history daemon",
		Long: `clipkeep watches the system clipboard and keeps a bounded, newest-first
history of text, images and file lists. A global hot-key (primary modifier +
Shift + V) brings the history up once input-capture permission is granted.

Run "clipkeep daemon" at login. The other sub-commands talk to the running
daemon over its control socket.

Config file search order (first found wins, --config skips the search):
  $XDG_CONFIG_HOME/clipkeep/clipkeep.toml
  /etc/clipkeep/clipkeep.toml

All flags can be set via CLIPKEEP_<FLAG> env vars (dashes become
underscores) or config-file keys.
See "clipkeep daemon --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newDaemonCmd(),
		newHistoryCmd(),
		newPasteCmd(),
		newClearCmd(),
		newStatusCmd(),
		newLogsCmd(),
		newPermissionsCmd(),
		newAutoLaunchCmd(),
		newMonitorCmd(),
		newSettingsCmd(),
		newWatchCmd(),
		newKeyCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipkeep %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string, sink *logging.Sink) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level, sink)
}
