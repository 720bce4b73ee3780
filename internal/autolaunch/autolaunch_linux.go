//go:build linux

package autolaunch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// xdgAutostart writes an XDG autostart desktop entry.
type xdgAutostart struct {
	exe  string
	args []string
	dir  string // overrides the autostart directory in tests
}

func newPlatform(exe string, args []string) Registrar {
	return &xdgAutostart{exe: exe, args: args}
}

func (a *xdgAutostart) autostartDir() string {
	if a.dir != "" {
		return a.dir
	}
	config := os.Getenv("XDG_CONFIG_HOME")
	if config == "" {
		home, _ := os.UserHomeDir()
		config = filepath.Join(home, ".config")
	}
	return filepath.Join(config, "autostart")
}

func (a *xdgAutostart) desktopFilePath() string {
	return filepath.Join(a.autostartDir(), "clipkeep.desktop")
}

func (a *xdgAutostart) Enabled() bool {
	_, err := os.Stat(a.desktopFilePath())
	return err == nil
}

func (a *xdgAutostart) Enable() error {
	if err := os.MkdirAll(a.autostartDir(), 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}

	exec := make([]string, 0, 1+len(a.args))
	for _, arg := range append([]string{a.exe}, a.args...) {
		exec = append(exec, execQuote(arg))
	}
	entry := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=clipkeep
Comment=Clipboard history
Exec=%s
Terminal=false
Categories=Utility;
X-GNOME-Autostart-enabled=true
`, strings.Join(exec, " "))

	if err := os.WriteFile(a.desktopFilePath(), []byte(entry), 0o644); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}
	return nil
}

func (a *xdgAutostart) Disable() error {
	return removeIfExists(a.desktopFilePath())
}

// execReserved are the characters that force an Exec argument into quotes.
const execReserved = " \t\n\"'\\><~|&;$*?#()`"

// execQuote renders one Exec argument. Field codes are escaped as %%. Inside
// quotes ", `, $ and \ take a backslash, and because the key is also a string
// value every backslash written is doubled once more.
func execQuote(arg string) string {
	arg = strings.ReplaceAll(arg, "%", "%%")
	if arg != "" && !strings.ContainsAny(arg, execReserved) {
		return arg
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range arg {
		switch r {
		case '"', '`', '$':
			b.WriteString(`\\`)
		case '\\':
			b.WriteString(`\\\`)
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
