//go:build darwin

package autolaunch

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
)

const launchAgentLabel = "dev.klb.clipkeep"

// launchAgent writes a per-user LaunchAgent plist.
type launchAgent struct {
	exe  string
	args []string
}

func newPlatform(exe string, args []string) Registrar {
	return &launchAgent{exe: exe, args: args}
}

func (a *launchAgent) plistPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "LaunchAgents", launchAgentLabel+".plist")
}

// program returns the launch command; .app bundles go through open(1).
func (a *launchAgent) program() []string {
	if idx := strings.Index(a.exe, ".app/"); idx != -1 {
		return append([]string{"/usr/bin/open", "-a", a.exe[:idx+4], "--args"}, a.args...)
	}
	return append([]string{a.exe}, a.args...)
}

func (a *launchAgent) Enabled() bool {
	_, err := os.Stat(a.plistPath())
	return err == nil
}

func (a *launchAgent) Enable() error {
	var args strings.Builder
	for _, p := range a.program() {
		fmt.Fprintf(&args, "        <string>%s</string>\n", html.EscapeString(p))
	}

	plist := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>%s</string>
    <key>ProgramArguments</key>
    <array>
%s    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <false/>
</dict>
</plist>
`, launchAgentLabel, args.String())

	if err := os.MkdirAll(filepath.Dir(a.plistPath()), 0o755); err != nil {
		return fmt.Errorf("create LaunchAgents dir: %w", err)
	}
	if err := os.WriteFile(a.plistPath(), []byte(plist), 0o644); err != nil {
		return fmt.Errorf("write launch agent: %w", err)
	}
	return nil
}

func (a *launchAgent) Disable() error {
	return removeIfExists(a.plistPath())
}
