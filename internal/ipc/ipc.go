// Package ipc provides helpers for the local Unix-socket control channel used
// by the CLI (history/paste/status/...) to talk to a running clipkeep daemon.
//
// The channel carries newline-delimited JSON messages (see package message).
package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// ErrAlreadyRunning is returned by Listen when another daemon answers on the
// socket.
var ErrAlreadyRunning = errors.New("clipkeep daemon already running")

const dialTimeout = 2 * time.Second

// SocketPath returns the platform-appropriate path for the control socket.
//
//   - Linux:  $XDG_RUNTIME_DIR/clipkeep.sock
//   - other:  $TMPDIR/clipkeep.sock
//
// $CLIPKEEP_SOCKET overrides both.
func SocketPath() string {
	if s := os.Getenv("CLIPKEEP_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a clipkeep daemon appears to be listening on
// path. It does a cheap dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	c, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a net.Listener on path, removing any stale socket file
// left by a crashed run.
func Listen(path string) (net.Listener, error) {
	if IsRunning(path) {
		return nil, fmt.Errorf("listen %s: %w", path, ErrAlreadyRunning)
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	return ln, nil
}

// Dial connects to the daemon on path.
func Dial(ctx context.Context, path string) (net.Conn, error) {
	d := net.Dialer{Timeout: dialTimeout}
	c, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", path, err)
	}
	return c, nil
}
