//go:build windows

package ipc

import (
	"os"
	"path/filepath"
)

// Windows 10 and later support AF_UNIX sockets on the filesystem.
func socketPath() string {
	return filepath.Join(os.TempDir(), "clipkeep.sock")
}
