// Package clip provides typed access to the system clipboard. Build
// constraints select the implementation:
//
//	clip_system.go: golang.design/x/clipboard (darwin, linux, windows)
//	clip_darwin.go: cgo NSPasteboard changeCount and file URLs
//	clip_nodarwin.go: watch-driven change token, no file slot
//	clip_other.go: headless fallback for everything else
package clip

import (
	"errors"
	"log/slog"
)

// ErrUnsupported is returned when a backend has no slot for a content kind.
var ErrUnsupported = errors.New("clipboard slot not supported by backend")

// Backend is the interface that all clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ChangeToken returns an opaque counter that changes whenever the
	// clipboard contents change.
	ChangeToken() uint64

	// ReadText returns the plain-text slot, or "" if it is empty.
	ReadText() (string, error)
	// ReadImage returns the encoded bitmap slot, or nil if it is empty.
	ReadImage() ([]byte, error)
	// ReadFiles returns the file-reference slot as absolute paths, or nil.
	ReadFiles() ([]string, error)

	WriteText(text string) error
	WriteImage(data []byte) error
	WriteFiles(paths []string) error

	// Close releases any resources held by the backend.
	Close()
}

// New returns the platform clipboard backend, or a headless no-op backend if
// headless is set or the display environment is unavailable.
func New(headless bool) Backend {
	if headless {
		return Headless()
	}
	b, err := newSystem()
	if err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return Headless()
	}
	return b
}

// headlessBackend is a no-op clipboard backend for environments without a
// display server. Its change token never moves and writes are discarded.
type headlessBackend struct{}

// Headless returns a backend that never reports changes.
func Headless() Backend { return headlessBackend{} }

func (headlessBackend) Name() string                 { return "headless (no-op)" }
func (headlessBackend) ChangeToken() uint64          { return 0 }
func (headlessBackend) ReadText() (string, error)    { return "", nil }
func (headlessBackend) ReadImage() ([]byte, error)   { return nil, nil }
func (headlessBackend) ReadFiles() ([]string, error) { return nil, nil }
func (headlessBackend) WriteText(string) error       { return nil }
func (headlessBackend) WriteImage([]byte) error      { return nil }
func (headlessBackend) WriteFiles([]string) error    { return nil }
func (headlessBackend) Close()                       {}
