// Package cliptest provides an in-memory clip.Backend for tests.
package cliptest

import (
	"slices"
	"sync"

	"go.klb.dev/clipkeep/internal/clip"
)

// Write records one call to a Write* method.
type Write struct {
	Slot  string // "text", "image" or "files"
	Text  string
	Image []byte
	Files []string
}

// Fake is a clip.Backend whose contents are set by the test. Every Set* call
// and every successful write bumps the change token.
type Fake struct {
	mu     sync.Mutex
	token  uint64
	text   string
	image  []byte
	files  []string
	writes []Write

	// ReadErr, when set, is returned by every Read* call.
	ReadErr error
	// WriteErr, when set, is returned by every Write* call.
	WriteErr error
	// NoFileSlot makes WriteFiles fail with clip.ErrUnsupported.
	NoFileSlot bool
}

var _ clip.Backend = (*Fake)(nil)

// New returns an empty Fake.
func New() *Fake { return &Fake{} }

// SetText replaces the clipboard with text.
func (f *Fake) SetText(s string) { f.set(s, nil, nil) }

// SetImage replaces the clipboard with an encoded bitmap.
func (f *Fake) SetImage(data []byte) { f.set("", data, nil) }

// SetFiles replaces the clipboard with file references.
func (f *Fake) SetFiles(paths ...string) { f.set("", nil, paths) }

// SetEmpty clears every slot but still counts as a change.
func (f *Fake) SetEmpty() { f.set("", nil, nil) }

func (f *Fake) set(text string, image []byte, files []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text, f.image, f.files = text, slices.Clone(image), slices.Clone(files)
	f.token++
}

// Writes returns the recorded writes in order.
func (f *Fake) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.writes)
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) ChangeToken() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *Fake) ReadText() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, f.ReadErr
}

func (f *Fake) ReadImage() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.image), f.ReadErr
}

func (f *Fake) ReadFiles() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.files), f.ReadErr
}

func (f *Fake) WriteText(text string) error {
	return f.write(Write{Slot: "text", Text: text}, func() { f.text, f.image, f.files = text, nil, nil })
}

func (f *Fake) WriteImage(data []byte) error {
	return f.write(Write{Slot: "image", Image: slices.Clone(data)}, func() { f.text, f.image, f.files = "", slices.Clone(data), nil })
}

func (f *Fake) WriteFiles(paths []string) error {
	if f.NoFileSlot {
		return clip.ErrUnsupported
	}
	return f.write(Write{Slot: "files", Files: slices.Clone(paths)}, func() { f.text, f.image, f.files = "", nil, slices.Clone(paths) })
}

func (f *Fake) write(w Write, apply func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.writes = append(f.writes, w)
	apply()
	f.token++
	return nil
}

func (f *Fake) Close() {}
