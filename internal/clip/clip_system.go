//go:build darwin || linux || windows

package clip

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.design/x/clipboard"
)

type systemBackend struct {
	token  atomic.Uint64
	cancel context.CancelFunc
}

// newSystem initialises golang.design/x/clipboard. clipboard.Init is called
// here rather than in init() so that CLI sub-commands that never construct a
// Backend don't fail on headless systems.
func newSystem() (Backend, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("clipboard init: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &systemBackend{cancel: cancel}
	if !hasNativeChangeCount {
		go b.watch(clipboard.Watch(ctx, clipboard.FmtText))
		go b.watch(clipboard.Watch(ctx, clipboard.FmtImage))
	}
	return b, nil
}

func (b *systemBackend) Name() string { return systemName }

// watch bumps the change token for every change the library reports.
func (b *systemBackend) watch(ch <-chan []byte) {
	for range ch {
		b.token.Add(1)
	}
}

func (b *systemBackend) ChangeToken() uint64 {
	if n, ok := nativeChangeCount(); ok {
		return n
	}
	return b.token.Load()
}

func (b *systemBackend) ReadText() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (b *systemBackend) ReadImage() ([]byte, error) {
	return clipboard.Read(clipboard.FmtImage), nil
}

func (b *systemBackend) ReadFiles() ([]string, error) { return readFiles() }

func (b *systemBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *systemBackend) WriteImage(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("write image: empty payload")
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

func (b *systemBackend) WriteFiles(paths []string) error { return writeFiles(paths) }

func (b *systemBackend) Close() { b.cancel() }
