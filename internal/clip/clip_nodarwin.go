//go:build linux || windows

package clip

import "runtime"

const hasNativeChangeCount = false

var systemName = "golang.design clipboard (" + runtime.GOOS + ")"

func nativeChangeCount() (uint64, bool) { return 0, false }

// golang.design/x/clipboard exposes no file-reference slot here.
func readFiles() ([]string, error) { return nil, nil }

func writeFiles([]string) error { return ErrUnsupported }
