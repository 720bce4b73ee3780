//go:build !darwin && !linux && !windows

package clip

import "errors"

func newSystem() (Backend, error) {
	return nil, errors.New("no clipboard support on this platform")
}
