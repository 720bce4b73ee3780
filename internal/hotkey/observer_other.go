//go:build !linux && !darwin && !windows

package hotkey

func startObserver(Combo, func()) (stopper, error) {
	return nil, ErrGlobalUnsupported
}
