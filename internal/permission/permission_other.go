//go:build !linux && !darwin

package permission

// Other platforms have no input-capture permission gate.
func newPlatform() Checker { return Static(true) }
