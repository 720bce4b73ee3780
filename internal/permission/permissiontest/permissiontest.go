// Package permissiontest provides a scripted permission.Checker.
package permissiontest

import "go.klb.dev/clipkeep/internal/permission"

// Fake answers Granted from its fields and counts calls.
type Fake struct {
	granted bool

	// Err, when set, is returned by Granted.
	Err error
	// RequestErr, when set, is returned by Request.
	RequestErr error
	// OnQuery, when set, runs before each Granted answer with the 1-based
	// query number. Tests use it to flip the grant on a chosen attempt.
	OnQuery func(n int)

	Queries  int
	Requests int
}

var _ permission.Checker = (*Fake)(nil)

// New returns a Fake that answers granted.
func New(granted bool) *Fake { return &Fake{granted: granted} }

// Set changes the answer for subsequent queries.
func (f *Fake) Set(granted bool) { f.granted = granted }

func (f *Fake) Granted() (bool, error) {
	f.Queries++
	if f.OnQuery != nil {
		f.OnQuery(f.Queries)
	}
	if f.Err != nil {
		return false, f.Err
	}
	return f.granted, nil
}

func (f *Fake) Request() error {
	f.Requests++
	return f.RequestErr
}
