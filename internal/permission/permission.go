// Package permission queries and requests the OS input-capture permission
// that global hot-keys depend on.
package permission

// Checker is the permission capability the engine consumes.
type Checker interface {
	// Granted reports whether global keyboard observation is currently allowed.
	// An error means the platform query itself failed.
	Granted() (bool, error)

	// Request asks the OS to prompt the user. It does not wait for an answer;
	// callers poll Granted afterwards.
	Request() error
}

// New returns the platform Checker.
func New() Checker { return newPlatform() }

// Static is a Checker with a fixed answer, used where no permission model
// exists or for headless runs.
type Static bool

func (s Static) Granted() (bool, error) { return bool(s), nil }
func (Static) Request() error           { return nil }
