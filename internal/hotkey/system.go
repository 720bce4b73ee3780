package hotkey

import (
	"slices"
	"sync"
)

type binding struct {
	combo  Combo
	action func()
}

// System is the production Registrar. Local listeners form an in-process
// filter fed through Dispatch; global listeners run a platform observer whose
// callbacks are handed to post so they land on the caller's control loop;
// menu listeners are kept for the presentation layer to list and trigger.
type System struct {
	post func(func())

	mu        sync.Mutex
	nextID    uint64
	local     map[uint64]binding
	menu      map[uint64]binding
	observers map[uint64]stopper
}

type stopper interface{ stop() }

var (
	_ Registrar  = (*System)(nil)
	_ Dispatcher = (*System)(nil)
)

// NewSystem returns a System. post must deliver fn to the goroutine that owns
// the listeners' actions; nil runs actions inline.
func NewSystem(post func(func())) *System {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	return &System{
		post:      post,
		local:     make(map[uint64]binding),
		menu:      make(map[uint64]binding),
		observers: make(map[uint64]stopper),
	}
}

func (s *System) id() uint64 {
	s.nextID++
	return s.nextID
}

// InstallLocal implements Registrar.
func (s *System) InstallLocal(c Combo, action func()) (Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.local[id] = binding{c, action}
	return Listener{ID: id, Scope: ScopeLocal, Combo: c}, nil
}

// InstallGlobal implements Registrar.
func (s *System) InstallGlobal(c Combo, action func()) (Listener, error) {
	obs, err := startObserver(c, func() { s.post(action) })
	if err != nil {
		return Listener{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.observers[id] = obs
	return Listener{ID: id, Scope: ScopeGlobal, Combo: c}, nil
}

// InstallMenu implements Registrar.
func (s *System) InstallMenu(c Combo, action func()) (Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.menu[id] = binding{c, action}
	return Listener{ID: id, Scope: ScopeMenu, Combo: c}, nil
}

// Uninstall implements Registrar.
func (s *System) Uninstall(l Listener) error {
	s.mu.Lock()
	var obs stopper
	switch l.Scope {
	case ScopeLocal:
		delete(s.local, l.ID)
	case ScopeMenu:
		delete(s.menu, l.ID)
	case ScopeGlobal:
		obs = s.observers[l.ID]
		delete(s.observers, l.ID)
	}
	s.mu.Unlock()

	if obs != nil {
		obs.stop()
	}
	return nil
}

// Dispatch implements Dispatcher. Matching local actions run on the calling
// goroutine.
func (s *System) Dispatch(e Event) bool {
	return run(s.matching(s.local, func(c Combo) bool { return c.Matches(e) }))
}

// TriggerMenu implements Dispatcher.
func (s *System) TriggerMenu(c Combo) bool {
	return run(s.matching(s.menu, func(m Combo) bool { return m == c }))
}

func (s *System) matching(set map[uint64]binding, match func(Combo) bool) []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var actions []func()
	for _, id := range sortedIDs(set) {
		if b := set[id]; match(b.combo) {
			actions = append(actions, b.action)
		}
	}
	return actions
}

func run(actions []func()) bool {
	for _, a := range actions {
		a()
	}
	return len(actions) > 0
}

func sortedIDs(set map[uint64]binding) []uint64 {
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
