// Package history holds the bounded, newest-first clipboard history.
//
// A Store is not safe for concurrent use. It is owned by the engine and only
// touched from the engine's control loop; everyone else reads snapshots.
package history

import (
	"slices"

	"go.klb.dev/clipkeep/internal/item"
)

// Result describes what Add did with a candidate.
type Result int

const (
	Added Result = iota
	Duplicate
	Rejected
)

func (r Result) String() string {
	switch r {
	case Added:
		return "added"
	case Duplicate:
		return "duplicate"
	default:
		return "rejected"
	}
}

// Store is an ordered history, index 0 being the newest item.
type Store struct {
	items []item.Item
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Add prepends candidate unless it repeats the current front item, then drops
// items from the tail until at most max remain. Unknown content and items
// whose ID is already present are rejected.
func (s *Store) Add(candidate item.Item, max int) Result {
	if _, unknown := candidate.Kind().(item.Unknown); unknown {
		return Rejected
	}
	if s.indexOf(candidate.ID()) >= 0 {
		return Rejected
	}
	if len(s.items) > 0 && item.Duplicate(s.items[0].Kind(), candidate.Kind()) {
		return Duplicate
	}

	s.items = slices.Insert(s.items, 0, candidate)
	s.Truncate(max)
	return Added
}

// Truncate drops the oldest items until at most max remain and returns how
// many were dropped. A non-positive max leaves the store unchanged.
func (s *Store) Truncate(max int) int {
	if max <= 0 || len(s.items) <= max {
		return 0
	}
	dropped := len(s.items) - max
	clear(s.items[max:])
	s.items = s.items[:max]
	return dropped
}

// Clear removes every item.
func (s *Store) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}

// Len returns the number of items.
func (s *Store) Len() int { return len(s.items) }

// At returns the item at index i, or false when i is out of range.
func (s *Store) At(i int) (item.Item, bool) {
	if i < 0 || i >= len(s.items) {
		return item.Item{}, false
	}
	return s.items[i], true
}

// Snapshot returns a copy of the history, newest first.
func (s *Store) Snapshot() []item.Item {
	return slices.Clone(s.items)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(it item.Item) bool { return it.ID() == id })
}
