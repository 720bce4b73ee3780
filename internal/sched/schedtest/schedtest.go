// Package schedtest provides a manual-clock Scheduler for tests.
package schedtest

import (
	"time"

	"go.klb.dev/clipkeep/internal/sched"
)

// Fake is a sched.Scheduler driven by Advance. Callbacks run synchronously on
// the goroutine calling Advance, in due-time order (ties in scheduling order).
// It is not safe for concurrent use.
type Fake struct {
	now    time.Duration
	seq    int
	timers []*timer
}

type timer struct {
	due     time.Duration
	every   time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *timer) Stop() { t.stopped = true }

// New returns a Fake at time zero.
func New() *Fake { return &Fake{} }

// Every implements sched.Scheduler.
func (f *Fake) Every(d time.Duration, fn func()) sched.Timer {
	if d <= 0 {
		d = time.Nanosecond
	}
	return f.add(d, d, fn)
}

// After implements sched.Scheduler.
func (f *Fake) After(d time.Duration, fn func()) sched.Timer {
	if d < 0 {
		d = 0
	}
	return f.add(d, 0, fn)
}

func (f *Fake) add(d, every time.Duration, fn func()) *timer {
	f.seq++
	t := &timer{due: f.now + d, every: every, seq: f.seq, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Now returns the elapsed fake time.
func (f *Fake) Now() time.Duration { return f.now }

// Advance moves the clock forward by d, firing every callback that falls due.
func (f *Fake) Advance(d time.Duration) {
	target := f.now + d
	for {
		t := f.next(target)
		if t == nil {
			break
		}
		f.now = t.due
		if t.every > 0 {
			t.due += t.every
		} else {
			t.stopped = true
		}
		t.fn()
	}
	f.now = target
	f.prune()
}

// Pending returns the number of timers that have not been stopped or fired.
func (f *Fake) Pending() int {
	f.prune()
	return len(f.timers)
}

func (f *Fake) next(limit time.Duration) *timer {
	var best *timer
	for _, t := range f.timers {
		if t.stopped || t.due > limit {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (f *Fake) prune() {
	live := f.timers[:0]
	for _, t := range f.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	clear(f.timers[len(live):])
	f.timers = live
}
