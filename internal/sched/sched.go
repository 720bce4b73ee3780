// Package sched provides the timer abstraction the engine runs on and the
// single control loop every callback is serialised onto.
package sched

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStopped is returned by Loop.Do once the loop has exited.
var ErrStopped = errors.New("control loop stopped")

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop cancels the timer. Once Stop returns on the control loop the
	// callback will not run again. Stopping twice is a no-op.
	Stop()
}

// Scheduler schedules callbacks on the control loop.
type Scheduler interface {
	// Every runs fn every d until the returned Timer is stopped.
	Every(d time.Duration, fn func()) Timer
	// After runs fn once after d unless the returned Timer is stopped first.
	After(d time.Duration, fn func()) Timer
}

// Loop runs posted functions one at a time on a single goroutine. It also
// implements Scheduler: timer callbacks are posted to the loop, so they never
// run concurrently with each other or with Do.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop returns a Loop with room for buffer queued tasks. Call Run to start it.
func NewLoop(buffer int) *Loop {
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run processes tasks until ctx is cancelled. It blocks.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Post queues fn. It reports false if the loop has already stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

type loopTimer struct {
	stopped atomic.Bool
	quit    chan struct{}
	once    sync.Once
	t       *time.Timer
}

func (t *loopTimer) Stop() {
	t.stopped.Store(true)
	t.once.Do(func() {
		if t.quit != nil {
			close(t.quit)
		}
		if t.t != nil {
			t.t.Stop()
		}
	})
}

// run is what actually gets posted: a callback queued before Stop must not
// fire after it.
func (t *loopTimer) run(fn func()) func() {
	return func() {
		if t.stopped.Load() {
			return
		}
		fn()
	}
}

// Every implements Scheduler.
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	lt := &loopTimer{quit: make(chan struct{})}
	go func() {
		tk := time.NewTicker(d)
		defer tk.Stop()
		for {
			select {
			case <-lt.quit:
				return
			case <-l.done:
				return
			case <-tk.C:
				if !l.Post(lt.run(fn)) {
					return
				}
			}
		}
	}()
	return lt
}

// After implements Scheduler.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		l.Post(lt.run(func() {
			lt.stopped.Store(true)
			fn()
		}))
	})
	return lt
}
