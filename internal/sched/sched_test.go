package sched_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipkeep/internal/sched"
	"go.klb.dev/clipkeep/internal/sched/schedtest"
)

func TestFakeEveryAndAfter(t *testing.T) {
	t.Parallel()

	f := schedtest.New()
	var ticks, once int
	tk := f.Every(500*time.Millisecond, func() { ticks++ })
	f.After(time.Second, func() { once++ })

	f.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, ticks)

	f.Advance(time.Millisecond)
	assert.Equal(t, 1, ticks)

	f.Advance(2 * time.Second)
	assert.Equal(t, 5, ticks)
	assert.Equal(t, 1, once)
	assert.Equal(t, 1, f.Pending())

	tk.Stop()
	f.Advance(time.Hour)
	assert.Equal(t, 5, ticks)
	assert.Equal(t, 0, f.Pending())
}

func TestFakeCallbackCanReschedule(t *testing.T) {
	t.Parallel()

	f := schedtest.New()
	var order []string
	f.After(time.Second, func() {
		order = append(order, "first")
		f.After(time.Second, func() { order = append(order, "second") })
	})

	f.Advance(1500 * time.Millisecond)
	assert.Equal(t, []string{"first"}, order)
	f.Advance(500 * time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestFakeStopFromInsideCallback(t *testing.T) {
	t.Parallel()

	f := schedtest.New()
	var n int
	var tk sched.Timer
	tk = f.Every(time.Second, func() {
		n++
		if n == 3 {
			tk.Stop()
		}
	})
	f.Advance(10 * time.Second)
	assert.Equal(t, 3, n)
}

func TestLoopSerialisesTimerCallbacks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := sched.NewLoop(16)
	go l.Run(ctx)

	var inFlight, maxInFlight, fired atomic.Int32
	body := func() {
		n := inFlight.Add(1)
		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}
		fired.Add(1)
		inFlight.Add(-1)
	}
	tk := l.Every(time.Millisecond, body)
	l.After(2*time.Millisecond, body)

	require.Eventually(t, func() bool { return fired.Load() >= 5 }, 2*time.Second, time.Millisecond)
	require.NoError(t, l.Do(ctx, tk.Stop))
	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestLoopDoAfterStop(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	l := sched.NewLoop(1)
	go l.Run(ctx)

	var ran bool
	require.NoError(t, l.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)

	cancel()
	<-l.Done()
	assert.ErrorIs(t, l.Do(context.Background(), func() {}), sched.ErrStopped)
}

func TestLoopAfterStopped(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := sched.NewLoop(4)
	go l.Run(ctx)

	var fired atomic.Bool
	var tm sched.Timer
	require.NoError(t, l.Do(ctx, func() {
		tm = l.After(20*time.Millisecond, func() { fired.Store(true) })
		tm.Stop()
	}))
	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load())
}
