//go:build darwin

package hotkey

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation

#include <stdint.h>
#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>

extern void clipkeepKeyDown(uintptr_t handle, int64_t keycode, uint64_t flags);

static CGEventRef clipkeep_tap_callback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon) {
    if (type == kCGEventKeyDown) {
        clipkeepKeyDown((uintptr_t)refcon,
            CGEventGetIntegerValueField(event, kCGKeyboardEventKeycode),
            (uint64_t)CGEventGetFlags(event));
    }
    return event;
}

// Listen-only: the tap sees key presses but never consumes or alters them.
static CFMachPortRef clipkeep_tap_create(uintptr_t handle) {
    return CGEventTapCreate(
        kCGSessionEventTap,
        kCGTailAppendEventTap,
        kCGEventTapOptionListenOnly,
        CGEventMaskBit(kCGEventKeyDown),
        clipkeep_tap_callback,
        (void *)handle
    );
}

static void clipkeep_tap_attach(CFMachPortRef tap) {
    CFRunLoopSourceRef source = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap, 0);
    CFRunLoopAddSource(CFRunLoopGetCurrent(), source, kCFRunLoopDefaultMode);
    CFRelease(source);
    CGEventTapEnable(tap, true);
}

static void clipkeep_tap_spin(void) {
    CFRunLoopRunInMode(kCFRunLoopDefaultMode, 0.25, false);
}

static void clipkeep_tap_release(CFMachPortRef tap) {
    CGEventTapEnable(tap, false);
    CFMachPortInvalidate(tap);
    CFRelease(tap);
}
*/
import "C"

import (
	"errors"
	"log/slog"
	"runtime"
	"runtime/cgo"
	"sync/atomic"
)

// CGEventFlags modifier bits.
const (
	cgFlagShift   = 1 << 17
	cgFlagControl = 1 << 18
	cgFlagAlt     = 1 << 19
	cgFlagCommand = 1 << 20
)

// ANSI virtual key codes.
var darwinKeys = map[int64]rune{
	0: 'a', 11: 'b', 8: 'c', 2: 'd', 14: 'e', 3: 'f', 5: 'g', 4: 'h', 34: 'i',
	38: 'j', 40: 'k', 37: 'l', 46: 'm', 45: 'n', 31: 'o', 35: 'p', 12: 'q',
	15: 'r', 1: 's', 17: 't', 32: 'u', 9: 'v', 13: 'w', 7: 'x', 16: 'y', 6: 'z',
	18: '1', 19: '2', 20: '3', 21: '4', 23: '5', 22: '6', 26: '7', 28: '8', 25: '9', 29: '0',
	49: ' ',
}

var errTapCreate = errors.New("create event tap (is accessibility access granted?)")

// tapObserver runs one listen-only event tap on its own locked OS thread.
type tapObserver struct {
	combo   Combo
	fire    func()
	stopped atomic.Bool
}

func startObserver(c Combo, fire func()) (stopper, error) {
	o := &tapObserver{combo: c, fire: fire}
	ready := make(chan error, 1)
	go o.run(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	slog.Debug("global hotkey observer started", "combo", c.String())
	return o, nil
}

func (o *tapObserver) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	h := cgo.NewHandle(o)
	defer h.Delete()

	tap := C.clipkeep_tap_create(C.uintptr_t(h))
	if tap == 0 {
		ready <- errTapCreate
		return
	}
	C.clipkeep_tap_attach(tap)
	ready <- nil

	for !o.stopped.Load() {
		C.clipkeep_tap_spin()
	}
	C.clipkeep_tap_release(tap)
	slog.Debug("global hotkey observer stopped", "combo", o.combo.String())
}

// stop returns at once; the tap is released on the next run loop wake-up.
func (o *tapObserver) stop() { o.stopped.Store(true) }

//export clipkeepKeyDown
func clipkeepKeyDown(handle C.uintptr_t, keycode C.int64_t, flags C.uint64_t) {
	o, ok := cgo.Handle(handle).Value().(*tapObserver)
	if !ok || o.stopped.Load() {
		return
	}
	r, ok := darwinKeys[int64(keycode)]
	if !ok {
		return
	}
	if o.combo.Matches(Event{Key: r, Mods: darwinMods(uint64(flags))}) {
		o.fire()
	}
}

func darwinMods(flags uint64) Modifier {
	var m Modifier
	if flags&cgFlagShift != 0 {
		m |= ModShift
	}
	if flags&cgFlagControl != 0 {
		m |= ModCtrl
	}
	if flags&cgFlagAlt != 0 {
		m |= ModAlt
	}
	if flags&cgFlagCommand != 0 {
		m |= ModMeta
	}
	return m
}
