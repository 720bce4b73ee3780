//go:build windows

package hotkey

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"syscall"
	"unsafe"
)

var (
	user32   = syscall.NewLazyDLL("user32.dll")
	kernel32 = syscall.NewLazyDLL("kernel32.dll")

	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
	procGetAsyncKeyState    = user32.NewProc("GetAsyncKeyState")
	procGetCurrentThreadID  = kernel32.NewProc("GetCurrentThreadId")
)

const (
	whKeyboardLL = 13
	wmQuit       = 0x0012
	wmKeyDown    = 0x0100
	wmSysKeyDown = 0x0104

	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkLWin    = 0x5B
	vkRWin    = 0x5C
	vkSpace   = 0x20
)

type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type winMsg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// A low-level hook runs on the thread that installed it, so the single
// callback finds its observer by thread id.
var (
	hooksMu  sync.Mutex
	hooks    = make(map[uintptr]*llObserver)
	hookProc = syscall.NewCallback(lowLevelKeyboardProc)
)

// llObserver runs one WH_KEYBOARD_LL hook and its message loop on a locked
// OS thread. The hook always passes events on.
type llObserver struct {
	combo Combo
	fire  func()
	tid   uintptr
	once  sync.Once
}

func startObserver(c Combo, fire func()) (stopper, error) {
	o := &llObserver{combo: c, fire: fire}
	ready := make(chan error, 1)
	go o.run(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	slog.Debug("global hotkey observer started", "combo", c.String())
	return o, nil
}

func (o *llObserver) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid, _, _ := procGetCurrentThreadID.Call()
	hook, _, err := procSetWindowsHookEx.Call(whKeyboardLL, hookProc, 0, 0)
	if hook == 0 {
		ready <- fmt.Errorf("SetWindowsHookEx: %w", err)
		return
	}
	o.tid = tid
	hooksMu.Lock()
	hooks[tid] = o
	hooksMu.Unlock()
	ready <- nil

	var m winMsg
	for {
		r, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			break
		}
	}

	hooksMu.Lock()
	delete(hooks, tid)
	hooksMu.Unlock()
	_, _, _ = procUnhookWindowsHookEx.Call(hook)
	slog.Debug("global hotkey observer stopped", "combo", o.combo.String())
}

// stop ends the message loop. SetWindowsHookEx has already given the thread
// a message queue, so the quit message cannot be lost.
func (o *llObserver) stop() {
	o.once.Do(func() {
		_, _, _ = procPostThreadMessage.Call(o.tid, wmQuit, 0, 0)
	})
}

func lowLevelKeyboardProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) >= 0 && (wParam == wmKeyDown || wParam == wmSysKeyDown) {
		tid, _, _ := procGetCurrentThreadID.Call()
		hooksMu.Lock()
		o := hooks[tid]
		hooksMu.Unlock()
		if o != nil {
			kb := (*kbdllHookStruct)(unsafe.Pointer(lParam))
			if r, ok := vkRune(kb.VkCode); ok && o.combo.Matches(Event{Key: r, Mods: asyncMods()}) {
				o.fire()
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}

func vkRune(vk uint32) (rune, bool) {
	switch {
	case vk >= 'A' && vk <= 'Z':
		return rune(vk - 'A' + 'a'), true
	case vk >= '0' && vk <= '9':
		return rune(vk), true
	case vk == vkSpace:
		return ' ', true
	}
	return 0, false
}

func asyncMods() Modifier {
	down := func(vk uintptr) bool {
		r, _, _ := procGetAsyncKeyState.Call(vk)
		return r&0x8000 != 0
	}
	var m Modifier
	if down(vkControl) {
		m |= ModCtrl
	}
	if down(vkShift) {
		m |= ModShift
	}
	if down(vkMenu) {
		m |= ModAlt
	}
	if down(vkLWin) || down(vkRWin) {
		m |= ModMeta
	}
	return m
}
