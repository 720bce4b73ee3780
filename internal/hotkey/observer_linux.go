//go:build linux

package hotkey

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// evdev event type and key states.
const (
	evKey       = 1
	keyReleased = 0
	keyPressed  = 1

	inputEventSize = 24 // sizeof(struct input_event) on 64-bit
)

var evdevModifiers = map[uint16]Modifier{
	29:  ModCtrl,  // KEY_LEFTCTRL
	97:  ModCtrl,  // KEY_RIGHTCTRL
	42:  ModShift, // KEY_LEFTSHIFT
	54:  ModShift, // KEY_RIGHTSHIFT
	56:  ModAlt,   // KEY_LEFTALT
	100: ModAlt,   // KEY_RIGHTALT
	125: ModMeta,  // KEY_LEFTMETA
	126: ModMeta,  // KEY_RIGHTMETA
}

var evdevKeys = map[uint16]rune{
	2: '1', 3: '2', 4: '3', 5: '4', 6: '5', 7: '6', 8: '7', 9: '8', 10: '9', 11: '0',
	16: 'q', 17: 'w', 18: 'e', 19: 'r', 20: 't', 21: 'y', 22: 'u', 23: 'i', 24: 'o', 25: 'p',
	30: 'a', 31: 's', 32: 'd', 33: 'f', 34: 'g', 35: 'h', 36: 'j', 37: 'k', 38: 'l',
	44: 'z', 45: 'x', 46: 'c', 47: 'v', 48: 'b', 49: 'n', 50: 'm',
	57: ' ',
}

// evdevObserver watches one keyboard device. It only observes; the event
// still reaches every other client.
type evdevObserver struct {
	dev  *os.File
	once sync.Once
}

func startObserver(c Combo, fire func()) (stopper, error) {
	path, err := KeyboardDevicePath()
	if err != nil {
		return nil, fmt.Errorf("find keyboard device: %w", err)
	}
	dev, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyboard device %s: %w", path, err)
	}
	o := &evdevObserver{dev: dev}
	go o.read(c, fire)
	slog.Debug("global hotkey observer started", "device", path, "combo", c.String())
	return o, nil
}

func (o *evdevObserver) stop() {
	o.once.Do(func() { _ = o.dev.Close() })
}

func (o *evdevObserver) read(c Combo, fire func()) {
	var held Modifier
	// several physical keys can map to one modifier bit
	down := make(map[uint16]bool)
	buf := make([]byte, inputEventSize)
	for {
		n, err := o.dev.Read(buf)
		if err != nil {
			if !errors.Is(err, os.ErrClosed) {
				slog.Debug("global hotkey observer stopped", "err", err)
			}
			return
		}
		if n != inputEventSize {
			continue
		}
		typ := binary.LittleEndian.Uint16(buf[16:18])
		code := binary.LittleEndian.Uint16(buf[18:20])
		value := int32(binary.LittleEndian.Uint32(buf[20:24]))
		if typ != evKey {
			continue
		}

		if _, ok := evdevModifiers[code]; ok {
			switch value {
			case keyPressed:
				down[code] = true
			case keyReleased:
				delete(down, code)
			}
			held = 0
			for k := range down {
				held |= evdevModifiers[k]
			}
			continue
		}

		if value != keyPressed {
			continue
		}
		if r, ok := evdevKeys[code]; ok && c.Matches(Event{Key: r, Mods: held}) {
			fire()
		}
	}
}

// ErrNoKeyboard is returned by KeyboardDevicePath when no keyboard event
// device is present.
var ErrNoKeyboard = errors.New("no keyboard device found")

// KeyboardDevicePath finds the first keyboard device under /dev/input.
func KeyboardDevicePath() (string, error) {
	byIDPath := "/dev/input/by-id"
	if entries, err := os.ReadDir(byIDPath); err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if strings.Contains(name, "kbd") || strings.Contains(name, "keyboard") {
				return filepath.Join(byIDPath, name), nil
			}
		}
	}

	// Fallback: scan /proc/bus/input/devices
	devicesFile, err := os.Open("/proc/bus/input/devices")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoKeyboard, err)
	}
	defer devicesFile.Close()

	scanner := bufio.NewScanner(devicesFile)
	isKeyboard := false
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "N: Name=") {
			name := strings.ToLower(line)
			isKeyboard = strings.Contains(name, "keyboard") || strings.Contains(name, "kbd")
		}

		if strings.HasPrefix(line, "H: Handlers=") && isKeyboard {
			for _, part := range strings.Fields(line) {
				if strings.HasPrefix(part, "event") {
					return "/dev/input/" + part, nil
				}
			}
		}

		if line == "" {
			isKeyboard = false
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", ErrNoKeyboard
}
