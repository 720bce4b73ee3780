// Package settings holds the user-facing settings value and its flat
// key/value persistence.
package settings

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"sync"
)

// DefaultMaxHistoryItems is used when no valid limit is stored.
const DefaultMaxHistoryItems = 50

// Persisted keys.
const (
	KeyMaxHistoryItems   = "maxHistoryItems"
	KeyAutoLaunchEnabled = "autoLaunchEnabled"
	KeyShowStartupScreen = "showStartupScreen"
	KeyHasLaunchedBefore = "hasLaunchedBefore"
)

// Settings is the engine's injected configuration. It is a plain value;
// copies are independent.
type Settings struct {
	MaxHistoryItems   int  `json:"maxHistoryItems"`
	AutoLaunchEnabled bool `json:"autoLaunchEnabled"`
	ShowStartupScreen bool `json:"showStartupScreen"`
}

// Default returns the settings used on first run.
func Default() Settings {
	return Settings{
		MaxHistoryItems:   DefaultMaxHistoryItems,
		AutoLaunchEnabled: false,
		ShowStartupScreen: true,
	}
}

// Validate returns s with out-of-range values replaced by defaults.
func (s Settings) Validate() Settings {
	if s.MaxHistoryItems <= 0 {
		s.MaxHistoryItems = DefaultMaxHistoryItems
	}
	return s
}

// Store is a flat key/value persistence capability.
type Store interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, values map[string]string) error
}

// Load reads settings from st. firstRun is true when the launch marker is
// absent. Malformed values fall back to their defaults.
func Load(ctx context.Context, st Store) (s Settings, firstRun bool, err error) {
	s = Default()
	values, err := st.Load(ctx)
	if err != nil {
		return s, false, fmt.Errorf("settings: load: %w", err)
	}

	if v, ok := values[KeyMaxHistoryItems]; ok {
		if n, perr := strconv.Atoi(v); perr == nil {
			s.MaxHistoryItems = n
		}
	}
	if v, ok := values[KeyAutoLaunchEnabled]; ok {
		if b, perr := strconv.ParseBool(v); perr == nil {
			s.AutoLaunchEnabled = b
		}
	}
	if v, ok := values[KeyShowStartupScreen]; ok {
		if b, perr := strconv.ParseBool(v); perr == nil {
			s.ShowStartupScreen = b
		}
	}
	launched, _ := strconv.ParseBool(values[KeyHasLaunchedBefore])
	return s.Validate(), !launched, nil
}

// Save writes s to st and sets the launch marker.
func Save(ctx context.Context, st Store, s Settings) error {
	s = s.Validate()
	err := st.Save(ctx, map[string]string{
		KeyMaxHistoryItems:   strconv.Itoa(s.MaxHistoryItems),
		KeyAutoLaunchEnabled: strconv.FormatBool(s.AutoLaunchEnabled),
		KeyShowStartupScreen: strconv.FormatBool(s.ShowStartupScreen),
		KeyHasLaunchedBefore: "true",
	})
	if err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	return nil
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	saves  int
}

// NewMemoryStore returns a MemoryStore seeded with values.
func NewMemoryStore(values map[string]string) *MemoryStore {
	m := &MemoryStore{values: make(map[string]string)}
	maps.Copy(m.values, values)
	return m
}

func (m *MemoryStore) Load(context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.values), nil
}

func (m *MemoryStore) Save(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.values, values)
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
