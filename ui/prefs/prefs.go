// Package prefs stores window preferences such as the last directory and
// window size as JSON.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"vecdraw/internal/config"
	"vecdraw/internal/logging"
)

const prefsFile = "preferences.json"

// Keys used by the main window.
const (
	KeyLastDir      = "last_directory"
	KeyWindowWidth  = "window_width"
	KeyWindowHeight = "window_height"
	KeyZoom         = "zoom"
)

// Prefs stores preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]any
	path   string
}

// Load reads preferences from the vecdraw config directory.
func Load() *Prefs {
	return LoadFrom(filepath.Join(config.Dir(), prefsFile))
}

// LoadFrom reads preferences from path. A missing or unreadable file gives
// empty preferences.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]any),
		path:   path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	if err := json.Unmarshal(data, &p.values); err != nil {
		logging.Logger().Warn("ignoring preferences", "path", path, "err", err)
		p.values = make(map[string]any)
	}
	return p
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// Float returns a float64 preference, or fallback if not set.
func (p *Prefs) Float(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if n, ok := p.values[key].(float64); ok {
		return n
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, _ := p.values[key].(string)
	return s
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}
