// Package config loads the editor configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"vecdraw/internal/logging"
	"vecdraw/pkg/colorutil"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "VECDRAW_CONFIG"

// Config holds the editor settings.
type Config struct {
	CanvasWidth  int           `toml:"canvas_width"`
	CanvasHeight int           `toml:"canvas_height"`
	DefaultFill  colorutil.RGB `toml:"default_fill"`

	// RotateStep is the angle in degrees applied by the rotate buttons.
	RotateStep float64 `toml:"rotate_step"`

	ScaleMin     float64 `toml:"scale_min"`
	ScaleMax     float64 `toml:"scale_max"`
	ScaleDefault float64 `toml:"scale_default"`

	// LibraryPath is the SQLite snapshot database. Empty uses the default
	// location next to the config file.
	LibraryPath string `toml:"library_path"`
	LogLevel    string `toml:"log_level"`
	WatchFiles  bool   `toml:"watch_files"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CanvasWidth:  800,
		CanvasHeight: 600,
		DefaultFill:  colorutil.White,
		RotateStep:   15,
		ScaleMin:     0.1,
		ScaleMax:     10,
		ScaleDefault: 1,
		LogLevel:     "info",
		WatchFiles:   true,
	}
}

// Dir returns the per-user configuration directory.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "vecdraw")
}

// Path returns the config file location, honoring VECDRAW_CONFIG.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.toml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logging.Logger().Warn("unknown config key", "key", key.String(), "file", path)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.LibraryPath == "" {
		cfg.LibraryPath = filepath.Join(filepath.Dir(path), "library.db")
	}
	return cfg, nil
}

// Validate checks ranges that the editor relies on.
func (c Config) Validate() error {
	switch {
	case c.CanvasWidth <= 0 || c.CanvasHeight <= 0:
		return fmt.Errorf("canvas size %dx%d must be positive", c.CanvasWidth, c.CanvasHeight)
	case c.ScaleMin <= 0 || c.ScaleMax < c.ScaleMin:
		return fmt.Errorf("scale range [%v, %v] is invalid", c.ScaleMin, c.ScaleMax)
	case c.ScaleDefault < c.ScaleMin || c.ScaleDefault > c.ScaleMax:
		return fmt.Errorf("scale_default %v outside [%v, %v]", c.ScaleDefault, c.ScaleMin, c.ScaleMax)
	case c.RotateStep == 0:
		return errors.New("rotate_step must not be zero")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Save writes c to path as TOML, creating parent directories.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
