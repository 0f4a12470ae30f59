// Package config loads editor settings from a YAML file and the environment.
//
// Settings are resolved in three layers, later ones winning:
//  1. Default values
//  2. A YAML file (optional)
//  3. PIXED_* environment variables
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

// Settings holds the tunables of an editing session.
type Settings struct {
	// Width and Height are the canvas size of new projects.
	Width  int `yaml:"width" env:"PIXED_WIDTH"`
	Height int `yaml:"height" env:"PIXED_HEIGHT"`

	// UndoCapacity is the undo depth of every history scope.
	UndoCapacity int `yaml:"undo_capacity" env:"PIXED_UNDO_CAPACITY"`

	// CompressSnapshots stores layer snapshots zstd-compressed.
	CompressSnapshots bool `yaml:"compress_snapshots" env:"PIXED_COMPRESS_SNAPSHOTS"`

	// FPS is the animation preview rate.
	FPS int `yaml:"fps" env:"PIXED_FPS"`

	// CacheSize is the number of flattened frames kept by the preview player.
	CacheSize int `yaml:"cache_size" env:"PIXED_CACHE_SIZE"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"PIXED_LOG_LEVEL"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Width:        32,
		Height:       32,
		UndoCapacity: 50,
		FPS:          12,
		CacheSize:    64,
		LogLevel:     "warn",
	}
}

// Load returns the default settings overlaid with the YAML file at path
// (skipped when path is empty) and then with the environment.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
		if err != nil {
			return s, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("config: parse env: %w", err)
	}
	return s, s.Validate()
}

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid settings")

// Validate checks that every numeric setting is positive and the log level
// is known.
func (s Settings) Validate() error {
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalid, s.Width, s.Height)
	case s.UndoCapacity <= 0:
		return fmt.Errorf("%w: undo capacity %d", ErrInvalid, s.UndoCapacity)
	case s.FPS <= 0:
		return fmt.Errorf("%w: fps %d", ErrInvalid, s.FPS)
	case s.CacheSize <= 0:
		return fmt.Errorf("%w: cache size %d", ErrInvalid, s.CacheSize)
	}
	if _, err := s.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. An empty value means warn.
func (s Settings) Level() (slog.Level, error) {
	if s.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, s.LogLevel)
	}
	return l, nil
}
