// Package config loads editor tuning values from a TOML file, the
// environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"schematic-editor/internal/move"
	"schematic-editor/internal/topology"
	"schematic-editor/internal/wire"
	"schematic-editor/pkg/colorutil"

	"github.com/BurntSushi/toml"
)

const configFile = "config.toml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// StrokeConfig is the default stroke applied to newly drawn wires.
// Zero values mean "unset".
type StrokeConfig struct {
	Width float64 `toml:"width"`
	Type  string  `toml:"type"`
	Color string  `toml:"color"`
}

// Config holds the engine settings.
type Config struct {
	Grid                float64      `toml:"grid"`
	Tolerance           float64      `toml:"tolerance"`
	NodePrecision       float64      `toml:"node_precision"`
	StrokeMatchDistance float64      `toml:"stroke_match_distance"`
	NeutralColor        string       `toml:"neutral_color"`
	BodyHalfWidth       float64      `toml:"body_half_width"`
	DefaultStroke       StrokeConfig `toml:"default_stroke"`

	// Source is the file the values were read from, empty for defaults.
	Source string `toml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Grid:                5,
		Tolerance:           0.5,
		NodePrecision:       1,
		StrokeMatchDistance: 1,
		NeutralColor:        colorutil.Neutral,
		BodyHalfWidth:       4,
	}
}

// DefaultPath returns ~/.config/schematic-editor/config.toml, or "" when
// no config directory can be determined.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home := os.Getenv("HOME")
		if home == "" {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "schematic-editor", configFile)
}

// Load reads settings from path, or from DefaultPath when path is empty.
// A missing default file is not an error; a missing explicit file is.
// Environment overrides are applied last, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		_, err := toml.DecodeFile(path, cfg)
		switch {
		case err == nil:
			cfg.Source = path
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		log.Printf("config: loaded %s", cfg.Source)
	} else {
		log.Printf("config: using defaults")
	}
	return cfg, nil
}

// Decode parses TOML text on top of the defaults.
func Decode(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Grid = getEnvAsFloat("SCHEMATIC_GRID", c.Grid)
	c.Tolerance = getEnvAsFloat("SCHEMATIC_TOLERANCE", c.Tolerance)
	c.NeutralColor = getEnv("SCHEMATIC_NEUTRAL_COLOR", c.NeutralColor)
}

// Validate checks the settings for values the engine cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Grid <= 0:
		return fmt.Errorf("%w: grid must be positive, got %g", ErrInvalid, c.Grid)
	case c.NodePrecision <= 0:
		return fmt.Errorf("%w: node_precision must be positive, got %g", ErrInvalid, c.NodePrecision)
	case c.Tolerance < 0:
		return fmt.Errorf("%w: tolerance must not be negative, got %g", ErrInvalid, c.Tolerance)
	case c.StrokeMatchDistance < 0:
		return fmt.Errorf("%w: stroke_match_distance must not be negative, got %g", ErrInvalid, c.StrokeMatchDistance)
	case c.BodyHalfWidth < 0:
		return fmt.Errorf("%w: body_half_width must not be negative, got %g", ErrInvalid, c.BodyHalfWidth)
	}
	if _, ok := colorutil.Parse(c.NeutralColor); !ok {
		return fmt.Errorf("%w: neutral_color %q", ErrInvalid, c.NeutralColor)
	}
	return nil
}

// Stroke converts the default stroke settings.
func (c *Config) Stroke() wire.Stroke {
	var s wire.Stroke
	if c.DefaultStroke.Width > 0 {
		s.Width = wire.Set(c.DefaultStroke.Width)
	}
	if t := c.DefaultStroke.Type; t != "" && t != "default" {
		s.Style = wire.Set(wire.StrokeStyle(t))
	}
	if c.DefaultStroke.Color != "" {
		s.Color = wire.Set(c.DefaultStroke.Color)
	}
	return s
}

// TopologyOptions returns the graph build settings.
func (c *Config) TopologyOptions() topology.Options {
	return topology.Options{
		Precision:    c.NodePrecision,
		Tolerance:    c.Tolerance,
		NeutralColor: c.NeutralColor,
	}
}

// MoveOptions returns the move settings. Snap, OnSnapshot and Logger are
// left for the caller.
func (c *Config) MoveOptions() move.Options {
	return move.Options{
		Tolerance:           c.Tolerance,
		StrokeMatchDistance: c.StrokeMatchDistance,
		BodyHalfWidth:       c.BodyHalfWidth,
		Grid:                c.Grid,
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
