package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

// DebugToggle on the command line switches debug mode on, like a #debug URL hash.
const DebugToggle = "#debug"

type Config struct {
	// File names an optional YAML file whose keys override the environment.
	File string `env:"EXPERIENCE_CONFIG" yaml:"-"`

	Debug     bool   `env:"EXPERIENCE_DEBUG"      yaml:"debug"`
	DebugAddr string `env:"EXPERIENCE_DEBUG_ADDR" yaml:"debugAddr"`
	LogLevel  string `env:"EXPERIENCE_LOG_LEVEL"  yaml:"logLevel"  envDefault:"info"`

	FPS           int     `env:"EXPERIENCE_FPS"             yaml:"fps"           envDefault:"60"`
	MaxPixelRatio float64 `env:"EXPERIENCE_MAX_PIXEL_RATIO" yaml:"maxPixelRatio" envDefault:"2"`

	AssetRoot         string `env:"EXPERIENCE_ASSET_ROOT"         yaml:"assetRoot"         envDefault:"static"`
	ManifestPath      string `env:"EXPERIENCE_MANIFEST"           yaml:"manifest"          envDefault:"static/sources.yaml"`
	LoaderConcurrency int    `env:"EXPERIENCE_LOADER_CONCURRENCY" yaml:"loaderConcurrency" envDefault:"4"`

	Width      int     `env:"EXPERIENCE_WIDTH"       yaml:"width"      envDefault:"1280"`
	Height     int     `env:"EXPERIENCE_HEIGHT"      yaml:"height"     envDefault:"720"`
	PixelRatio float64 `env:"EXPERIENCE_PIXEL_RATIO" yaml:"pixelRatio" envDefault:"1"`
}

// Load reads the environment, overlays the YAML file if one is named and
// applies the debug toggle from args.
func Load(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.File != "" {
		if err := cfg.overlay(cfg.File); err != nil {
			return Config{}, err
		}
	}
	if slices.Contains(args, DebugToggle) || slices.Contains(args, "--debug") {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) overlay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	if err = yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive", ErrInvalid)
	case c.MaxPixelRatio <= 0:
		return fmt.Errorf("%w: max pixel ratio must be positive", ErrInvalid)
	case c.LoaderConcurrency <= 0:
		return fmt.Errorf("%w: loader concurrency must be positive", ErrInvalid)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: surface size must be positive", ErrInvalid)
	}
	return nil
}
