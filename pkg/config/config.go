// Package config holds the client side settings of kgview: where the server
// lives, how the layout behaves and how the explorer reacts.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OFFIS-RIT/kgview/pkg/layout"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// Config holds kgview configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Layout   layout.Config  `toml:"layout"`
	Explorer ExplorerConfig `toml:"explorer"`
	UI       UIConfig       `toml:"ui"`
}

// ServerConfig locates the kgview server.
type ServerConfig struct {
	URL   string `toml:"url"`
	Graph string `toml:"graph"` // opened first, falls back to the first listed graph
}

// ExplorerConfig controls the interactive controller.
type ExplorerConfig struct {
	NeighborhoodDepth int      `toml:"neighborhood_depth"`
	TickInterval      Duration `toml:"tick_interval"`
	StatusTimeout     Duration `toml:"status_timeout"`
	SettleSteps       int      `toml:"settle_steps"`
}

// UIConfig controls terminal output.
type UIConfig struct {
	Color bool `toml:"color"`
}

// Duration reads and writes durations as strings like "16ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return errors.Wrapf(err, "duration %q", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{URL: "http://localhost:3000"},
		Layout: layout.DefaultConfig(),
		Explorer: ExplorerConfig{
			NeighborhoodDepth: 1,
			TickInterval:      Duration{16 * time.Millisecond},
			StatusTimeout:     Duration{4 * time.Second},
			SettleSteps:       1000,
		},
		UI: UIConfig{Color: true},
	}
}

// ConfigDir returns the kgview config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "kgview")
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads path over the defaults. A missing file at the default path
// yields the defaults; a missing explicit file, a syntax error or an unknown
// key is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, errors.WithHint(
			errors.Newf("unknown keys in %s: %s", path, strings.Join(keys, ", ")),
			"run `kgview config` to print a valid file",
		)
	}
	return cfg.normalized(), nil
}

// Save writes the config to path, creating its directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// normalized replaces unusable values with defaults.
func (c *Config) normalized() *Config {
	d := Default()
	if c.Server.URL == "" {
		c.Server.URL = d.Server.URL
	}
	c.Server.URL = strings.TrimSuffix(c.Server.URL, "/")
	if c.Explorer.NeighborhoodDepth < 0 {
		c.Explorer.NeighborhoodDepth = d.Explorer.NeighborhoodDepth
	}
	if c.Explorer.TickInterval.Duration <= 0 {
		c.Explorer.TickInterval = d.Explorer.TickInterval
	}
	if c.Explorer.StatusTimeout.Duration <= 0 {
		c.Explorer.StatusTimeout = d.Explorer.StatusTimeout
	}
	if c.Explorer.SettleSteps <= 0 {
		c.Explorer.SettleSteps = d.Explorer.SettleSteps
	}
	return c
}
