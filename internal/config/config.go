// Package config loads sysvabi.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the config file looked up from the working directory upwards.
const FileName = "sysvabi.toml"

// Config is the decoded sysvabi.toml. Zero values mean "not set"; CLI flags
// take precedence over everything here.
type Config struct {
	Output OutputConfig `toml:"output"`
	Trace  TraceConfig  `toml:"trace"`
	Cache  CacheConfig  `toml:"cache"`
	Parse  ParseConfig  `toml:"parse"`

	// Path is where the config was read from; empty for defaults.
	Path string `toml:"-"`
}

type OutputConfig struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

type CacheConfig struct {
	Enabled *bool  `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ParseConfig struct {
	IncludePaths []string          `toml:"include_paths"`
	Defines      map[string]string `toml:"defines"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	enabled := true
	return Config{
		Output: OutputConfig{Format: "pretty", Color: "auto"},
		Trace:  TraceConfig{Level: "off", Output: "-"},
		Cache:  CacheConfig{Enabled: &enabled},
	}
}

// CacheEnabled reports whether the on-disk cache is on.
func (c Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// Find walks up from startDir to locate sysvabi.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the config found from startDir, or defaults when there is
// none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads the config at path on top of the defaults. Relative include
// paths and cache directories are resolved against the file's directory.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, p := range cfg.Parse.IncludePaths {
		cfg.Parse.IncludePaths[i] = resolve(base, p)
	}
	if cfg.Cache.Dir != "" {
		cfg.Cache.Dir = resolve(base, cfg.Cache.Dir)
	}
	if meta.IsDefined("trace", "output") && cfg.Trace.Output != "-" && cfg.Trace.Output != "" {
		cfg.Trace.Output = resolve(base, cfg.Trace.Output)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Output.Format {
	case "pretty", "json", "msgpack":
	default:
		return fmt.Errorf("[output].format must be pretty, json or msgpack, got %q", c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("[output].color must be auto, on or off, got %q", c.Output.Color)
	}
	return nil
}

func resolve(base, p string) string {
	p = os.ExpandEnv(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, filepath.FromSlash(p))
}
