// Package config loads the reader-wide settings of spec.md section 6
// (state.Options/state.Extensions) from a YAML sidecar file plus
// environment-variable overrides, the way the pack's
// open-cli-collective-confluence-cli loads its own Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/latexdoc/reader/state"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk/YAML shape of a .latexdoc.yaml sidecar file. It
// mirrors state.Options/state.Extensions field-for-field rather than
// embedding them directly, so the YAML tags stay independent of the
// state package's own Go-facing naming.
type Config struct {
	Extensions struct {
		LatexMacros     bool `yaml:"latex_macros"`
		RawTex          bool `yaml:"raw_tex"`
		SmartQuotes     bool `yaml:"smart_quotes"`
		LiterateHaskell bool `yaml:"literate_haskell"`
	} `yaml:"extensions"`

	RawMode               bool   `yaml:"raw_mode,omitempty"`
	DefaultImageExtension string `yaml:"default_image_extension,omitempty"`
	IncludeCacheDir       string `yaml:"include_cache_dir,omitempty"`
}

// Default matches state.DefaultExtensions: the pieces that make a
// document renderable are on, cosmetic rewrites a caller hasn't asked
// for are off.
func Default() *Config {
	cfg := &Config{}
	ext := state.DefaultExtensions()
	cfg.Extensions.LatexMacros = ext.LatexMacros
	cfg.Extensions.RawTex = ext.RawTex
	cfg.Extensions.SmartQuotes = ext.SmartQuotes
	cfg.Extensions.LiterateHaskell = ext.LiterateHaskell
	return cfg
}

// DefaultConfigPath returns ./.latexdoc.yaml, falling back to
// $XDG_CONFIG_HOME/latexdoc/config.yaml (then ~/.config/latexdoc/
// config.yaml) if no sidecar file sits next to the invocation.
func DefaultConfigPath() string {
	if _, err := os.Stat(".latexdoc.yaml"); err == nil {
		return ".latexdoc.yaml"
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "latexdoc", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".latexdoc.yaml"
	}
	return filepath.Join(home, ".config", "latexdoc", "config.yaml")
}

// Load reads path and parses it as a Config. A missing file is not an
// error: Load returns Default() unchanged, since a sidecar file is
// always optional (spec.md section 6 treats every Options field as
// independently settable by the host, not as required configuration).
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating its parent directory if
// necessary.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: creating %s: %w", dir, err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides c's include-cache directory from $LATEXDOC_CACHE,
// if set, the same environment-variable-overrides-file precedence the
// teacher-adjacent confluence-cli's LoadWithEnv uses.
func (c *Config) ApplyEnv() {
	if dir := os.Getenv("LATEXDOC_CACHE"); dir != "" {
		c.IncludeCacheDir = dir
	}
}

// ToOptions builds a state.Options from c, merging in the invocation's
// own input source paths (spec.md section 6's InputSources field,
// which a sidecar file cannot know in advance).
func (c *Config) ToOptions(inputSources []string) state.Options {
	return state.Options{
		Extensions: state.Extensions{
			LatexMacros:     c.Extensions.LatexMacros,
			RawTex:          c.Extensions.RawTex,
			SmartQuotes:     c.Extensions.SmartQuotes,
			LiterateHaskell: c.Extensions.LiterateHaskell,
		},
		RawMode:               c.RawMode,
		DefaultImageExtension: c.DefaultImageExtension,
		InputSources:          inputSources,
	}
}
