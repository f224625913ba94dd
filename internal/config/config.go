// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/glint-editor/glint/internal/constants"
	"github.com/glint-editor/glint/internal/lsp"
)

// Config is the root configuration structure.
type Config struct {
	Editor EditorConfig             `toml:"editor"`
	LSP    map[string]LSPServerTOML `toml:"lsp"`
}

// EditorConfig holds the recognized editor options (spec §6's "Config
// (recognized options)" table).
type EditorConfig struct {
	TabSize     int    `toml:"tabsize"`
	ScrollOff   int    `toml:"scrolloff"`
	FPS         int    `toml:"fps"`
	Theme       string `toml:"theme"`
	ShowLineNum *bool  `toml:"show_linenum"`
}

const (
	defaultTabSize   = 4
	defaultScrollOff = 5
	defaultFPS       = 60
)

// TabSizeOrDefault returns the configured tab size, or 4 if unset/invalid.
func (e EditorConfig) TabSizeOrDefault() int {
	if e.TabSize <= 0 {
		return defaultTabSize
	}
	return e.TabSize
}

// ScrollOffOrDefault returns the configured scrolloff, or 5 if unset.
func (e EditorConfig) ScrollOffOrDefault() int {
	if e.ScrollOff <= 0 {
		return defaultScrollOff
	}
	return e.ScrollOff
}

// FPSOrDefault returns the configured redraw rate, or 60 if unset/invalid.
func (e EditorConfig) FPSOrDefault() int {
	if e.FPS <= 0 {
		return defaultFPS
	}
	return e.FPS
}

// ThemeOrDefault returns the configured theme name, or
// constants.DefaultSyntaxTheme if unset.
func (e EditorConfig) ThemeOrDefault() string {
	if e.Theme == "" {
		return constants.DefaultSyntaxTheme
	}
	return e.Theme
}

// ShowLineNumOrDefault returns the configured show_linenum flag, or true
// if unset — line numbers are on by default.
func (e EditorConfig) ShowLineNumOrDefault() bool {
	if e.ShowLineNum == nil {
		return true
	}
	return *e.ShowLineNum
}

// LSPServerTOML is the `[lsp.<language>]` table shape; ToServerConfig
// converts it to the internal/lsp wire type.
type LSPServerTOML struct {
	Command     string   `toml:"command"`
	Args        []string `toml:"args"`
	FileTypes   []string `toml:"filetypes"`
	RootMarkers []string `toml:"root_markers"`
}

// ToServerConfig converts the TOML table entry to lsp.ServerConfig.
func (t LSPServerTOML) ToServerConfig() lsp.ServerConfig {
	return lsp.ServerConfig{
		Command:     t.Command,
		Args:        t.Args,
		FileTypes:   t.FileTypes,
		RootMarkers: t.RootMarkers,
	}
}

// LanguageServers builds the language-id -> ServerConfig table NewManager
// expects, keyed by the TOML table name (the language id).
func (c *Config) LanguageServers() map[string]lsp.ServerConfig {
	out := make(map[string]lsp.ServerConfig, len(c.LSP))
	for lang, entry := range c.LSP {
		out[lang] = entry.ToServerConfig()
	}
	return out
}

// Load reads configuration from a TOML file and applies environment
// variable overrides. A missing path is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{
		LSP: make(map[string]LSPServerTOML),
	}

	if path == "" {
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.Editor.TabSize < 0 {
		errs = append(errs, fmt.Errorf("editor.tabsize=%d must not be negative", c.Editor.TabSize))
	}
	if c.Editor.ScrollOff < 0 {
		errs = append(errs, fmt.Errorf("editor.scrolloff=%d must not be negative", c.Editor.ScrollOff))
	}
	if c.Editor.FPS < 0 {
		errs = append(errs, fmt.Errorf("editor.fps=%d must not be negative", c.Editor.FPS))
	}

	for lang, entry := range c.LSP {
		if entry.Command == "" {
			errs = append(errs, fmt.Errorf("lsp.%s.command is required", lang))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"GLINT_THEME", func(v string) {
			if v != "" {
				cfg.Editor.Theme = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// DataDir returns the path to glint's data directory (~/.config/glint).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "glint"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
