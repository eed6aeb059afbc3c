package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config represents commitscope configuration
type Config struct {
	Store    StoreConfig    `json:"store"`
	Color    ColorConfig    `json:"color"`
	Snapshot SnapshotConfig `json:"snapshot"`
}

// StoreConfig controls where imported sessions live
type StoreConfig struct {
	Dir      string `json:"dir,omitempty"`
	Compress *bool  `json:"compress,omitempty"`
}

// ColorConfig holds color settings
type ColorConfig struct {
	UI *bool `json:"ui,omitempty"`
}

// SnapshotConfig holds snapshot printing settings
type SnapshotConfig struct {
	ShowDurations *bool `json:"show_durations,omitempty"`
}

// DirName is the workspace directory holding the store and local config.
const DirName = ".commitscope"

// Keys lists every supported configuration key.
var Keys = []string{"store.dir", "store.compress", "color.ui", "snapshot.show_durations"}

func boolPtr(b bool) *bool { return &b }

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Store:    StoreConfig{Dir: filepath.Join(DirName, "store"), Compress: boolPtr(true)},
		Color:    ColorConfig{UI: boolPtr(true)},
		Snapshot: SnapshotConfig{ShowDurations: boolPtr(true)},
	}
}

// Options locates the config files. Empty fields use the standard locations.
type Options struct {
	GlobalPath    string
	WorkspacePath string
}

func (o Options) global() (string, error) {
	if o.GlobalPath != "" {
		return o.GlobalPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".commitscopeconfig"), nil
}

func (o Options) workspace() string {
	if o.WorkspacePath != "" {
		return o.WorkspacePath
	}
	return filepath.Join(DirName, "config")
}

func (o Options) path(global bool) (string, error) {
	if global {
		return o.global()
	}
	return o.workspace(), nil
}

// Load reads the global config and then the workspace config over it.
// Missing files are skipped; unreadable JSON is an error.
func (o Options) Load() (*Config, error) {
	cfg := DefaultConfig()

	globalPath, err := o.global()
	if err == nil {
		if err := mergeFile(cfg, globalPath); err != nil {
			return nil, err
		}
	}
	if err := mergeFile(cfg, o.workspace()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from the standard locations.
func LoadConfig() (*Config, error) {
	return Options{}.Load()
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func mergeFile(dst *Config, path string) error {
	src, err := readFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	mergeConfig(dst, src)
	return nil
}

// mergeConfig copies every value set in src onto dst.
func mergeConfig(dst, src *Config) {
	if src.Store.Dir != "" {
		dst.Store.Dir = src.Store.Dir
	}
	if src.Store.Compress != nil {
		dst.Store.Compress = src.Store.Compress
	}
	if src.Color.UI != nil {
		dst.Color.UI = src.Color.UI
	}
	if src.Snapshot.ShowDurations != nil {
		dst.Snapshot.ShowDurations = src.Snapshot.ShowDurations
	}
}

// Get retrieves a configuration value by key (e.g., "store.dir")
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "store.dir":
		return c.Store.Dir, nil
	case "store.compress":
		return formatBool(c.Store.Compress), nil
	case "color.ui":
		return formatBool(c.Color.UI), nil
	case "snapshot.show_durations":
		return formatBool(c.Snapshot.ShowDurations), nil
	default:
		return "", unknownKey(key)
	}
}

// Set assigns a configuration value by key.
func (c *Config) Set(key, value string) error {
	if key == "store.dir" {
		c.Store.Dir = value
		return nil
	}

	var target **bool
	switch key {
	case "store.compress":
		target = &c.Store.Compress
	case "color.ui":
		target = &c.Color.UI
	case "snapshot.show_durations":
		target = &c.Snapshot.ShowDurations
	default:
		return unknownKey(key)
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s expects true or false, got %q", key, value)
	}
	*target = &b
	return nil
}

// SetValue writes key to the global or workspace config file. Only that file's
// own values are rewritten, so the other layer keeps precedence rules intact.
func (o Options) SetValue(key, value string, global bool) error {
	path, err := o.path(global)
	if err != nil {
		return err
	}

	cfg, err := readFile(path)
	if os.IsNotExist(err) {
		cfg = &Config{}
	} else if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func formatBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func unknownKey(key string) error {
	if !strings.Contains(key, ".") {
		return fmt.Errorf("invalid config key: %s (expected format: section.key)", key)
	}
	return fmt.Errorf("unknown config key: %s", key)
}

// CompressLogs reports whether operation logs are stored zstd-compressed.
func (c *Config) CompressLogs() bool { return isTrue(c.Store.Compress) }

// ColorUI reports whether colored output is wanted.
func (c *Config) ColorUI() bool { return isTrue(c.Color.UI) }

// ShowDurations reports whether snapshots print tree base durations.
func (c *Config) ShowDurations() bool { return isTrue(c.Snapshot.ShowDurations) }

func isTrue(b *bool) bool { return b != nil && *b }
