package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/file-prompts/internal/core/domain"
)

// DefaultFileName is the config file looked up when no path is given.
const DefaultFileName = "file-prompts.toml"

// Config is the on-disk configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Prompts   DirectoryConfig `toml:"prompts"`
	Resources DirectoryConfig `toml:"resources"`
	Watch     WatchConfig     `toml:"watch"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	// HTTPAddr selects the streamable HTTP transport. Empty means stdio.
	HTTPAddr string `toml:"http_addr"`
}

// DirectoryConfig describes one document directory.
type DirectoryConfig struct {
	Directory   string   `toml:"directory"`
	Extensions  []string `toml:"extensions"`
	MaxFileSize int64    `toml:"max_file_size"`
}

// WatchConfig holds hot reload settings.
type WatchConfig struct {
	Enabled           bool     `toml:"enabled"`
	Debounce          Duration `toml:"debounce"`
	MinReloadInterval Duration `toml:"min_reload_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Verbose bool `toml:"verbose"`
}

// Duration is a time.Duration written as a string such as "400ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Name == "" {
		cfg.Server.Name = "file-prompts"
	}
	if cfg.Prompts.Directory == "" {
		cfg.Prompts.Directory = "./prompts"
	}
	if cfg.Resources.Directory == "" {
		cfg.Resources.Directory = "./resources"
	}
	for _, dc := range []*DirectoryConfig{&cfg.Prompts, &cfg.Resources} {
		if len(dc.Extensions) == 0 {
			dc.Extensions = []string{".md"}
		}
		if dc.MaxFileSize <= 0 {
			dc.MaxFileSize = domain.DefaultMaxFileSize
		}
	}
	if cfg.Watch.Debounce.Duration <= 0 {
		cfg.Watch.Debounce.Duration = 400 * time.Millisecond
	}
	if cfg.Watch.MinReloadInterval.Duration <= 0 {
		cfg.Watch.MinReloadInterval.Duration = time.Second
	}
}

// Load reads and parses the config file at path, resolves directories and
// applies defaults. A missing file yields the defaults, with directories
// resolved against the directory path would live in.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Prompts.Directory = expandPath(cfg.Prompts.Directory, configDir)
	cfg.Resources.Directory = expandPath(cfg.Resources.Directory, configDir)

	return &cfg, nil
}

// Save writes cfg to path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// PromptPolicy returns the prompt load policy with configured overrides.
func (c *Config) PromptPolicy() domain.LoadPolicy {
	return c.Prompts.apply(domain.PromptPolicy())
}

// ResourcePolicy returns the resource load policy with configured overrides.
func (c *Config) ResourcePolicy() domain.LoadPolicy {
	return c.Resources.apply(domain.ResourcePolicy())
}

func (dc DirectoryConfig) apply(p domain.LoadPolicy) domain.LoadPolicy {
	if len(dc.Extensions) > 0 {
		p.Extensions = append([]string(nil), dc.Extensions...)
	}
	if dc.MaxFileSize > 0 {
		p.MaxFileSize = dc.MaxFileSize
	}
	return p
}

// expandPath converts a path to absolute. "~/" is relative to the home
// directory; other relative paths are relative to configDir.
func expandPath(path, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	abs, err := filepath.Abs(filepath.Join(configDir, path))
	if err != nil {
		return filepath.Join(configDir, path)
	}
	return abs
}
