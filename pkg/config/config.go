// Package config loads, migrates and persists the voicerec configuration
// file: server settings, directory roots and the recorder entries.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the configuration schema version written by this build.
// Version 1 predates the per-entry auto-delete flag.
const CurrentVersion = 2

var (
	ErrEntryExists    = errors.New("entry with this name already exists")
	ErrNoEntries      = errors.New("no recorder entries configured")
	ErrPathNotAllowed = errors.New("save path is outside the allowed directories")
)

// CORS configures the optional CORS layer on the HTTP server.
type CORS struct {
	Enable       bool     `yaml:"enable"`
	AllowOrigins []string `yaml:"allow_origins,omitempty"`
	AllowMethods []string `yaml:"allow_methods,omitempty"`
	AllowHeaders []string `yaml:"allow_headers,omitempty"`
}

// Server holds the HTTP listener settings.
type Server struct {
	Host           string   `yaml:"host"`
	Port           string   `yaml:"port"`
	TrustedProxies []string `yaml:"trusted_proxies,omitempty"`
	CORS           CORS     `yaml:"cors,omitempty"`
}

// Roots names the directories that carry a public URL alias plus the config
// directory relative save paths resolve against.
type Roots struct {
	ConfigDir   string `yaml:"config_dir"`
	MediaRoot   string `yaml:"media_root"`
	MediaAlias  string `yaml:"media_alias"`
	AssetsRoot  string `yaml:"assets_root"`
	AssetsAlias string `yaml:"assets_alias"`
}

// Entry is one recorder instance: a named save location with an optional
// daily retention sweep.
type Entry struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	SavePath   string `yaml:"save_path"`
	AutoDelete bool   `yaml:"auto_delete"`
}

// Config is the persisted configuration document.
type Config struct {
	Version      int      `yaml:"version"`
	Server       Server   `yaml:"server"`
	Roots        Roots    `yaml:"roots"`
	AllowedPaths []string `yaml:"allowed_paths"`
	Entries      []Entry  `yaml:"entries"`
}

// Default returns the configuration written on first run.
func Default(configDir string) *Config {
	return &Config{
		Version: CurrentVersion,
		Server: Server{
			Host: "0.0.0.0",
			Port: "8099",
		},
		Roots: Roots{
			ConfigDir:   configDir,
			MediaRoot:   "/media",
			MediaAlias:  "/media/local",
			AssetsRoot:  filepath.Join(configDir, "www"),
			AssetsAlias: "/local",
		},
		AllowedPaths: []string{configDir, "/media"},
	}
}

// Load reads and migrates the configuration file. The migrated flag tells
// the caller the file content is stale and should be saved back.
func Load(fs afero.Fs, path string) (cfg *Config, migrated bool, err error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, false, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg = &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, false, fmt.Errorf("parse config %s: %w", path, err)
	}

	migrated, err = cfg.migrate()
	if err != nil {
		return nil, false, err
	}
	return cfg, migrated, nil
}

// migrate upgrades older configuration versions in place. A version newer
// than this build understands is an error.
func (c *Config) migrate() (bool, error) {
	if c.Version > CurrentVersion {
		return false, fmt.Errorf("config version %d is newer than supported version %d", c.Version, CurrentVersion)
	}
	if c.Version == CurrentVersion {
		return false, nil
	}

	// v1 entries have no auto_delete flag; yaml leaves it false, which is
	// exactly the upgrade default. Only the version number changes on disk.
	c.Version = CurrentVersion
	return true, nil
}

// Save writes the configuration document, creating parent directories.
func (c *Config) Save(fs afero.Fs, path string) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, raw, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Entry returns the entry with the given ID. An empty ID selects the first
// configured entry.
func (c *Config) Entry(id string) (Entry, bool) {
	if len(c.Entries) == 0 {
		return Entry{}, false
	}
	if id == "" {
		return c.Entries[0], true
	}
	for _, e := range c.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// AddEntry appends a new entry. Names are unique across entries since they
// double as a human-facing handle.
func (c *Config) AddEntry(entry Entry) error {
	for _, e := range c.Entries {
		if e.Name == entry.Name || e.ID == entry.ID {
			return ErrEntryExists
		}
	}
	c.Entries = append(c.Entries, entry)
	return nil
}

// NormalizeSavePath canonicalizes a user-supplied save path. Well-known
// absolute roots pass through, other absolute paths and bare names resolve
// under the config directory, and root-style relative spellings like
// "media/clips" gain their leading slash back.
func NormalizeSavePath(raw, configDir string) string {
	input := strings.TrimRight(strings.TrimSpace(raw), "/")

	switch {
	case input == "":
		return configDir
	case strings.HasPrefix(input, "/config"),
		strings.HasPrefix(input, "/homeassistant"),
		strings.HasPrefix(input, "/media"):
		return input
	case strings.HasPrefix(input, "/"):
		return filepath.Join(configDir, strings.TrimLeft(input, "/"))
	case strings.HasPrefix(input, "config/"),
		strings.HasPrefix(input, "homeassistant/"),
		strings.HasPrefix(input, "media/"):
		return "/" + input
	default:
		return filepath.Join(configDir, input)
	}
}

// CheckAllowedPath validates a save path against the allow-list. This runs
// at configuration time only; uploads trust the stored path.
func CheckAllowedPath(path string, allowed []string) error {
	for _, root := range allowed {
		root = strings.TrimRight(root, "/")
		if root == "" {
			continue
		}
		if path == root || strings.HasPrefix(path, root+"/") {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrPathNotAllowed, path)
}
