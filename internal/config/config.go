// Package config handles the zinc configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/zinc/internal/filenames"
	"github.com/aidanlsb/zinc/internal/paper"
)

const (
	// DefaultZoteroDB is where the reference manager keeps its store by default.
	DefaultZoteroDB = "~/Zotero/zotero.sqlite"

	// DefaultVault is used when neither the config nor a flag names a vault.
	DefaultVault = "~/Documents/ObsidianVault"

	// DefaultSubfolder is the notes folder inside the vault.
	DefaultSubfolder = "Academic Papers"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config represents the zinc configuration.
type Config struct {
	// ZoteroDB is the path to zotero.sqlite.
	ZoteroDB string `toml:"zotero_db"`

	// Vault is the root of the notes vault.
	Vault string `toml:"vault"`

	// Subfolder holds the generated notes, relative to Vault.
	Subfolder string `toml:"subfolder"`

	// ItemTypes restricts which record kinds are synced. Empty means all.
	ItemTypes []string `toml:"item_types"`

	IncludeTrashed bool `toml:"include_trashed"`

	// Snapshot reads a private copy of the store instead of the live file.
	Snapshot bool `toml:"snapshot"`

	// Filenames selects the note naming strategy: "title" or "slug".
	Filenames string `toml:"filenames"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown code blocks.
	CodeTheme string `toml:"code_theme"`
}

// StorePath returns the expanded store path, falling back to the default.
func (c *Config) StorePath() string {
	if strings.TrimSpace(c.ZoteroDB) == "" {
		return ExpandHome(DefaultZoteroDB)
	}
	return ExpandHome(c.ZoteroDB)
}

// VaultPath returns the expanded vault path, falling back to the default.
func (c *Config) VaultPath() string {
	if strings.TrimSpace(c.Vault) == "" {
		return ExpandHome(DefaultVault)
	}
	return ExpandHome(c.Vault)
}

// NotesSubfolder returns the configured subfolder or the default.
func (c *Config) NotesSubfolder() string {
	if strings.TrimSpace(c.Subfolder) == "" {
		return DefaultSubfolder
	}
	return c.Subfolder
}

// Types parses the configured item types.
func (c *Config) Types() ([]paper.ItemType, error) {
	var types []paper.ItemType
	for _, name := range c.ItemTypes {
		t, err := paper.ParseItemType(name)
		if err != nil {
			return nil, fmt.Errorf("%w: item_types: %v", ErrInvalid, err)
		}
		types = append(types, t)
	}
	return types, nil
}

// FilenameStyle parses the configured filename strategy.
func (c *Config) FilenameStyle() (filenames.Style, error) {
	style, err := filenames.ParseStyle(c.Filenames)
	if err != nil {
		return "", fmt.Errorf("%w: filenames: %v", ErrInvalid, err)
	}
	return style, nil
}

// Validate checks the values that have a closed set of options.
func (c *Config) Validate() error {
	if _, err := c.Types(); err != nil {
		return err
	}
	if _, err := c.FilenameStyle(); err != nil {
		return err
	}
	if filepath.IsAbs(c.Subfolder) {
		return fmt.Errorf("%w: subfolder must be relative to the vault: %s", ErrInvalid, c.Subfolder)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	return LoadOptional(DefaultPath())
}

// LoadOptional loads the configuration at path, returning an empty config
// when the file doesn't exist.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return LoadFrom(path)
}

// LoadFrom loads and validates the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalid, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %q in %s", ErrInvalid, undecoded[0].String(), path)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/zinc/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if xdgPath, err := XDGPath(); err == nil {
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "zinc", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

// XDGPath returns the XDG-style config path (~/.config/zinc/config.toml).
func XDGPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "zinc", "config.toml"), nil
}

const defaultConfig = `# zinc configuration

# Path to the Zotero database.
# zotero_db = "~/Zotero/zotero.sqlite"

# Obsidian vault root and the folder notes are written to.
# vault = "~/Documents/ObsidianVault"
# subfolder = "Academic Papers"

# Record kinds to sync (all when empty):
#   journalArticle, conferencePaper, preprint, report, thesis, book, bookSection
# item_types = ["journalArticle", "preprint"]

# Sync items that sit in the trash.
# include_trashed = false

# Read a private copy of the database. Useful while Zotero holds its lock.
# snapshot = false

# Note file naming: "title" (the paper title) or "slug".
# filenames = "title"

# Optional UI accent color for headers/links in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
# code_theme = "monokai"
`

// CreateDefault writes the commented default config to path unless a file
// already exists there. It reports whether a file was written.
func CreateDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}
