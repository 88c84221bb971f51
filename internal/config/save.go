package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/zinc/internal/atomicfile"
)

type persistedConfig struct {
	ZoteroDB       *string              `toml:"zotero_db,omitempty"`
	Vault          *string              `toml:"vault,omitempty"`
	Subfolder      *string              `toml:"subfolder,omitempty"`
	ItemTypes      []string             `toml:"item_types,omitempty"`
	IncludeTrashed *bool                `toml:"include_trashed,omitempty"`
	Snapshot       *bool                `toml:"snapshot,omitempty"`
	Filenames      *string              `toml:"filenames,omitempty"`
	UI             *persistedUISettings `toml:"ui,omitempty"`
}

type persistedUISettings struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func truePtr(value bool) *bool {
	if !value {
		return nil
	}
	return &value
}

// SaveTo writes the config to path atomically. Unset values are left out so
// the file stays minimal.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		ZoteroDB:       nonEmptyPtr(cfg.ZoteroDB),
		Vault:          nonEmptyPtr(cfg.Vault),
		Subfolder:      nonEmptyPtr(cfg.Subfolder),
		IncludeTrashed: truePtr(cfg.IncludeTrashed),
		Snapshot:       truePtr(cfg.Snapshot),
		Filenames:      nonEmptyPtr(cfg.Filenames),
	}
	if len(cfg.ItemTypes) > 0 {
		out.ItemTypes = cfg.ItemTypes
	}

	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	if accent != nil || codeTheme != nil {
		out.UI = &persistedUISettings{
			Accent:    accent,
			CodeTheme: codeTheme,
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}
