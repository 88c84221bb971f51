package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/aidanlsb/zinc/internal/config"
)

func resetConfigSetFlagsForTest() {
	configSetItemTypes = nil
	configSetFilenames = ""
	configSetIncludeTrashed = false
	configSetSnapshot = false
	configSetUIAccent = ""
	configSetUICodeTheme = ""

	for _, name := range []string{"item-types", "filenames", "include-trashed", "snapshot", "ui-accent", "ui-code-theme"} {
		if f := configSetCmd.Flags().Lookup(name); f != nil {
			f.Changed = false
		}
	}
}

func TestConfigInitCreatesConfigFile(t *testing.T) {
	withGlobals(t)
	prevForce := configInitForce
	t.Cleanup(func() { configInitForce = prevForce })

	cfgPath := filepath.Join(t.TempDir(), "nested", "config.toml")
	configPath = cfgPath
	jsonOutput = true
	configInitForce = false

	out := captureStdout(t, func() {
		if err := configInitCmd.RunE(configInitCmd, []string{}); err != nil {
			t.Fatalf("configInitCmd.RunE returned error: %v", err)
		}
	})
	if !strings.Contains(out, `"created": true`) {
		t.Fatalf("expected created=true, got %s", out)
	}

	content, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("failed to read created config: %v", err)
	}
	if !strings.Contains(string(content), "# zinc configuration") {
		t.Fatalf("expected default config header in file, got:\n%s", string(content))
	}
}

func TestConfigInitSeedsFromFlags(t *testing.T) {
	withGlobals(t)

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	configPath = cfgPath
	jsonOutput = true
	dbPathFlag = "/data/zotero.sqlite"
	vaultPathFlag = "/data/vault"

	captureStdout(t, func() {
		if err := configInitCmd.RunE(configInitCmd, []string{}); err != nil {
			t.Fatalf("configInitCmd.RunE returned error: %v", err)
		}
	})

	loaded, err := config.LoadFrom(cfgPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if loaded.ZoteroDB != "/data/zotero.sqlite" || loaded.Vault != "/data/vault" {
		t.Fatalf("unexpected config: %+v", loaded)
	}
	if loaded.Subfolder != "" {
		t.Fatalf("expected subfolder to stay unset, got %q", loaded.Subfolder)
	}
}

func TestConfigInitKeepsExistingFile(t *testing.T) {
	withGlobals(t)
	prevForce := configInitForce
	t.Cleanup(func() { configInitForce = prevForce })

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	original := "vault = \"/mine\"\n"
	if err := os.WriteFile(cfgPath, []byte(original), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	configPath = cfgPath
	jsonOutput = true
	configInitForce = false

	out := captureStdout(t, func() {
		if err := configInitCmd.RunE(configInitCmd, []string{}); err != nil {
			t.Fatalf("configInitCmd.RunE returned error: %v", err)
		}
	})
	if !strings.Contains(out, `"created": false`) {
		t.Fatalf("expected created=false, got %s", out)
	}
	content, _ := os.ReadFile(cfgPath)
	if string(content) != original {
		t.Fatalf("existing config was modified:\n%s", content)
	}

	configInitForce = true
	captureStdout(t, func() {
		if err := configInitCmd.RunE(configInitCmd, []string{}); err != nil {
			t.Fatalf("configInitCmd.RunE with --force returned error: %v", err)
		}
	})
	content, _ = os.ReadFile(cfgPath)
	if !strings.Contains(string(content), "# zinc configuration") {
		t.Fatalf("expected --force to replace the file, got:\n%s", content)
	}
}

func TestConfigSetUpdatesFields(t *testing.T) {
	withGlobals(t)
	t.Cleanup(resetConfigSetFlagsForTest)
	resetConfigSetFlagsForTest()

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("zotero_db = \"/old.sqlite\"\nsnapshot = true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	configPath = cfgPath
	jsonOutput = true
	vaultPathFlag = "/vault/work"

	configSetItemTypes = []string{"journalArticle", "preprint"}
	configSetFilenames = "slug"
	configSetUIAccent = "39"
	configSetUICodeTheme = "dracula"
	configSetCmd.Flags().Lookup("item-types").Changed = true
	configSetCmd.Flags().Lookup("filenames").Changed = true
	configSetCmd.Flags().Lookup("ui-accent").Changed = true
	configSetCmd.Flags().Lookup("ui-code-theme").Changed = true

	out := captureStdout(t, func() {
		if err := configSetCmd.RunE(configSetCmd, []string{}); err != nil {
			t.Fatalf("configSetCmd.RunE returned error: %v", err)
		}
	})

	var resp struct {
		OK   bool `json:"ok"`
		Data struct {
			Changed []string `json:"changed"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("expected JSON output, got parse error: %v; out=%s", err, out)
	}
	wantChanged := []string{"vault", "item_types", "filenames", "ui.accent", "ui.code_theme"}
	if !resp.OK || !reflect.DeepEqual(resp.Data.Changed, wantChanged) {
		t.Fatalf("changed = %v, want %v", resp.Data.Changed, wantChanged)
	}

	loaded, err := config.LoadFrom(cfgPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if loaded.ZoteroDB != "/old.sqlite" || !loaded.Snapshot {
		t.Fatalf("existing values were lost: %+v", loaded)
	}
	if loaded.Vault != "/vault/work" {
		t.Fatalf("expected vault=/vault/work, got %q", loaded.Vault)
	}
	if !reflect.DeepEqual(loaded.ItemTypes, []string{"journalArticle", "preprint"}) {
		t.Fatalf("item_types = %v", loaded.ItemTypes)
	}
	if loaded.Filenames != "slug" {
		t.Fatalf("expected filenames=slug, got %q", loaded.Filenames)
	}
	if loaded.UI.Accent != "39" || loaded.UI.CodeTheme != "dracula" {
		t.Fatalf("ui = %+v", loaded.UI)
	}
}

func TestConfigSetRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		apply   func()
		wantErr string
	}{
		{
			name: "unknown item type",
			apply: func() {
				configSetItemTypes = []string{"podcast"}
				configSetCmd.Flags().Lookup("item-types").Changed = true
			},
			wantErr: "unknown item type",
		},
		{
			name: "unknown filename style",
			apply: func() {
				configSetFilenames = "kebab"
				configSetCmd.Flags().Lookup("filenames").Changed = true
			},
			wantErr: "kebab",
		},
		{
			name:    "nothing to set",
			apply:   func() {},
			wantErr: "no config values given",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withGlobals(t)
			t.Cleanup(resetConfigSetFlagsForTest)
			resetConfigSetFlagsForTest()

			cfgPath := filepath.Join(t.TempDir(), "config.toml")
			configPath = cfgPath
			tt.apply()

			err := configSetCmd.RunE(configSetCmd, []string{})
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q in error, got %v", tt.wantErr, err)
			}
			if _, statErr := os.Stat(cfgPath); !os.IsNotExist(statErr) {
				t.Fatalf("config should not be written on error")
			}
		})
	}
}

func TestConfigShowJSON(t *testing.T) {
	withGlobals(t)

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	configPath = cfgPath
	jsonOutput = true
	cfg = &config.Config{Vault: "/vault", ItemTypes: []string{"book"}}
	dbPathFlag = "/override.sqlite"

	out := captureStdout(t, func() {
		if err := configCmd.RunE(configCmd, []string{}); err != nil {
			t.Fatalf("configCmd.RunE returned error: %v", err)
		}
	})

	var resp struct {
		OK   bool `json:"ok"`
		Data struct {
			ConfigPath string   `json:"config_path"`
			Exists     bool     `json:"exists"`
			Vault      string   `json:"vault"`
			ItemTypes  []string `json:"item_types"`
			Resolved   struct {
				StorePath string `json:"store_path"`
				VaultPath string `json:"vault_path"`
				Subfolder string `json:"subfolder"`
			} `json:"resolved"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("expected JSON output, got parse error: %v; out=%s", err, out)
	}
	if !resp.OK || resp.Data.ConfigPath != cfgPath || resp.Data.Exists {
		t.Fatalf("unexpected response: %s", out)
	}
	if resp.Data.Vault != "/vault" || !reflect.DeepEqual(resp.Data.ItemTypes, []string{"book"}) {
		t.Fatalf("unexpected config values: %s", out)
	}
	if resp.Data.Resolved.StorePath != "/override.sqlite" {
		t.Fatalf("store_path = %q", resp.Data.Resolved.StorePath)
	}
	if resp.Data.Resolved.VaultPath != "/vault" || resp.Data.Resolved.Subfolder != config.DefaultSubfolder {
		t.Fatalf("resolved = %+v", resp.Data.Resolved)
	}
}
