// Package cli implements the command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/zinc/internal/config"
	"github.com/aidanlsb/zinc/internal/ui"
)

var (
	// Global flags
	configPath    string
	dbPathFlag    string
	vaultPathFlag string
	subfolderFlag string

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "zinc",
	Short: "zinc - sync a Zotero library into an Obsidian vault",
	Long: `zinc keeps one markdown note per paper in your Obsidian vault, generated
from the Zotero database.

Metadata in each note's front matter is refreshed from Zotero on every sync.
Tags you add in the note are kept, and your Abstract, Notes and any extra
sections are never overwritten.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		var err error
		cfg, resolvedConfigPath, err = loadConfigWithPath()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "Fix or remove "+resolvedConfigPath)
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil || errors.Is(err, errReported) {
		return err
	}

	// Errors cobra raises itself (unknown flags, bad arguments).
	if jsonOutput {
		outputError(ErrInvalidInput, err.Error(), nil, "")
	} else {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.config/zinc/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "Path to zotero.sqlite (overrides zotero_db)")
	rootCmd.PersistentFlags().StringVar(&vaultPathFlag, "vault", "", "Path to the Obsidian vault (overrides vault)")
	rootCmd.PersistentFlags().StringVar(&subfolderFlag, "subfolder", "", "Notes folder inside the vault (overrides subfolder)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for scripts)")
}

// resolveConfigPath returns the config file in effect.
func resolveConfigPath() string {
	if strings.TrimSpace(configPath) != "" {
		return config.ExpandHome(configPath)
	}
	return config.DefaultPath()
}

func loadConfigWithPath() (*config.Config, string, error) {
	path := resolveConfigPath()
	loaded, err := config.LoadOptional(path)
	if err != nil {
		return nil, path, err
	}
	return loaded, path, nil
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

// getStorePath returns the store path: --db, then zotero_db, then the default.
func getStorePath() string {
	if dbPathFlag != "" {
		return config.ExpandHome(dbPathFlag)
	}
	return getConfig().StorePath()
}

// getVaultPath returns the vault root: --vault, then vault, then the default.
func getVaultPath() string {
	if vaultPathFlag != "" {
		return config.ExpandHome(vaultPathFlag)
	}
	return getConfig().VaultPath()
}

// getSubfolder returns the notes folder name inside the vault.
func getSubfolder() string {
	if subfolderFlag != "" {
		return subfolderFlag
	}
	return getConfig().NotesSubfolder()
}
