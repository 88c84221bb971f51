package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/zinc/internal/config"
	"github.com/aidanlsb/zinc/internal/filenames"
	"github.com/aidanlsb/zinc/internal/paper"
	"github.com/aidanlsb/zinc/internal/ui"
)

var (
	configInitForce bool

	configSetItemTypes      []string
	configSetFilenames      string
	configSetIncludeTrashed bool
	configSetSnapshot       bool
	configSetUIAccent       string
	configSetUICodeTheme    string
)

func configData(path string, exists bool, c *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"config_path":     path,
		"exists":          exists,
		"zotero_db":       strings.TrimSpace(c.ZoteroDB),
		"vault":           strings.TrimSpace(c.Vault),
		"subfolder":       strings.TrimSpace(c.Subfolder),
		"item_types":      c.ItemTypes,
		"include_trashed": c.IncludeTrashed,
		"snapshot":        c.Snapshot,
		"filenames":       strings.TrimSpace(c.Filenames),
		"ui": map[string]interface{}{
			"accent":     strings.TrimSpace(c.UI.Accent),
			"code_theme": strings.TrimSpace(c.UI.CodeTheme),
		},
		"resolved": map[string]interface{}{
			"store_path": getStorePath(),
			"vault_path": getVaultPath(),
			"subfolder":  getSubfolder(),
		},
	}
}

func configFileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path := resolveConfigPath()
	exists := configFileExists(path)
	c := getConfig()

	if isJSONOutput() {
		outputSuccess(configData(path, exists, c), nil)
		return nil
	}

	if exists {
		fmt.Printf("config: %s\n", ui.FilePath(path))
	} else {
		fmt.Printf("config: %s %s\n", ui.FilePath(path), ui.Hint("(not created, run 'zinc config init')"))
	}
	fmt.Printf("zotero_db: %s\n", getStorePath())
	fmt.Printf("vault: %s\n", getVaultPath())
	fmt.Printf("subfolder: %s\n", getSubfolder())
	if len(c.ItemTypes) > 0 {
		fmt.Printf("item_types: %s\n", strings.Join(c.ItemTypes, ", "))
	}
	if c.IncludeTrashed {
		fmt.Println("include_trashed: true")
	}
	if c.Snapshot {
		fmt.Println("snapshot: true")
	}
	if v := strings.TrimSpace(c.Filenames); v != "" {
		fmt.Printf("filenames: %s\n", v)
	}
	if v := strings.TrimSpace(c.UI.Accent); v != "" {
		fmt.Printf("ui.accent: %s\n", v)
	}
	if v := strings.TrimSpace(c.UI.CodeTheme); v != "" {
		fmt.Printf("ui.code_theme: %s\n", v)
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or edit the zinc config file",
	Long: `Show the active configuration, with flag overrides applied.

The config file lives at ~/.config/zinc/config.toml unless --config is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file",
	Long: `Create the config file.

Without flags a commented template is written. With --db, --vault or
--subfolder those values are saved instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetPath := resolveConfigPath()
		existed := configFileExists(targetPath)

		seeded := dbPathFlag != "" || vaultPathFlag != "" || subfolderFlag != ""
		created := false
		switch {
		case existed && !configInitForce:
		case seeded:
			if err := config.SaveTo(targetPath, &config.Config{
				ZoteroDB:  dbPathFlag,
				Vault:     vaultPathFlag,
				Subfolder: subfolderFlag,
			}); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
			created = true
		default:
			if existed {
				if err := os.Remove(targetPath); err != nil {
					return handleError(ErrFileWriteError, err, "")
				}
			}
			var err error
			if created, err = config.CreateDefault(targetPath); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"config_path": targetPath,
				"created":     created,
			}, nil)
			return nil
		}

		if created {
			fmt.Println(ui.Successf("Created config: %s", ui.FilePath(targetPath)))
		} else {
			fmt.Printf("Config already exists: %s %s\n", ui.FilePath(targetPath), ui.Hint("(use --force to replace it)"))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set one or more config values",
	Long: `Set one or more config values.

--db, --vault and --subfolder are saved when given, along with the flags below.

Examples:
  zinc config set --db ~/Zotero/zotero.sqlite --vault ~/Notes
  zinc config set --item-types journalArticle,preprint --filenames slug`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveConfigPath()
		c, err := config.LoadOptional(path)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		changed := make([]string, 0, 8)
		flags := cmd.Flags()

		if dbPathFlag != "" {
			c.ZoteroDB = dbPathFlag
			changed = append(changed, "zotero_db")
		}
		if vaultPathFlag != "" {
			c.Vault = vaultPathFlag
			changed = append(changed, "vault")
		}
		if subfolderFlag != "" {
			c.Subfolder = subfolderFlag
			changed = append(changed, "subfolder")
		}
		if flags.Changed("item-types") {
			types := make([]string, 0, len(configSetItemTypes))
			for _, name := range configSetItemTypes {
				t, err := paper.ParseItemType(name)
				if err != nil {
					return handleError(ErrInvalidInput, err, "")
				}
				types = append(types, string(t))
			}
			c.ItemTypes = types
			changed = append(changed, "item_types")
		}
		if flags.Changed("filenames") {
			style, err := filenames.ParseStyle(configSetFilenames)
			if err != nil {
				return handleError(ErrInvalidInput, err, "")
			}
			c.Filenames = string(style)
			changed = append(changed, "filenames")
		}
		if flags.Changed("include-trashed") {
			c.IncludeTrashed = configSetIncludeTrashed
			changed = append(changed, "include_trashed")
		}
		if flags.Changed("snapshot") {
			c.Snapshot = configSetSnapshot
			changed = append(changed, "snapshot")
		}
		if flags.Changed("ui-accent") {
			c.UI.Accent = strings.TrimSpace(configSetUIAccent)
			changed = append(changed, "ui.accent")
		}
		if flags.Changed("ui-code-theme") {
			c.UI.CodeTheme = strings.TrimSpace(configSetUICodeTheme)
			changed = append(changed, "ui.code_theme")
		}

		if len(changed) == 0 {
			return handleErrorMsg(ErrInvalidInput, "no config values given", "Run 'zinc config set --help' to see the settable values")
		}

		if err := c.Validate(); err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		if err := config.SaveTo(path, c); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"config_path": path,
				"changed":     changed,
			}, nil)
			return nil
		}

		fmt.Println(ui.Successf("Updated %s in %s", strings.Join(changed, ", "), ui.FilePath(path)))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Replace an existing config file")

	configSetCmd.Flags().StringSliceVar(&configSetItemTypes, "item-types", nil, "Item types to sync (comma separated)")
	configSetCmd.Flags().StringVar(&configSetFilenames, "filenames", "", "Note naming: title or slug")
	configSetCmd.Flags().BoolVar(&configSetIncludeTrashed, "include-trashed", false, "Sync items in the Zotero trash")
	configSetCmd.Flags().BoolVar(&configSetSnapshot, "snapshot", false, "Read a copy of the database")
	configSetCmd.Flags().StringVar(&configSetUIAccent, "ui-accent", "", "Accent color (ANSI 0-255 or #RRGGBB)")
	configSetCmd.Flags().StringVar(&configSetUICodeTheme, "ui-code-theme", "", "Code block theme for 'zinc show'")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
