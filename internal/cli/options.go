package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aidanlsb/zinc/internal/config"
	"github.com/aidanlsb/zinc/internal/filenames"
	"github.com/aidanlsb/zinc/internal/notesync"
	"github.com/aidanlsb/zinc/internal/paper"
)

// itemTypesValue is a repeatable --type flag that only accepts known kinds.
// Both "--type a --type b" and "--type a,b" are accepted.
type itemTypesValue struct {
	types []paper.ItemType
}

var _ pflag.Value = (*itemTypesValue)(nil)

func (v *itemTypesValue) String() string {
	names := make([]string, len(v.types))
	for i, t := range v.types {
		names[i] = string(t)
	}
	return strings.Join(names, ",")
}

func (v *itemTypesValue) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := paper.ParseItemType(part)
		if err != nil {
			return err
		}
		v.types = append(v.types, t)
	}
	return nil
}

func (v *itemTypesValue) Type() string {
	return "type"
}

// selectionFlags choose which records are read from the store.
type selectionFlags struct {
	types          itemTypesValue
	includeTrashed bool
	snapshot       bool
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	names := make([]string, len(paper.AllItemTypes))
	for i, t := range paper.AllItemTypes {
		names[i] = string(t)
	}
	cmd.Flags().Var(&s.types, "type", "Only sync these item types (repeatable): "+strings.Join(names, ", "))
	cmd.Flags().BoolVar(&s.includeTrashed, "include-trashed", false, "Include items in the Zotero trash")
	cmd.Flags().BoolVar(&s.snapshot, "snapshot", false, "Read a copy of the database (use while Zotero is running)")
}

// reset clears parsed values so commands can be run more than once in tests.
func (s *selectionFlags) reset() {
	s.types = itemTypesValue{}
	s.includeTrashed = false
	s.snapshot = false
}

// syncOptions merges config values with the flags set on cmd. Flags win.
func (s *selectionFlags) syncOptions(cmd *cobra.Command) (notesync.Options, error) {
	c := getConfig()

	types := s.types.types
	if !cmd.Flags().Changed("type") {
		var err error
		if types, err = c.Types(); err != nil {
			return notesync.Options{}, err
		}
	}

	includeTrashed := c.IncludeTrashed
	if cmd.Flags().Changed("include-trashed") {
		includeTrashed = s.includeTrashed
	}
	snapshot := c.Snapshot
	if cmd.Flags().Changed("snapshot") {
		snapshot = s.snapshot
	}

	style, err := c.FilenameStyle()
	if err != nil {
		return notesync.Options{}, err
	}
	if f := cmd.Flags().Lookup("filenames"); f != nil && f.Changed {
		if style, err = filenames.ParseStyle(f.Value.String()); err != nil {
			return notesync.Options{}, err
		}
	}

	return notesync.Options{
		StorePath:      getStorePath(),
		VaultPath:      getVaultPath(),
		Subfolder:      getSubfolder(),
		ItemTypes:      types,
		IncludeTrashed: includeTrashed,
		Snapshot:       snapshot,
		Filenames:      style,
	}, nil
}

// handleOptionsError reports a bad config value or flag.
func handleOptionsError(err error) error {
	if errors.Is(err, config.ErrInvalid) {
		return handleError(ErrConfigInvalid, err, suggestionFor(ErrConfigInvalid))
	}
	return handleError(ErrInvalidInput, err, "")
}
