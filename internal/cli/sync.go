package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/zinc/internal/notesync"
	"github.com/aidanlsb/zinc/internal/ui"
)

var (
	syncSelection selectionFlags
	syncDryRun    bool
	syncFilenames string
	syncVerbose   bool
)

// syncedNote is one record in the JSON output of sync.
type syncedNote struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Path    string `json:"path"`
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create or update a note for every paper in the library",
	Long: `Read the Zotero database and bring one note per paper up to date.

Front matter is regenerated from Zotero, except tags: tags already in the note
are kept and merged with Zotero's. The Abstract section is filled from Zotero
only while it is empty; Notes and any sections you add are left alone.
References are always regenerated.

Notes are never deleted. A note whose content would not change is not
rewritten.

Examples:
  zinc sync
  zinc sync --dry-run
  zinc sync --type journalArticle --type preprint
  zinc sync --snapshot          # while Zotero is running`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncSelection.register(syncCmd)
	syncCmd.Flags().BoolVarP(&syncDryRun, "dry-run", "n", false, "Report what would change without writing")
	syncCmd.Flags().StringVar(&syncFilenames, "filenames", "", "Note naming: title or slug (overrides filenames)")
	syncCmd.Flags().BoolVarP(&syncVerbose, "verbose", "V", false, "List unchanged notes too")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	opts, err := syncSelection.syncOptions(cmd)
	if err != nil {
		return handleOptionsError(err)
	}
	opts.DryRun = syncDryRun

	var notes []syncedNote
	opts.OnRecord = func(r notesync.Record) {
		n := syncedNote{
			Key:     r.Paper.Key,
			Title:   r.Paper.Title(),
			Path:    r.Path,
			Outcome: string(r.Outcome),
		}
		if r.Err != nil {
			n.Error = r.Err.Error()
		}
		notes = append(notes, n)
	}

	var (
		spinner  *ui.Spinner
		progress *ui.Progress
	)
	stopSpinner := func() {
		if spinner != nil {
			spinner.Stop()
			spinner = nil
		}
	}
	if !isJSONOutput() {
		spinner = ui.NewSpinner("Reading " + ui.FilePath(opts.StorePath))
		spinner.Start()
		opts.OnExtracted = func(total int) {
			stopSpinner()
			progress = ui.NewProgress("Syncing notes", total)
		}
	}
	onRecord := opts.OnRecord
	opts.OnRecord = func(r notesync.Record) {
		onRecord(r)
		if progress != nil {
			progress.Increment()
		}
	}

	start := time.Now()
	summary, err := notesync.Run(context.Background(), opts)
	stopSpinner()
	if progress != nil {
		progress.Done()
	}
	if err != nil {
		return handleCoreError(err)
	}
	elapsed := time.Since(start)

	if isJSONOutput() {
		outputSuccessWithWarnings(map[string]interface{}{
			"summary": summary,
			"notes":   notes,
		}, convertWarnings(summary.Warnings), &Meta{
			Count:      summary.Processed,
			DurationMs: elapsed.Milliseconds(),
		})
		return nil
	}

	printSyncReport(summary, notes)
	return nil
}

func printSyncReport(summary *notesync.Summary, notes []syncedNote) {
	for _, w := range summary.Warnings {
		fmt.Fprintln(os.Stderr, ui.Warning(w.Message))
	}

	for _, n := range notes {
		switch {
		case n.Error != "":
			fmt.Fprintln(os.Stderr, ui.Errorf("%s: %s", n.Title, n.Error))
		case n.Outcome == string(notesync.OutcomeUnchanged) && !syncVerbose:
		default:
			fmt.Printf("  %-9s %s\n", n.Outcome, ui.FilePath(displayPath(summary.NotesDir, n.Path)))
		}
	}

	verb := "Synced"
	if summary.DryRun {
		verb = "Would sync"
	}
	fmt.Println(ui.Successf("%s %d of %d papers to %s %s",
		verb, summary.Synced(), summary.Processed,
		ui.FilePath(summary.NotesDir),
		ui.Hint(fmt.Sprintf("(%d created, %d updated, %d unchanged)", summary.Created, summary.Updated, summary.Unchanged))))

	if summary.Failed > 0 || len(summary.Warnings) > 0 {
		fmt.Fprintln(os.Stderr, ui.Hint(ui.ErrorWarningCounts(summary.Failed, len(summary.Warnings))))
	}
}

func displayPath(dir, path string) string {
	if rel, err := filepath.Rel(dir, path); err == nil {
		return rel
	}
	return path
}
