package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/zinc/internal/notesync"
	"github.com/aidanlsb/zinc/internal/ui"
	"github.com/aidanlsb/zinc/internal/watcher"
)

var (
	watchSelection selectionFlags
	watchFilenames string
	watchDebug     bool
	watchDebounce  time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync again whenever the Zotero database changes",
	Long: `Run a sync, then keep watching the Zotero database and sync again after
every change.

The watcher:
- Monitors zotero.sqlite and its -wal/-journal files
- Debounces bursts of writes (waits for the database to be quiet)
- Runs one full sync at a time, never two at once

Examples:
  zinc watch
  zinc watch --snapshot --debug`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchSelection.register(watchCmd)
	watchCmd.Flags().StringVar(&watchFilenames, "filenames", "", "Note naming: title or slug (overrides filenames)")
	watchCmd.Flags().BoolVar(&watchDebug, "debug", false, "Enable debug logging")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "Quiet period before a sync starts")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts, err := watchSelection.syncOptions(cmd)
	if err != nil {
		return handleOptionsError(err)
	}
	if !isJSONOutput() {
		opts.OnWarning = func(w notesync.Warning) {
			fmt.Fprintln(os.Stderr, ui.Warning(w.Message))
		}
	}

	w, err := watcher.New(watcher.Config{
		Sync:          opts,
		DebounceDelay: watchDebounce,
		Debug:         watchDebug,
		InitialSync:   true,
		OnSync:        reportWatchSync,
	})
	if err != nil {
		return handleError(ErrInvalidInput, err, "")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !isJSONOutput() {
		fmt.Printf("Watching %s\n", ui.FilePath(opts.StorePath))
		fmt.Println(ui.Hint("Press Ctrl+C to stop"))
	}

	if err := w.Start(ctx); err != nil && ctx.Err() == nil {
		return handleCoreError(err)
	}
	if !isJSONOutput() {
		fmt.Println("\nStopped watching")
	}
	return nil
}

// reportWatchSync prints one line per sync, or one envelope per sync in JSON mode.
func reportWatchSync(summary *notesync.Summary, err error) {
	if isJSONOutput() {
		if err != nil {
			code := errorCode(err)
			outputError(code, err.Error(), nil, suggestionFor(code))
			return
		}
		outputSuccessWithWarnings(map[string]interface{}{"summary": summary},
			convertWarnings(summary.Warnings), &Meta{Count: summary.Processed})
		return
	}

	stamp := ui.Hint(time.Now().Format("15:04:05"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", stamp, ui.Errorf("sync failed: %v", err))
		return
	}
	fmt.Printf("%s %s\n", stamp, ui.Successf("%d papers (%d created, %d updated, %d failed)",
		summary.Processed, summary.Created, summary.Updated, summary.Failed))
	for _, e := range summary.Errors {
		fmt.Fprintln(os.Stderr, ui.Error(e.Error()))
	}
}
