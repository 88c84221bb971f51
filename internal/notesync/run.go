package notesync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aidanlsb/zinc/internal/filenames"
	"github.com/aidanlsb/zinc/internal/paper"
	"github.com/aidanlsb/zinc/internal/zotero"
)

// DefaultSubfolder is the notes folder inside the vault.
const DefaultSubfolder = "Academic Papers"

// ErrVaultNotFound indicates the vault root is missing or not a directory.
var ErrVaultNotFound = errors.New("vault not found")

// Options configure a full sync run.
type Options struct {
	StorePath string
	VaultPath string
	Subfolder string

	ItemTypes      []paper.ItemType
	IncludeTrashed bool
	Snapshot       bool

	Filenames filenames.Style
	DryRun    bool

	// OnWarning receives every warning as it happens. Optional.
	OnWarning func(Warning)

	// OnExtracted receives the record count once extraction finishes. Optional.
	OnExtracted func(total int)

	// OnRecord is called after each record is processed. Optional.
	OnRecord func(Record)
}

// Record reports what happened to one paper during a run.
type Record struct {
	Paper   *paper.Paper
	Path    string
	Outcome Outcome
	Err     error
}

// RecordError is a failure confined to one record.
type RecordError struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e RecordError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Title, e.Key, e.Message)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// Summary reports a finished run.
type Summary struct {
	NotesDir  string        `json:"notes_dir"`
	Processed int           `json:"processed"`
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	Unchanged int           `json:"unchanged"`
	Failed    int           `json:"failed"`
	DryRun    bool          `json:"dry_run,omitempty"`
	Errors    []RecordError `json:"errors,omitempty"`
	Warnings  []Warning     `json:"warnings,omitempty"`
}

// Synced is the number of records whose note is now current.
func (s *Summary) Synced() int {
	return s.Processed - s.Failed
}

// NotesDir returns the folder notes are written to.
func NotesDir(vaultPath, subfolder string) string {
	if subfolder == "" {
		subfolder = DefaultSubfolder
	}
	return filepath.Join(vaultPath, subfolder)
}

// Run extracts every record from the store and syncs each one in order.
//
// Configuration and extraction errors abort the run before any note is
// touched. Per-record failures are collected in the summary and the run
// continues with the next record.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	info, err := os.Stat(opts.VaultPath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, opts.VaultPath)
	}

	summary := &Summary{
		NotesDir: NotesDir(opts.VaultPath, opts.Subfolder),
		DryRun:   opts.DryRun,
	}
	warn := func(w Warning) {
		summary.Warnings = append(summary.Warnings, w)
		if opts.OnWarning != nil {
			opts.OnWarning(w)
		}
	}

	res, err := zotero.Extract(ctx, zotero.Options{
		StorePath:      opts.StorePath,
		ItemTypes:      opts.ItemTypes,
		IncludeTrashed: opts.IncludeTrashed,
		Snapshot:       opts.Snapshot,
	})
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		warn(Warning{Code: w.Code, Message: w.Message, Key: w.Key})
	}
	if opts.OnExtracted != nil {
		opts.OnExtracted(len(res.Papers))
	}

	if !opts.DryRun {
		if err := os.MkdirAll(summary.NotesDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create notes folder: %w", err)
		}
	}

	engine := NewEngine(EngineOptions{
		Dir:       summary.NotesDir,
		Filenames: opts.Filenames,
		DryRun:    opts.DryRun,
		OnWarning: warn,
	})

	owners := make(map[string]string)
	for i := range res.Papers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		p := &res.Papers[i]
		path := engine.Path(p)
		if prev, ok := owners[path]; ok {
			warn(Warning{
				Code:    WarnTitleCollision,
				Key:     p.Key,
				Path:    path,
				Message: fmt.Sprintf("%s and %s map to the same note %s; the later record wins", prev, p.Key, filepath.Base(path)),
			})
		}
		owners[path] = p.Key

		outcome, err := engine.SyncPaper(p)
		summary.Processed++
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, RecordError{
				Key:     p.Key,
				Title:   p.Title(),
				Message: err.Error(),
				Err:     err,
			})
		} else {
			switch outcome {
			case OutcomeCreated:
				summary.Created++
			case OutcomeUpdated:
				summary.Updated++
			case OutcomeUnchanged:
				summary.Unchanged++
			}
		}

		if opts.OnRecord != nil {
			opts.OnRecord(Record{Paper: p, Path: path, Outcome: outcome, Err: err})
		}
	}

	return summary, nil
}
