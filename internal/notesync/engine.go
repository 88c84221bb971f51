// Package notesync writes paper records into the vault as notes, merging each
// record with whatever the user has already written in its note.
package notesync

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aidanlsb/zinc/internal/atomicfile"
	"github.com/aidanlsb/zinc/internal/filenames"
	"github.com/aidanlsb/zinc/internal/note"
	"github.com/aidanlsb/zinc/internal/paper"
)

// Outcome describes what a sync did to one note.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

// Warning codes.
const (
	WarnHeaderUnreadable = "HEADER_UNREADABLE"
	WarnTitleCollision   = "TITLE_COLLISION"
)

// Warning is a recoverable anomaly reported during a run.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Key     string `json:"key,omitempty"`
	Path    string `json:"path,omitempty"`
}

// EngineOptions configure an Engine.
type EngineOptions struct {
	// Dir is the notes folder. It must exist unless DryRun is set.
	Dir string

	Filenames filenames.Style

	// DryRun computes outcomes without writing.
	DryRun bool

	// OnWarning receives recoverable anomalies. Optional.
	OnWarning func(Warning)
}

// Engine performs one read-merge-write cycle per paper.
type Engine struct {
	dir       string
	style     filenames.Style
	dryRun    bool
	onWarning func(Warning)
}

// NewEngine creates an Engine.
func NewEngine(opts EngineOptions) *Engine {
	style := opts.Filenames
	if style == "" {
		style = filenames.StyleTitle
	}
	return &Engine{
		dir:       opts.Dir,
		style:     style,
		dryRun:    opts.DryRun,
		onWarning: opts.OnWarning,
	}
}

// Path returns the note file a paper maps to.
func (e *Engine) Path(p *paper.Paper) string {
	return filepath.Join(e.dir, e.style.FileName(p.Title()))
}

// SyncPaper brings the paper's note up to date.
//
// An existing note whose header cannot be read is treated as new apart from
// its body: its tags are lost, the store's abstract replaces the note's when
// the store has one, and a warning is raised. Notes and user sections are
// kept. Read errors other than a missing file, and all write errors, are
// returned.
func (e *Engine) SyncPaper(p *paper.Paper) (Outcome, error) {
	path := e.Path(p)

	var existing *note.Document
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		existing = note.Parse(string(content))
		if existing.HeaderErr != nil {
			e.warn(Warning{
				Code:    WarnHeaderUnreadable,
				Key:     p.Key,
				Path:    path,
				Message: fmt.Sprintf("could not read header of %s, previous tags dropped: %v", filepath.Base(path), existing.HeaderErr),
			})
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return "", fmt.Errorf("failed to read note %s: %w", path, err)
	}

	data, err := Merge(p, existing).Render()
	if err != nil {
		return "", err
	}

	if e.dryRun {
		switch {
		case existing == nil:
			return OutcomeCreated, nil
		case bytes.Equal(content, data):
			return OutcomeUnchanged, nil
		default:
			return OutcomeUpdated, nil
		}
	}

	changed, err := atomicfile.ReplaceIfChanged(path, data)
	if err != nil {
		return "", fmt.Errorf("failed to write note %s: %w", path, err)
	}
	switch {
	case !changed:
		return OutcomeUnchanged, nil
	case existing == nil:
		return OutcomeCreated, nil
	default:
		return OutcomeUpdated, nil
	}
}

func (e *Engine) warn(w Warning) {
	if e.onWarning != nil {
		e.onWarning(w)
	}
}
