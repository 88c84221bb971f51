// Package zotero reads paper records out of the reference manager's SQLite
// database. Access is strictly read-only.
package zotero

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/aidanlsb/zinc/internal/paper"
	"github.com/aidanlsb/zinc/internal/sqlutil"
)

var (
	// ErrStoreNotFound indicates the configured database file does not exist.
	ErrStoreNotFound = errors.New("reference store not found")
	// ErrUnknownItemType indicates the type filter names a kind outside the supported set.
	ErrUnknownItemType = errors.New("unknown item type")
)

// Warning codes.
const (
	WarnMultiplePDFs = "MULTIPLE_PDF_ATTACHMENTS"
)

// BacklinkPrefix is the URI scheme the reference manager registers for opening
// an attachment in its PDF reader.
const BacklinkPrefix = "zotero://open-pdf/library/items/"

const pdfContentType = "application/pdf"

// Warning is a recoverable anomaly found during extraction.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Key     string `json:"key,omitempty"`
}

// Options control which records are extracted.
type Options struct {
	// StorePath is the database file.
	StorePath string

	// ItemTypes restricts extraction to these kinds. Empty means all kinds.
	ItemTypes []paper.ItemType

	// IncludeTrashed keeps items that sit in the trash.
	IncludeTrashed bool

	// Snapshot reads a private copy of the database so a running reference
	// manager holding the file lock does not block extraction.
	Snapshot bool
}

// Result is the output of one extraction.
type Result struct {
	Papers   []paper.Paper
	Warnings []Warning
}

// Extract opens the store, reads every matching record and closes the store
// before returning.
func Extract(ctx context.Context, opts Options) (*Result, error) {
	if _, err := os.Stat(opts.StorePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, opts.StorePath)
		}
		return nil, fmt.Errorf("failed to stat store: %w", err)
	}

	types, err := resolveItemTypes(opts.ItemTypes)
	if err != nil {
		return nil, err
	}

	storePath, readOnly := opts.StorePath, true
	if opts.Snapshot {
		snapPath, cleanup, err := snapshot(storePath)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		// The copy is private, so SQLite may create its -shm file beside it.
		storePath, readOnly = snapPath, false
	}

	db, err := openStore(storePath, readOnly)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	r := &reader{db: db, includeTrashed: opts.IncludeTrashed}
	papers, err := r.readPapers(ctx, types)
	if err != nil {
		return nil, err
	}

	for i := range papers {
		if err := r.fillRelations(ctx, &papers[i]); err != nil {
			return nil, fmt.Errorf("failed to read item %s: %w", papers[i].Key, err)
		}
	}

	return &Result{Papers: papers, Warnings: r.warnings}, nil
}

func resolveItemTypes(requested []paper.ItemType) ([]paper.ItemType, error) {
	if len(requested) == 0 {
		return paper.AllItemTypes, nil
	}
	out := make([]paper.ItemType, 0, len(requested))
	for _, t := range requested {
		parsed, err := paper.ParseItemType(string(t))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownItemType, t)
		}
		out = append(out, parsed)
	}
	return out, nil
}

func openStore(path string, readOnly bool) (*sql.DB, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store path: %w", err)
	}
	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if readOnly {
		u.RawQuery = "mode=ro"
	}
	dsn := u.String()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	// One connection: extraction is sequential and the store is read once.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	return db, nil
}

type reader struct {
	db             *sql.DB
	includeTrashed bool
	warnings       []Warning
}

func (r *reader) notTrashed(column string) string {
	if r.includeTrashed {
		return ""
	}
	return " AND " + column + " NOT IN (SELECT itemID FROM deletedItems)"
}

// readPapers runs the item/field join and pivots the (item, field) rows into
// one record per item. The LEFT JOIN keeps items that have no field data.
func (r *reader) readPapers(ctx context.Context, types []paper.ItemType) ([]paper.Paper, error) {
	placeholders, args := sqlutil.InClauseArgs(types)
	query := `
		SELECT items.itemID, items.key, itemTypes.typeName, fields.fieldName, itemDataValues.value
		FROM items
		JOIN itemTypes ON items.itemTypeID = itemTypes.itemTypeID
		LEFT JOIN itemData ON itemData.itemID = items.itemID
		LEFT JOIN fields ON fields.fieldID = itemData.fieldID
		LEFT JOIN itemDataValues ON itemDataValues.valueID = itemData.valueID
		WHERE itemTypes.typeName IN (` + placeholders + `)
		AND items.itemID NOT IN (SELECT itemID FROM itemAttachments)` +
		r.notTrashed("items.itemID") + `
		ORDER BY items.itemID, fields.fieldName`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var papers []paper.Paper
	byID := make(map[int64]int)

	for rows.Next() {
		var (
			itemID   int64
			key      string
			typeName string
			field    sql.NullString
			value    sql.NullString
		)
		if err := rows.Scan(&itemID, &key, &typeName, &field, &value); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}

		idx, ok := byID[itemID]
		if !ok {
			idx = len(papers)
			byID[itemID] = idx
			papers = append(papers, paper.Paper{
				ID:      itemID,
				Key:     key,
				Type:    paper.ItemType(typeName),
				Authors: []string{},
				Tags:    []string{},
			})
		}

		if field.Valid && value.Valid {
			papers[idx].SetField(field.String, value.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	return papers, nil
}

func (r *reader) fillRelations(ctx context.Context, p *paper.Paper) error {
	tags, err := sqlutil.QueryStrings(ctx, r.db, `
		SELECT DISTINCT tags.name
		FROM itemTags
		JOIN tags ON itemTags.tagID = tags.tagID
		WHERE itemTags.itemID = ?
		ORDER BY tags.name`, p.ID)
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if tags != nil {
		p.Tags = tags
	}

	authors, err := r.authors(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("authors: %w", err)
	}
	p.Authors = authors

	pdfKeys, err := sqlutil.QueryStrings(ctx, r.db, `
		SELECT items.key
		FROM itemAttachments
		JOIN items ON items.itemID = itemAttachments.itemID
		WHERE itemAttachments.parentItemID = ?
		AND itemAttachments.contentType = ?`+
		r.notTrashed("itemAttachments.itemID")+`
		ORDER BY itemAttachments.itemID`, p.ID, pdfContentType)
	if err != nil {
		return fmt.Errorf("attachments: %w", err)
	}
	if len(pdfKeys) > 0 {
		p.Backlink = BacklinkPrefix + pdfKeys[0]
	}
	if len(pdfKeys) > 1 {
		r.warnings = append(r.warnings, Warning{
			Code:    WarnMultiplePDFs,
			Key:     p.Key,
			Message: fmt.Sprintf("%q has %d PDF attachments; linking the first (%s)", p.Title(), len(pdfKeys), pdfKeys[0]),
		})
	}

	return nil
}

func (r *reader) authors(ctx context.Context, itemID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT creators.firstName, creators.lastName
		FROM itemCreators
		JOIN creators ON itemCreators.creatorID = creators.creatorID
		WHERE itemCreators.itemID = ?
		ORDER BY itemCreators.orderIndex`, itemID)
	if err != nil {
		return nil, err
	}

	names, err := sqlutil.ScanRows(rows, func(rows *sql.Rows) (string, error) {
		var first, last sql.NullString
		if err := rows.Scan(&first, &last); err != nil {
			return "", err
		}
		return strings.TrimSpace(first.String + " " + last.String), nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		if name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}
