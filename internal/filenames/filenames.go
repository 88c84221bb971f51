// Package filenames maps paper titles to note file names.
//
// Two styles exist:
//   - title: the title with characters that are invalid in file names on common
//     platforms replaced by "-". This is the default and keeps notes readable
//     in the vault's file list.
//   - slug: a lowercase ASCII slug built on gosimple/slug.
//
// Either way the name depends on the title alone, so two records whose titles
// map to the same name share one note.
package filenames

import (
	"fmt"
	"strings"

	goslug "github.com/gosimple/slug"
)

// Ext is the note file extension.
const Ext = ".md"

// Style selects how titles become file names.
type Style string

const (
	StyleTitle Style = "title"
	StyleSlug  Style = "slug"
)

// ParseStyle validates a style name. Empty selects StyleTitle.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.TrimSpace(s)) {
	case "", StyleTitle:
		return StyleTitle, nil
	case StyleSlug:
		return StyleSlug, nil
	default:
		return "", fmt.Errorf("unknown filename style %q (expected %q or %q)", s, StyleTitle, StyleSlug)
	}
}

var unsafeReplacer = strings.NewReplacer(
	"<", "-",
	">", "-",
	":", "-",
	`"`, "-",
	"/", "-",
	`\`, "-",
	"|", "-",
	"?", "-",
	"*", "-",
)

// SafeTitle replaces each of < > : " / \ | ? * with "-".
func SafeTitle(title string) string {
	return unsafeReplacer.Replace(title)
}

// Slug converts a title to a lowercase, dash-separated slug.
func Slug(title string) string {
	slugged := goslug.Make(title)
	if slugged == "" {
		slugged = strings.ToLower(strings.ReplaceAll(SafeTitle(title), " ", "-"))
	}
	return slugged
}

// Base returns the file name without extension for a title.
func (s Style) Base(title string) string {
	if s == StyleSlug {
		return Slug(title)
	}
	return SafeTitle(title)
}

// FileName returns the note file name for a title.
func (s Style) FileName(title string) string {
	return s.Base(title) + Ext
}
