package notesync

import (
	"sort"
	"strings"

	"github.com/aidanlsb/zinc/internal/note"
	"github.com/aidanlsb/zinc/internal/paper"
)

// Merge combines a paper with what survives from its existing note.
//
// The header comes from the paper except tags, which are the sorted union of
// the paper's tags and the tags already in the note. Abstract keeps the note's
// text when non-empty, unless the note's header could not be read: the note is
// then treated as new apart from its body sections, and the store's abstract
// wins whenever the store has one. Notes, the preamble and any extra sections
// are carried over verbatim. References is always rebuilt. existing may be nil.
func Merge(p *paper.Paper, existing *note.Document) *note.Note {
	var priorTags []string
	if existing != nil {
		priorTags = existing.Tags
	}

	n := &note.Note{
		Header:     buildHeader(p, mergeTags(p.Tags, priorTags)),
		Abstract:   storeAbstract(p),
		References: note.ReferenceLines(p.Key, fieldOrEmpty(p, paper.FieldDOI), p.Backlink),
	}

	if existing == nil {
		return n
	}

	if body, ok := existing.Section(note.SectionAbstract); ok && body != "" {
		if existing.HeaderErr == nil || n.Abstract == "" {
			n.Abstract = body
		}
	}
	if body, ok := existing.Section(note.SectionNotes); ok {
		n.Notes = body
	}
	n.Preamble = existing.Preamble
	n.Extras = existing.Extras()

	return n
}

func buildHeader(p *paper.Paper, tags []string) note.Header {
	h := note.Header{
		Title:   p.Title(),
		Type:    string(p.Type),
		Year:    paper.UnknownYear,
		Key:     p.Key,
		Tags:    tags,
		Creator: p.Creator(),
		Authors: append([]string{}, p.Authors...),
	}
	if y, ok := p.Year(); ok {
		h.Year = y
	}
	if accessed, ok := p.Field(paper.FieldAccessDate); ok {
		h.Accessed = accessed
	}
	if venue, ok := p.Venue(); ok {
		h.Venue = venue
	}
	return h
}

// mergeTags returns the deduplicated, lexically sorted union of both sets.
func mergeTags(sets ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, set := range sets {
		for _, tag := range set {
			tag = strings.TrimSpace(tag)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// storeAbstract is the store's abstract with any heading or fence lines
// escaped, so the text reads back as one Abstract section.
func storeAbstract(p *paper.Paper) string {
	abstract, ok := p.Field(paper.FieldAbstract)
	if !ok {
		return ""
	}
	return note.Literal(strings.TrimSpace(strings.ReplaceAll(abstract, "\r\n", "\n")))
}

func fieldOrEmpty(p *paper.Paper, name string) string {
	v, _ := p.Field(name)
	return v
}
