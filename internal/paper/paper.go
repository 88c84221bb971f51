// Package paper defines the normalized bibliographic record handed from the
// extractor to the sync engine.
package paper

import (
	"fmt"
	"strings"
)

// ItemType is the reference kind of a record as named in the source store.
type ItemType string

const (
	JournalArticle  ItemType = "journalArticle"
	ConferencePaper ItemType = "conferencePaper"
	Preprint        ItemType = "preprint"
	Report          ItemType = "report"
	Thesis          ItemType = "thesis"
	Book            ItemType = "book"
	BookSection     ItemType = "bookSection"
)

// AllItemTypes lists every supported reference kind in a stable order.
var AllItemTypes = []ItemType{
	JournalArticle,
	ConferencePaper,
	Preprint,
	Report,
	Thesis,
	Book,
	BookSection,
}

// ParseItemType validates a type name against the closed set.
func ParseItemType(s string) (ItemType, error) {
	s = strings.TrimSpace(s)
	for _, t := range AllItemTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown item type %q", s)
}

// Field names as stored in the source store's field table.
const (
	FieldTitle            = "title"
	FieldDate             = "date"
	FieldAccessDate       = "accessDate"
	FieldDOI              = "DOI"
	FieldAbstract         = "abstractNote"
	FieldSeries           = "series"
	FieldConferenceName   = "conferenceName"
	FieldPublicationTitle = "publicationTitle"
)

// UntitledTitle is used when a record has no title field.
const UntitledTitle = "Untitled Paper"

// Paper is one reference record.
//
// Fields holds only the values the store actually has for the record; a
// missing key means the field is absent, never that it is empty.
type Paper struct {
	// ID is the source store's row id. Records are ordered by it.
	ID int64 `json:"id"`

	// Key is the stable opaque identifier from the source store.
	Key string `json:"key"`

	Type ItemType `json:"type"`

	// Authors are display names in the store's creator order.
	Authors []string `json:"authors"`

	// Tags are deduplicated labels attached in the store.
	Tags []string `json:"tags"`

	Fields map[string]string `json:"fields,omitempty"`

	// Backlink is a URI to the record's PDF attachment; empty when there is none.
	Backlink string `json:"backlink,omitempty"`
}

// Field returns a scalar field and whether the store had a value for it.
func (p *Paper) Field(name string) (string, bool) {
	if p.Fields == nil {
		return "", false
	}
	v, ok := p.Fields[name]
	return v, ok
}

// SetField records a field value. Empty values are treated as absent.
func (p *Paper) SetField(name, value string) {
	if value == "" {
		return
	}
	if p.Fields == nil {
		p.Fields = make(map[string]string)
	}
	p.Fields[name] = value
}

// Title returns the display title, or UntitledTitle when absent.
func (p *Paper) Title() string {
	if t, ok := p.Field(FieldTitle); ok {
		return t
	}
	return UntitledTitle
}

// HasBacklink reports whether a PDF attachment was resolved.
func (p *Paper) HasBacklink() bool {
	return p.Backlink != ""
}
