// Package note models a paper note on disk: a YAML header block between "---"
// lines followed by level-2 sections.
package note

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes the header block.
const Delimiter = "---"

// Canonical section headings, in render order.
const (
	SectionAbstract   = "Abstract"
	SectionNotes      = "Notes"
	SectionReferences = "References"
)

// CanonicalSections lists the generated sections in the order they are written.
var CanonicalSections = []string{SectionAbstract, SectionNotes, SectionReferences}

// IsCanonical reports whether heading names one of the generated sections.
func IsCanonical(heading string) bool {
	for _, s := range CanonicalSections {
		if s == heading {
			return true
		}
	}
	return false
}

// Section is a level-2 heading and the text under it.
type Section struct {
	Heading string
	Body    string
}

// Header is the metadata block. Field order here is the order on disk.
type Header struct {
	Title    string   `yaml:"title"`
	Type     string   `yaml:"type"`
	Year     any      `yaml:"year"`
	Key      string   `yaml:"zotero-key"`
	Accessed string   `yaml:"accessed,omitempty"`
	Tags     []string `yaml:"tags"`
	Creator  string   `yaml:"creator"`
	Authors  []string `yaml:"authors"`
	Venue    string   `yaml:"venue,omitempty"`
}

// Note is a fully resolved note ready to be written.
type Note struct {
	Header Header

	// Preamble is free text between the header and the first section.
	Preamble string

	Abstract   string
	Notes      string
	References string

	// Extras are user sections written after References, in order.
	Extras []Section
}

// Render produces the note text. The output depends only on the Note's
// contents, so rendering an unchanged note yields identical bytes.
func (n *Note) Render() ([]byte, error) {
	header, err := marshalHeader(n.Header)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(Delimiter + "\n")
	buf.Write(header)
	buf.WriteString(Delimiter + "\n\n")

	if n.Preamble != "" {
		buf.WriteString(n.Preamble)
		buf.WriteString("\n\n")
	}

	sections := []Section{
		{Heading: SectionAbstract, Body: n.Abstract},
		{Heading: SectionNotes, Body: n.Notes},
		{Heading: SectionReferences, Body: n.References},
	}
	sections = append(sections, n.Extras...)

	for i, s := range sections {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(renderSection(s))
	}

	return buf.Bytes(), nil
}

func renderSection(s Section) string {
	out := "## " + s.Heading + "\n"
	if s.Body != "" {
		out += s.Body + "\n"
	}
	return out
}

func marshalHeader(h Header) ([]byte, error) {
	if h.Tags == nil {
		h.Tags = []string{}
	}
	if h.Authors == nil {
		h.Authors = []string{}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(h); err != nil {
		return nil, fmt.Errorf("failed to encode header: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode header: %w", err)
	}
	return buf.Bytes(), nil
}

// ReferenceLines builds the References section body.
func ReferenceLines(key, doi, backlink string) string {
	lines := []string{"- Zotero Key: " + key}
	if doi != "" {
		lines = append(lines, "- DOI: "+doi)
	}
	if backlink != "" {
		lines = append(lines, "- PDF: [Open in Zotero]("+backlink+")")
	}
	return strings.Join(lines, "\n")
}
