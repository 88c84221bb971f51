package note

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// ErrUnclosedHeader is reported when the first line opens a header block that
// never closes.
var ErrUnclosedHeader = errors.New("header block is not closed")

// Document is what could be recovered from an existing note.
type Document struct {
	// HasHeader is true when a complete header block was found and decoded.
	HasHeader bool

	// HeaderErr explains why the header could not be used. Tags is empty then.
	HeaderErr error

	// Tags are the tags previously written to the header.
	Tags []string

	Preamble string
	Sections []Section
}

// Section returns the body of the first section with the given heading.
func (d *Document) Section(heading string) (string, bool) {
	for _, s := range d.Sections {
		if s.Heading == heading {
			return s.Body, true
		}
	}
	return "", false
}

// Extras returns every section that is not the first occurrence of a
// canonical heading, in document order.
func (d *Document) Extras() []Section {
	seen := make(map[string]bool)
	var out []Section
	for _, s := range d.Sections {
		if IsCanonical(s.Heading) && !seen[s.Heading] {
			seen[s.Heading] = true
			continue
		}
		out = append(out, s)
	}
	return out
}

// HeaderBounds returns the index of the closing delimiter line.
// It only detects a header when the first line is the delimiter.
// If a header is opened but never closed, end is -1.
func HeaderBounds(lines []string) (end int, ok bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Delimiter {
		return -1, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Delimiter {
			return i, true
		}
	}
	return -1, true
}

// Parse reads an existing note in two passes: the header block, then the
// body split on level-2 headings. It never fails outright; a header that
// cannot be decoded is reported in HeaderErr and the body is still split.
func Parse(content string) *Document {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	doc := &Document{}
	bodyLines := lines

	end, ok := HeaderBounds(lines)
	switch {
	case ok && end == -1:
		doc.HeaderErr = ErrUnclosedHeader
	case ok:
		bodyLines = lines[end+1:]
		tags, err := decodeTags(strings.Join(lines[1:end], "\n"))
		if err != nil {
			doc.HeaderErr = err
		} else {
			doc.HasHeader = true
			doc.Tags = tags
		}
	}

	doc.Preamble, doc.Sections = splitSections(bodyLines)
	return doc
}

func decodeTags(raw string) ([]string, error) {
	var fields map[string]interface{}
	if err := yaml.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse header as YAML: %w", err)
	}

	switch v := fields["tags"].(type) {
	case nil:
		return nil, nil
	case []interface{}:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			tag, ok := scalarString(item)
			if !ok {
				return nil, fmt.Errorf("tags: unsupported entry %v", item)
			}
			if tag != "" {
				tags = append(tags, tag)
			}
		}
		return tags, nil
	default:
		tag, ok := scalarString(v)
		if !ok {
			return nil, fmt.Errorf("tags: expected a list, got %T", v)
		}
		if tag == "" {
			return nil, nil
		}
		return []string{tag}, nil
	}
}

func scalarString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case int, int64, float64, bool:
		return fmt.Sprint(s), true
	default:
		return "", false
	}
}

// splitSections cuts the body at ATX level-2 headings. A "## " line inside a
// closed fenced code block stays in its section. Canonical headings always
// split, so a stray fence in user text can never swallow References.
func splitSections(lines []string) (string, []Section) {
	starts := headingLines(lines)
	if len(starts) == 0 {
		return trimBlankLines(lines), nil
	}

	preamble := trimBlankLines(lines[:starts[0]])
	sections := make([]Section, 0, len(starts))
	for i, start := range starts {
		stop := len(lines)
		if i+1 < len(starts) {
			stop = starts[i+1]
		}
		sections = append(sections, Section{
			Heading: atxHeadingText(lines[start]),
			Body:    trimBlankLines(lines[start+1 : stop]),
		})
	}
	return preamble, sections
}

// headingLines returns the 0-indexed lines holding ATX level-2 headings.
func headingLines(lines []string) []int {
	code := closedFenceLines(lines)

	var out []int
	for i, line := range lines {
		if !isATXLevel2(line) {
			continue
		}
		if code[i] && !IsCanonical(atxHeadingText(line)) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// closedFenceLines marks the content lines of fenced code blocks that have a
// closing fence. goldmark runs an unclosed fence to the end of its container;
// such a block hides nothing here.
func closedFenceLines(lines []string) map[int]bool {
	source := []byte(strings.Join(lines, "\n"))
	doc := goldmark.New().Parser().Parse(text.NewReader(source))
	lineStarts := computeLineStarts(source)

	code := make(map[int]bool)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.FencedCodeBlock)
		if !ok || block.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}
		segments := block.Lines()
		first := offsetToLine(lineStarts, segments.At(0).Start)
		last := offsetToLine(lineStarts, segments.At(segments.Len()-1).Start)
		if first == 0 || last+1 >= len(lines) {
			return ast.WalkSkipChildren, nil
		}
		if !closesFence(lines[first-1], lines[last+1]) {
			return ast.WalkSkipChildren, nil
		}
		for i := first; i <= last; i++ {
			code[i] = true
		}
		return ast.WalkSkipChildren, nil
	})
	return code
}

// fenceMarker returns the run of backticks or tildes opening a fence line.
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " >")
	if len(trimmed) < 3 || (trimmed[0] != '`' && trimmed[0] != '~') {
		return ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == trimmed[0] {
		n++
	}
	if n < 3 {
		return ""
	}
	return trimmed[:n]
}

// closesFence reports whether closing ends the fence opened by opening.
func closesFence(opening, closing string) bool {
	open := fenceMarker(opening)
	closeRun := fenceMarker(closing)
	if open == "" || closeRun == "" || closeRun[0] != open[0] || len(closeRun) < len(open) {
		return false
	}
	rest := strings.TrimLeft(closing, " >")
	return strings.TrimSpace(rest[len(closeRun):]) == ""
}

func isATXLevel2(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	return trimmed == "##" || strings.HasPrefix(trimmed, "## ") || strings.HasPrefix(trimmed, "##\t")
}

// atxHeadingText strips the opening marker and an optional closing run of '#'.
func atxHeadingText(line string) string {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimLeft(line, " "), "##"))
	if trimmed := strings.TrimRight(s, "#"); trimmed != s {
		if trimmed == "" {
			return ""
		}
		if strings.HasSuffix(trimmed, " ") || strings.HasSuffix(trimmed, "\t") {
			return strings.TrimSpace(trimmed)
		}
	}
	return s
}

// trimBlankLines drops whitespace-only lines at both ends and joins the rest.
func trimBlankLines(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// computeLineStarts computes the byte offset of each line start.
func computeLineStarts(content []byte) []int {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// offsetToLine converts a byte offset to a 0-indexed line number.
func offsetToLine(lineStarts []int, offset int) int {
	for i := len(lineStarts) - 1; i >= 0; i-- {
		if lineStarts[i] <= offset {
			return i
		}
	}
	return 0
}

// Literal escapes lines of generated text that Parse would otherwise read as
// structure: level-2 headings and fence markers get a backslash before the
// marker, which markdown renders as the literal character.
func Literal(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		var at int
		switch {
		case isATXLevel2(line):
			at = strings.Index(line, "#")
		case fenceMarker(line) != "":
			at = strings.IndexAny(line, "`~")
		default:
			continue
		}
		lines[i] = line[:at] + `\` + line[at:]
	}
	return strings.Join(lines, "\n")
}
