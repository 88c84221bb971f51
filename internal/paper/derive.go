package paper

import (
	"regexp"
	"strconv"
	"strings"
)

// UnknownYear and UnknownAuthor are the display defaults for missing data.
const (
	UnknownYear   = "Unknown"
	UnknownAuthor = "Unknown Author"
)

var yearRegex = regexp.MustCompile(`\d{4}`)

// Year returns the first run of four digits in the date field.
// Dates are free-form in the store ("2021-03-15 March 15, 2021", "2019/2020",
// "Spring 2018"), so no strict parsing is attempted.
func (p *Paper) Year() (int, bool) {
	date, ok := p.Field(FieldDate)
	if !ok {
		return 0, false
	}
	m := yearRegex.FindString(date)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return y, true
}

// YearString returns the derived year or UnknownYear.
func (p *Paper) YearString() string {
	if y, ok := p.Year(); ok {
		return strconv.Itoa(y)
	}
	return UnknownYear
}

// Venue derives where the paper appeared.
//
// Conference papers prefer the proceedings series, then the conference name up
// to the first colon. Journal articles use the publication title. Other kinds
// have no venue.
func (p *Paper) Venue() (string, bool) {
	switch p.Type {
	case ConferencePaper:
		if s, ok := p.Field(FieldSeries); ok {
			return s, true
		}
		if name, ok := p.Field(FieldConferenceName); ok {
			name, _, _ = strings.Cut(name, ":")
			name = strings.TrimSpace(name)
			if name != "" {
				return name, true
			}
		}
	case JournalArticle:
		if s, ok := p.Field(FieldPublicationTitle); ok {
			return s, true
		}
	}
	return "", false
}

// Creator is a short author credit: the first author's surname, with
// " et al." appended when there is more than one author.
func (p *Paper) Creator() string {
	switch len(p.Authors) {
	case 0:
		return UnknownAuthor
	case 1:
		return Surname(p.Authors[0])
	default:
		return Surname(p.Authors[0]) + " et al."
	}
}

// Surname returns the last whitespace-delimited token of a display name.
func Surname(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return UnknownAuthor
	}
	return parts[len(parts)-1]
}
