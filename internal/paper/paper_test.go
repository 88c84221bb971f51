package paper

import "testing"

func TestParseItemType(t *testing.T) {
	for _, want := range AllItemTypes {
		got, err := ParseItemType(" " + string(want) + " ")
		if err != nil {
			t.Fatalf("ParseItemType(%q) unexpected error: %v", want, err)
		}
		if got != want {
			t.Errorf("ParseItemType(%q) = %q", want, got)
		}
	}

	if _, err := ParseItemType("attachment"); err == nil {
		t.Error("expected error for attachment type")
	}
}

func TestSetFieldSkipsEmpty(t *testing.T) {
	var p Paper
	p.SetField(FieldDOI, "")
	if _, ok := p.Field(FieldDOI); ok {
		t.Error("empty value should be absent")
	}

	p.SetField(FieldDOI, "10.1/x")
	if v, ok := p.Field(FieldDOI); !ok || v != "10.1/x" {
		t.Errorf("Field(DOI) = %q, %v", v, ok)
	}
}

func TestTitle(t *testing.T) {
	var p Paper
	if p.Title() != UntitledTitle {
		t.Errorf("expected %q, got %q", UntitledTitle, p.Title())
	}
	p.SetField(FieldTitle, "On Computable Numbers")
	if p.Title() != "On Computable Numbers" {
		t.Errorf("got %q", p.Title())
	}
}

func TestYear(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{"iso date", "2021-03-15", "2021"},
		{"store dual form", "2019-00-00 2019", "2019"},
		{"range", "2018/2019", "2018"},
		{"localized", "15. März 2020", "2020"},
		{"season", "Spring 1999", "1999"},
		{"no digits", "forthcoming", UnknownYear},
		{"short digits", "99", UnknownYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Paper
			p.SetField(FieldDate, tt.date)
			if got := p.YearString(); got != tt.want {
				t.Errorf("YearString() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("absent", func(t *testing.T) {
		var p Paper
		if _, ok := p.Year(); ok {
			t.Error("expected no year")
		}
		if p.YearString() != UnknownYear {
			t.Errorf("got %q", p.YearString())
		}
	})
}

func TestVenue(t *testing.T) {
	tests := []struct {
		name   string
		typ    ItemType
		fields map[string]string
		want   string
		wantOK bool
	}{
		{
			name:   "conference prefers series",
			typ:    ConferencePaper,
			fields: map[string]string{FieldSeries: "LNCS", FieldConferenceName: "ICML: Machine Learning"},
			want:   "LNCS",
			wantOK: true,
		},
		{
			name:   "conference name before colon",
			typ:    ConferencePaper,
			fields: map[string]string{FieldConferenceName: "NeurIPS 2020: Thirty-fourth Conference"},
			want:   "NeurIPS 2020",
			wantOK: true,
		},
		{
			name:   "conference without venue fields",
			typ:    ConferencePaper,
			fields: map[string]string{FieldPublicationTitle: "Proceedings"},
		},
		{
			name:   "journal",
			typ:    JournalArticle,
			fields: map[string]string{FieldPublicationTitle: "Annals of Computing"},
			want:   "Annals of Computing",
			wantOK: true,
		},
		{
			name:   "book has no venue",
			typ:    Book,
			fields: map[string]string{FieldPublicationTitle: "Ignored", FieldSeries: "Ignored"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paper{Type: tt.typ, Fields: tt.fields}
			got, ok := p.Venue()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Venue() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCreator(t *testing.T) {
	tests := []struct {
		authors []string
		want    string
	}{
		{nil, UnknownAuthor},
		{[]string{"Grace Brewster Murray Hopper"}, "Hopper"},
		{[]string{"Ada Lovelace", "Charles Babbage"}, "Lovelace et al."},
		{[]string{"Aristotle"}, "Aristotle"},
	}

	for _, tt := range tests {
		p := Paper{Authors: tt.authors}
		if got := p.Creator(); got != tt.want {
			t.Errorf("Creator(%v) = %q, want %q", tt.authors, got, tt.want)
		}
	}
}
