package filenames

import "testing"

func TestSafeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Plain Title", "Plain Title"},
		{`Deep Learning: A "Review"`, "Deep Learning- A -Review-"},
		{`a/b\c|d?e*f<g>h`, "a-b-c-d-e-f-g-h"},
		{"Ünïcode stays", "Ünïcode stays"},
	}

	for _, tt := range tests {
		if got := SafeTitle(tt.in); got != tt.want {
			t.Errorf("SafeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Attention Is All You Need", "attention-is-all-you-need"},
		{"Deep Learning: A Review", "deep-learning-a-review"},
	}

	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    Style
		wantErr bool
	}{
		{"", StyleTitle, false},
		{"title", StyleTitle, false},
		{" slug ", StyleSlug, false},
		{"kebab", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStyle(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStyle(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStyle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	title := "Why: Because"
	if got := StyleTitle.FileName(title); got != "Why- Because.md" {
		t.Errorf("title style = %q", got)
	}
	if got := StyleSlug.FileName(title); got != "why-because.md" {
		t.Errorf("slug style = %q", got)
	}
}
