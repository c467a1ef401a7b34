package textutil

import (
	"errors"
	"strings"
	"testing"
)

func TestSeriesFolders(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantLetter string
		wantName   string
	}{
		{"article stripped for letter only", "The Wire (2002)", "W", "The Wire (2002)"},
		{"a article", "A Team (1983)", "T", "A Team (1983)"},
		{"an article lower case", "an Example (2010)", "E", "an Example (2010)"},
		{"article needs whitespace", "Theory (2019)", "T", "Theory (2019)"},
		{"question mark", "Who?! (2020)", "W", "Who!! (2020)"},
		{"colon becomes dash", "Star Wars: Andor (2022)", "S", "Star Wars - Andor (2022)"},
		{"slashes", "Face/Off\\Series (1997)", "F", "Face+Off+Series (1997)"},
		{"removed characters", `"Quoted" <Show> | Pipe (2001)`, "Q", "Quoted Show  Pipe (2001)"},
		{"asterisk", "M*A*S*H (1972)", "M", "M-A-S-H (1972)"},
		{"lower case first letter", "black mirror (2011)", "B", "black mirror (2011)"},
		{"unicode first letter", "élite (2018)", "É", "élite (2018)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SeriesFolders(tt.input)
			if err != nil {
				t.Fatalf("SeriesFolders(%q) error: %v", tt.input, err)
			}
			if got.Letter != tt.wantLetter {
				t.Errorf("letter = %q, want %q", got.Letter, tt.wantLetter)
			}
			if got.Name != tt.wantName {
				t.Errorf("name = %q, want %q", got.Name, tt.wantName)
			}
		})
	}
}

func TestSeriesFoldersNeverEmitsIllegalCharacters(t *testing.T) {
	inputs := []string{
		`?<>"|*/\ (2020)`,
		"What? Why: How* (1999)",
		`a/b\c|d (2000)`,
	}
	for _, input := range inputs {
		got, err := SeriesFolders(input)
		if err != nil {
			t.Fatalf("SeriesFolders(%q) error: %v", input, err)
		}
		if strings.ContainsAny(got.Name, `?<>"|*/\`) {
			t.Errorf("SeriesFolders(%q) = %q contains illegal characters", input, got.Name)
		}
	}
}

func TestSeriesFoldersLetterMatchesSortForm(t *testing.T) {
	for _, input := range []string{"The Office (2005)", "An Idiot Abroad (2010)", "Arcane (2021)", "the boys (2019)"} {
		got, err := SeriesFolders(input)
		if err != nil {
			t.Fatalf("SeriesFolders(%q) error: %v", input, err)
		}
		sortForm := leadingArticle.ReplaceAllString(got.Name, "")
		if want := strings.ToUpper(sortForm[:1]); got.Letter != want {
			t.Errorf("SeriesFolders(%q).Letter = %q, want %q", input, got.Letter, want)
		}
	}
}

func TestSeriesFoldersEmpty(t *testing.T) {
	if _, err := SeriesFolders("   "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestSeriesDisplayName(t *testing.T) {
	if got := SeriesDisplayName("  Breaking Bad ", 2008); got != "Breaking Bad (2008)" {
		t.Fatalf("unexpected display name %q", got)
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(" Font: Bold?.ttf "); got != "Font- Bold.ttf" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
	if got := SanitizeFileName("   "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}
