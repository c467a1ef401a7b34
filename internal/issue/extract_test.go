package issue

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"blueprints/internal/services"
)

const fence = "```"

func sampleBody(mutate func(map[string]string)) string {
	sections := map[string]string{
		"Series Name":           "Breaking Bad",
		"Series Year":           "2008",
		"Creator Username":      "heisenberg",
		"Blueprint Description": "Styled after the opening titles.\n\n  Uses the official font.  ",
		"Blueprint":             fence + "json\n{\n  \"templates\": [],\n  \"fonts\": [{\"file\": \"BreakingBad.ttf\"}]\n}\n" + fence,
		"Preview Title Card":    "![preview](https://user-images.githubusercontent.com/1/preview.jpg)",
		"Zip of Font Files":     "[fonts.zip](https://github.com/user-attachments/files/1/fonts.zip)",
	}
	if mutate != nil {
		mutate(sections)
	}
	var b strings.Builder
	for _, section := range Template {
		value, ok := sections[section.Heading]
		if !ok {
			continue
		}
		b.WriteString("### " + section.Heading + "\n\n" + value + "\n\n")
	}
	return b.String()
}

func TestExtractWellFormedBody(t *testing.T) {
	fields, err := Extract(sampleBody(nil), "fallback")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if fields.SeriesName != "Breaking Bad" || fields.SeriesYear != 2008 {
		t.Fatalf("unexpected series: %q %d", fields.SeriesName, fields.SeriesYear)
	}
	if fields.SeriesFullName() != "Breaking Bad (2008)" {
		t.Fatalf("unexpected full name %q", fields.SeriesFullName())
	}
	if fields.Creator != "heisenberg" {
		t.Fatalf("unexpected creator %q", fields.Creator)
	}
	if !strings.Contains(fields.Description, "Uses the official font.") {
		t.Fatalf("unexpected description %q", fields.Description)
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(fields.BlueprintJSON), &parsed); err != nil {
		t.Fatalf("captured blueprint is not JSON: %v (%q)", err, fields.BlueprintJSON)
	}
	if fields.PreviewURL != "https://user-images.githubusercontent.com/1/preview.jpg" {
		t.Fatalf("unexpected preview url %q", fields.PreviewURL)
	}
	if len(fields.FileURLs) != 1 || fields.FileURLs[0] != "https://github.com/user-attachments/files/1/fonts.zip" {
		t.Fatalf("unexpected file urls %v", fields.FileURLs)
	}
}

func TestExtractNoResponseSentinels(t *testing.T) {
	body := sampleBody(func(s map[string]string) {
		s["Creator Username"] = NoResponse
		s["Zip of Font Files"] = NoResponse
		s["Preview Title Card"] = "[card.jpg](https://example.com/card.jpg)"
	})
	fields, err := Extract(body, "octocat")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if fields.Creator != "octocat" {
		t.Fatalf("expected fallback creator, got %q", fields.Creator)
	}
	if len(fields.FileURLs) != 0 {
		t.Fatalf("expected no file urls, got %v", fields.FileURLs)
	}
	if fields.PreviewURL != "https://example.com/card.jpg" {
		t.Fatalf("unexpected preview url %q", fields.PreviewURL)
	}
}

func TestExtractHandlesCRLF(t *testing.T) {
	body := strings.ReplaceAll(sampleBody(nil), "\n", "\r\n")
	if _, err := Extract(body, ""); err != nil {
		t.Fatalf("Extract returned error for CRLF body: %v", err)
	}
}

func TestExtractReportsFailingSection(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		section string
	}{
		{"missing year", func(s map[string]string) { delete(s, "Series Year") }, "Series Year"},
		{"non numeric year", func(s map[string]string) { s["Series Year"] = "two thousand" }, "Series Year"},
		{"three digit year", func(s map[string]string) { s["Series Year"] = "999" }, "Series Year"},
		{"unfenced blueprint", func(s map[string]string) { s["Blueprint"] = "{\"templates\": []}" }, "Blueprint"},
		{"preview without link", func(s map[string]string) { s["Preview Title Card"] = "see attachment" }, "Preview Title Card"},
		{"font zip not a link", func(s map[string]string) { s["Zip of Font Files"] = "fonts.zip" }, "Zip of Font Files"},
		{"missing series name", func(s map[string]string) { delete(s, "Series Name") }, "Series Name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(sampleBody(tt.mutate), "")
			if err == nil {
				t.Fatal("expected extraction error")
			}
			if !errors.Is(err, services.ErrMalformedInput) {
				t.Fatalf("expected ErrMalformedInput, got %v", err)
			}
			var serr *SectionError
			if !errors.As(err, &serr) {
				t.Fatalf("expected *SectionError, got %T", err)
			}
			if serr.Section != tt.section {
				t.Fatalf("failing section = %q, want %q (%v)", serr.Section, tt.section, serr)
			}
		})
	}
}

func TestExtractTrailingContent(t *testing.T) {
	body := sampleBody(nil) + "### Extra\n\nsomething\n"
	_, err := Extract(body, "")
	var serr *SectionError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *SectionError, got %v", err)
	}
}

func TestTemplateOrderIsStable(t *testing.T) {
	want := []string{"Series Name", "Series Year", "Creator Username", "Blueprint Description", "Blueprint", "Preview Title Card", "Zip of Font Files"}
	if len(Template) != len(want) {
		t.Fatalf("unexpected template length %d", len(Template))
	}
	for i, heading := range want {
		if Template[i].Heading != heading {
			t.Fatalf("Template[%d] = %q, want %q", i, Template[i].Heading, heading)
		}
	}
}
