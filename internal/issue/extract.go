package issue

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fields is the flat record extracted from one submission.
type Fields struct {
	SeriesName    string
	SeriesYear    int
	Creator       string
	Description   string
	BlueprintJSON string
	PreviewURL    string
	// FileURLs lists font files or archives to copy next to the Blueprint.
	FileURLs []string
}

// SeriesFullName returns the "Name (Year)" display name.
func (f Fields) SeriesFullName() string {
	return strings.TrimSpace(f.SeriesName) + " (" + strconv.Itoa(f.SeriesYear) + ")"
}

var markdown = goldmark.New()

// Extract parses an issue form body. fallbackCreator is used when the creator
// field was left as _No response_.
func Extract(body, fallbackCreator string) (Fields, error) {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	captured, serr := templateGrammar.match(body)
	if serr != nil {
		return Fields{}, serr
	}

	fields := Fields{
		SeriesName:    strings.TrimSpace(captured["series_name"]),
		Creator:       strings.TrimSpace(captured["creator"]),
		Description:   captured["description"],
		BlueprintJSON: strings.TrimSpace(captured["blueprint"]),
	}

	year, err := parseYear(captured["series_year"])
	if err != nil {
		return Fields{}, err
	}
	fields.SeriesYear = year

	if fields.Creator == "" || strings.Contains(fields.Creator, NoResponse) {
		fields.Creator = strings.TrimSpace(fallbackCreator)
	}

	preview, ok := linkDestination(captured["preview_url"])
	if !ok {
		return Fields{}, &SectionError{Section: "Preview Title Card", Reason: PolicyLink.describe()}
	}
	fields.PreviewURL = preview

	if raw := strings.TrimSpace(captured["font_zip"]); raw != "" && raw != NoResponse {
		fontZip, ok := linkDestination(raw)
		if !ok {
			return Fields{}, &SectionError{Section: "Zip of Font Files", Reason: PolicyOptionalLink.describe()}
		}
		fields.FileURLs = []string{fontZip}
	}

	return fields, nil
}

func parseYear(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 4 {
		return 0, &SectionError{Section: "Series Year", Reason: "expected a four digit year"}
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &SectionError{Section: "Series Year", Reason: PolicyYear.describe()}
	}
	return year, nil
}

// linkDestination returns the destination of the first markdown link or
// image in src.
func linkDestination(src string) (string, bool) {
	source := []byte(strings.TrimSpace(src))
	if len(source) == 0 {
		return "", false
	}
	doc := markdown.Parser().Parse(text.NewReader(source))

	var dest []byte
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Image:
			dest = node.Destination
		case *ast.Link:
			dest = node.Destination
		case *ast.AutoLink:
			dest = node.URL(source)
		default:
			return ast.WalkContinue, nil
		}
		return ast.WalkStop, nil
	})

	dest = bytes.TrimSpace(dest)
	if len(dest) == 0 {
		return "", false
	}
	return string(dest), true
}
