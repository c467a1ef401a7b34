package textutil

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrEmptyName is returned when a Series display name is blank.
var ErrEmptyName = errors.New("series name is empty")

// seriesNameReplacer maps filesystem-illegal characters in Series names.
var seriesNameReplacer = strings.NewReplacer(
	"?", "!",
	"<", "",
	">", "",
	":", " -",
	"\"", "",
	"|", "",
	"*", "-",
	"/", "+",
	"\\", "+",
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

var leadingArticle = regexp.MustCompile(`(?i)^(a|an|the)\s`)

var upper = cases.Upper(language.Und)

// SeriesFolder is the on-disk identity of a Series.
type SeriesFolder struct {
	// Letter is the bucket folder, e.g. "W" for "The Wire (2002)".
	Letter string
	// Name is the path-safe Series folder name.
	Name string
}

// SeriesFolders returns the letter bucket and path-safe folder name for a
// Series display name. Illegal characters are substituted in Name; Letter is
// the upper-cased first character of Name once a single leading "a", "an" or
// "the" word has been dropped.
func SeriesFolders(displayName string) (SeriesFolder, error) {
	if strings.TrimSpace(displayName) == "" {
		return SeriesFolder{}, ErrEmptyName
	}
	clean := seriesNameReplacer.Replace(displayName)
	sortName := leadingArticle.ReplaceAllString(clean, "")
	if sortName == "" {
		sortName = clean
	}
	first, _ := utf8.DecodeRuneInString(sortName)
	return SeriesFolder{
		Letter: upper.String(string(first)),
		Name:   clean,
	}, nil
}

// SeriesDisplayName formats the canonical "Name (Year)" display name.
func SeriesDisplayName(name string, year int) string {
	return strings.TrimSpace(name) + " (" + strconv.Itoa(year) + ")"
}

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}
