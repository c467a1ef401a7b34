package issue

import (
	"regexp"
	"strings"
)

// Policy describes how the body of a section is captured.
type Policy int

const (
	// PolicyLine captures a single non-empty line.
	PolicyLine Policy = iota
	// PolicyYear captures a run of digits.
	PolicyYear
	// PolicyText captures free multi-line text.
	PolicyText
	// PolicyJSONFence captures the contents of a ```json fenced block.
	PolicyJSONFence
	// PolicyLink captures a markdown link or image on one line.
	PolicyLink
	// PolicyOptionalLink captures a markdown link or the _No response_ sentinel.
	PolicyOptionalLink
)

// NoResponse is the sentinel the issue form writes for an empty optional field.
const NoResponse = "_No response_"

// Section is one "### Heading" block of the issue form.
type Section struct {
	Key     string
	Heading string
	Policy  Policy
}

// Template is the issue form grammar, in the order the form renders it.
var Template = []Section{
	{Key: "series_name", Heading: "Series Name", Policy: PolicyLine},
	{Key: "series_year", Heading: "Series Year", Policy: PolicyYear},
	{Key: "creator", Heading: "Creator Username", Policy: PolicyLine},
	{Key: "description", Heading: "Blueprint Description", Policy: PolicyText},
	{Key: "blueprint", Heading: "Blueprint", Policy: PolicyJSONFence},
	{Key: "preview_url", Heading: "Preview Title Card", Policy: PolicyLink},
	{Key: "font_zip", Heading: "Zip of Font Files", Policy: PolicyOptionalLink},
}

func (p Policy) pattern(key string) string {
	group := func(body string) string { return "(?P<" + key + ">" + body + ")" }
	switch p {
	case PolicyLine:
		return group(`.+`)
	case PolicyYear:
		return group(`\d+`)
	case PolicyText:
		return group(`[\s\S]*`)
	case PolicyJSONFence:
		return "```json\\s+" + group(`[\s\S]*?`) + "```"
	case PolicyLink:
		return group(`.*?\[.*\]\(.+\)`)
	case PolicyOptionalLink:
		return group(regexp.QuoteMeta(NoResponse) + `|\[.+?\]\(http[^\s\)]+\)`)
	default:
		return group(`.*`)
	}
}

// grammar is a compiled Template.
type grammar struct {
	sections []Section
	full     *regexp.Regexp
	prefixes []*regexp.Regexp
}

func compile(sections []Section) *grammar {
	g := &grammar{sections: sections, prefixes: make([]*regexp.Regexp, len(sections))}
	var b strings.Builder
	b.WriteString("^")
	for i, section := range sections {
		if i > 0 {
			b.WriteString(`\s+`)
		}
		b.WriteString("### ")
		b.WriteString(regexp.QuoteMeta(section.Heading))
		b.WriteString(`\s+`)
		b.WriteString(section.Policy.pattern(section.Key))
		// A prefix must end on a section boundary to count as matched.
		g.prefixes[i] = regexp.MustCompile(b.String() + `(\s+### |\s*$)`)
	}
	b.WriteString(`\s*$`)
	g.full = regexp.MustCompile(b.String())
	return g
}

// match returns the captured section bodies keyed by Section.Key, or the
// section that failed to match.
func (g *grammar) match(body string) (map[string]string, *SectionError) {
	m := g.full.FindStringSubmatch(body)
	if m == nil {
		return nil, g.diagnose(body)
	}
	out := make(map[string]string, len(g.sections))
	for i, name := range g.full.SubexpNames() {
		if name != "" {
			out[name] = m[i]
		}
	}
	return out, nil
}

func (g *grammar) diagnose(body string) *SectionError {
	for i, prefix := range g.prefixes {
		if !prefix.MatchString(body) {
			section := g.sections[i]
			reason := "section missing or out of order"
			if strings.Contains(body, "### "+section.Heading) {
				reason = section.Policy.describe()
			}
			return &SectionError{Section: section.Heading, Reason: reason}
		}
	}
	return &SectionError{Section: g.sections[len(g.sections)-1].Heading, Reason: "unexpected trailing content"}
}

func (p Policy) describe() string {
	switch p {
	case PolicyLine:
		return "expected a single line of text"
	case PolicyYear:
		return "expected a numeric year"
	case PolicyText:
		return "expected text"
	case PolicyJSONFence:
		return "expected a ```json fenced block"
	case PolicyLink:
		return "expected a markdown link or image"
	case PolicyOptionalLink:
		return "expected a markdown link or " + NoResponse
	default:
		return "unexpected content"
	}
}

var templateGrammar = compile(Template)
