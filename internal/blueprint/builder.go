package blueprint

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"blueprints/internal/issue"
	"blueprints/internal/services"
)

// CreatedLayout is the timestamp format of the created field.
const CreatedLayout = "2006-01-02T15:04:05"

// ErrMalformedBlueprintJSON reports submitted Blueprint text that is not a
// JSON object.
var ErrMalformedBlueprintJSON = errors.New("malformed blueprint json")

// ErrEmptyDescription reports a description with no non-blank lines.
var ErrEmptyDescription = errors.New("blueprint description is empty")

// Builder turns extracted submission fields into a Blueprint record.
type Builder struct {
	// Now returns the creation time. Defaults to time.Now.
	Now func() time.Time
}

// NewBuilder returns a Builder using the wall clock.
func NewBuilder() *Builder {
	return &Builder{Now: time.Now}
}

// Build parses the submitted JSON and merges in creator, description, created
// and preview. Keys the submitter supplied that are not touched here are kept.
func (b *Builder) Build(fields issue.Fields) (*Blueprint, error) {
	var record Blueprint
	if err := json.Unmarshal([]byte(fields.BlueprintJSON), &record); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", services.ErrMalformedInput, ErrMalformedBlueprintJSON, err)
	}

	description := SplitDescription(fields.Description)
	if len(description) == 0 {
		return nil, fmt.Errorf("%w: %w", services.ErrMalformedInput, ErrEmptyDescription)
	}

	now := time.Now
	if b != nil && b.Now != nil {
		now = b.Now
	}

	record.Creator = strings.TrimSpace(fields.Creator)
	record.Description = description
	record.Created = now().Format(CreatedLayout)
	record.Preview = PreviewFileName

	violations, err := Validate(&record)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, services.Wrap(services.ErrMalformedInput, "build", "validate blueprint", violations[0].String(), nil)
	}
	return &record, nil
}

// SplitDescription splits text on line boundaries, trims each line and drops
// the blank ones.
func SplitDescription(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := make([]string, 0, 4)
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
