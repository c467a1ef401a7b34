package integrity

import (
	"fmt"
	"sort"

	"blueprints/internal/services"
)

// Check names.
const (
	CheckLetterCase       = "letter-case"
	CheckLetterPlacement  = "letter-placement"
	CheckSeriesName       = "series-name"
	CheckBlueprintFolder  = "blueprint-folder"
	CheckSeriesFiles      = "series-files"
	CheckIndexJSON        = "index-json"
	CheckBlueprintJSON    = "blueprint-json"
	CheckRequiredFields   = "required-fields"
	CheckBlueprintPresent = "blueprint-present"
	CheckMissingAsset     = "missing-asset"
	CheckOrphanAsset      = "orphan-asset"
	CheckIndexConsistency = "index-consistency"
)

// Violation is one failed assertion.
type Violation struct {
	Check   string
	Path    string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Check, v.Path, v.Message)
}

// Report is the outcome of a full run.
type Report struct {
	Violations []Violation
	Series     int
	Blueprints int
}

func (r *Report) add(check, path, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{Check: check, Path: path, Message: fmt.Sprintf(format, args...)})
}

// OK reports whether no violations were found.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Err returns an error wrapping services.ErrIntegrity when violations exist.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %d violation(s)", services.ErrIntegrity, len(r.Violations))
}

// ByCheck counts violations per check name.
func (r *Report) ByCheck() map[string]int {
	counts := make(map[string]int)
	for _, v := range r.Violations {
		counts[v.Check]++
	}
	return counts
}

func (r *Report) sort() {
	sort.SliceStable(r.Violations, func(i, j int) bool {
		if r.Violations[i].Path != r.Violations[j].Path {
			return r.Violations[i].Path < r.Violations[j].Path
		}
		return r.Violations[i].Check < r.Violations[j].Check
	})
}
