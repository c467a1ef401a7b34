package issue

import (
	"fmt"

	"blueprints/internal/services"
)

// SectionError names the issue form section that failed to match.
type SectionError struct {
	Section string
	Reason  string
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("issue section %q: %s", e.Section, e.Reason)
}

// Unwrap classifies every extraction failure as malformed input.
func (e *SectionError) Unwrap() error {
	return services.ErrMalformedInput
}
