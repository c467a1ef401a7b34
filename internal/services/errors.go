package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInput marks submissions whose issue body or JSON payload does
	// not match the expected structure.
	ErrMalformedInput = errors.New("malformed input")
	// ErrFetch marks asset retrieval failures.
	ErrFetch = errors.New("fetch failed")
	// ErrUnpack marks archive expansion failures.
	ErrUnpack = errors.New("unpack failed")
	// ErrCorruptEntry marks an on-disk Blueprint that cannot be parsed.
	ErrCorruptEntry = errors.New("corrupt entry")
	// ErrIntegrity marks a failed integrity check run.
	ErrIntegrity = errors.New("integrity violation")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrDuplicateSubmission marks a submission the ledger has already ingested.
	ErrDuplicateSubmission = errors.New("duplicate submission")
	// ErrWrite marks repository materialization failures.
	ErrWrite = errors.New("write failed")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrWrite
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err aborts a submission. Corrupt entries are
// recoverable by omission and never fatal on their own.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrCorruptEntry)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
