package services

import "context"

type contextKey string

const (
	submissionIDKey contextKey = "submission_id"
	stageKey        contextKey = "stage"
	seriesKey       contextKey = "series"
)

// WithSubmissionID annotates context with the submission correlation identifier.
func WithSubmissionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, submissionIDKey, id)
}

// SubmissionIDFromContext returns the submission identifier if present.
func SubmissionIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(submissionIDKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithSeries annotates context with the Series full name being processed.
func WithSeries(ctx context.Context, series string) context.Context {
	if series == "" {
		return ctx
	}
	return context.WithValue(ctx, seriesKey, series)
}

// SeriesFromContext returns the Series full name if present.
func SeriesFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(seriesKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
