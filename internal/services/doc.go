// Package services holds the cross-cutting error taxonomy and context keys
// shared by every pipeline stage.
//
// Stage code wraps failures with one of the exported sentinel markers so the
// CLI can decide whether a run is fatal (ingestion), recoverable by omission
// (aggregation), or cumulative (integrity checks) without string matching.
// Context helpers carry the submission identifier and stage name so loggers
// built from a context tag every line consistently.
package services
