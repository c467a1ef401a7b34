// Package submission runs one issue submission end to end.
//
// Materialize decodes the payload, builds the Blueprint record, downloads the
// preview and every font before touching the tree, writes the Blueprint
// folder and records the submission in the ledger. Notify decodes the same
// payload and announces it without writing anything.
//
// Malformed payloads are echoed to the diagnostics writer so the CI log shows
// exactly what was received.
package submission
