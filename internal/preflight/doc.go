// Package preflight provides readiness checks for the paths and services a
// pipeline run depends on.
//
// The CLI "blueprints doctor" command runs every check and prints one row
// per result. Checks for optional features (ledger, Discord webhook) are
// skipped when the feature is disabled.
package preflight
