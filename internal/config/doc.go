// Package config loads, normalizes, and validates catalog pipeline settings.
//
// It supplies repository defaults, reads an optional TOML file, and honours the
// environment variables the CI workflows export (DISCORD_WEBHOOK,
// ISSUE_CREATOR, SUBMISSION_MODE, and friends). Every command obtains its
// settings through this package so repository paths are absolute and validation
// errors read the same everywhere.
package config
