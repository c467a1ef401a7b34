// Package ledger records every ingested submission in a small SQLite database.
//
// The ledger is optional. When enabled it rejects a submission that was already
// ingested and remembers the highest Blueprint ID ever assigned per Series, so
// that an ID whose folder was deleted before the next index rebuild is still
// never handed out again.
package ledger
