// Package textutil provides the text transformations that decide where
// things live on disk.
//
// SeriesFolders maps a free-text "Name (Year)" display name onto the
// letter bucket and path-safe folder name used by the catalog layout.
// SanitizeFileName cleans uploaded asset names before they are written next
// to a Blueprint. Both are pure functions with no I/O.
package textutil
