// Package fileutil holds the small file-writing helpers shared by the catalog
// writers: atomic replacement and change-only JSON writes.
package fileutil
