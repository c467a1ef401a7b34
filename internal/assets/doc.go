// Package assets downloads submission assets (preview images and font files)
// and expands font bundles shipped as zip or tar archives.
//
// A fetch is a single GET bounded by a timeout; there are no retries. Archive
// members are flattened to their base names because a Blueprint folder never
// contains subdirectories.
package assets
