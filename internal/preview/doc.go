// Package preview normalizes preview title cards to the catalog resolution.
package preview
