// Package repository owns the on-disk Blueprint tree: the letter/series/id
// layout, the advisory lock serializing writers on one working tree, and the
// Writer that materializes a new Blueprint folder.
//
// Layout:
//
//	blueprints/<Letter>/<Series (Year)>/blueprints.json
//	blueprints/<Letter>/<Series (Year)>/<id>/blueprint.json
//	blueprints/<Letter>/<Series (Year)>/<id>/preview.jpg
//	blueprints/<Letter>/<Series (Year)>/<id>/<font files>
package repository
