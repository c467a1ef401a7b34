// Package index rebuilds the derived catalog files from the per-Blueprint
// blueprint.json files: one blueprints.json per Series, the whole-catalog
// master_blueprints.json and a README.md per Series.
//
// Output is a pure function of the tree. Entries are ordered by letter, Series
// and ID, so rerunning over an unchanged tree rewrites nothing.
package index
