// Package migrate converts a tree from the legacy layout, where each Series
// blueprints.json list is the source of truth, to the per-folder layout, where
// every Blueprint folder carries its own blueprint.json.
//
// Migration only adds blueprint.json files. The series lists are left in place
// and become derived files that the index aggregator regenerates.
package migrate
