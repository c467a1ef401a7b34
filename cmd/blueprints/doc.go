// Command blueprints maintains the Blueprint catalog tree.
//
// It ingests issue submissions, rebuilds the derived series and master
// indexes, regenerates Series READMEs, normalizes preview images and checks
// the tree for structural problems. Each subcommand is a single batch run
// intended for CI.
package main
