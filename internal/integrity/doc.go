// Package integrity checks a Blueprint tree for structural problems without
// modifying it. Every check runs over the whole tree and violations are
// accumulated into a Report; nothing aborts early.
package integrity
