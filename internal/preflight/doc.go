// Package preflight provides readiness checks for the filesystem paths
// and external binaries a vault session depends on.
//
// The CLI runs RunAll before opening a vault and on "scenedeck status";
// individual checks back per-line health output.
package preflight
