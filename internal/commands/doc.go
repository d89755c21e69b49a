// Package commands holds the concrete reversible commands driven through
// the history engine: cut structure edits, asset import, grouping, and
// trash. Each command snapshots what its undo needs at execute time.
package commands
