// Package catalog is the per-user SQLite database shared across vaults:
// the recent-vaults list shown at startup and the append-only journal of
// completed imports.
package catalog
