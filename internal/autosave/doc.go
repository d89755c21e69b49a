// Package autosave persists the project after bursts of edits settle. It
// debounces change notifications, skips saves when nothing project-relevant
// changed, and guarantees at most one save in flight with at most one
// queued follow-up.
package autosave
