// Package notifications pushes user-facing notices through ntfy. With no
// topic configured every notification is a silent no-op, so callers never
// branch on whether notifications are enabled.
package notifications
