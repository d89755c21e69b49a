// Package logging constructs the slog loggers used across SceneDeck.
//
// It provides a compact console handler for interactive use, a JSON handler
// for log files, typed attribute helpers, and component loggers so every
// subsystem tags its records consistently. Warnings that reach the user carry
// event_type, error_hint, and impact fields so a failed autosave or import
// explains its consequence, not just its cause.
package logging
