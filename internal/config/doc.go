// Package config loads, normalizes, and validates SceneDeck configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and centralizes every knob the CLI and the
// asset-store core need: catalog/log directories, autosave debounce timing,
// undo history depth, media tool binaries, and notification settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
