// Package textutil provides text helpers for filenames and user-facing
// labels: sanitizing names for safe filesystem use and deriving display
// names from imported file paths.
package textutil
