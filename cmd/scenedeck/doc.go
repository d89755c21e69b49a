// Package main hosts the SceneDeck CLI entrypoint and command graph.
//
// The Cobra-based command tree covers vault creation, asset import, index
// and recent-vault listings, missing-asset recovery, health checks, and
// configuration scaffolding. It centralizes configuration resolution and
// logger setup so subcommands can focus on user experience.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags
// here.
package main
