// Package testsupport provides builders shared by package tests: configs
// seeded with per-test temp directories and ready-made vaults.
package testsupport

import (
	"path/filepath"
	"testing"

	"scenedeck/internal/config"
)

// ConfigOption allows callers to customize the generated test
// configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CatalogDir = filepath.Join(base, "catalog")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.DefaultVaultRoot = filepath.Join(base, "vaults")
	cfg.Autosave.DebounceMS = 100

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithNtfyTopic points notifications at a test server and enables every
// category.
func WithNtfyTopic(topic string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = topic
		cfg.Notifications.SaveFailures = true
		cfg.Notifications.Recovery = true
		cfg.Notifications.Imports = true
	}
}

// WithAutosaveDisabled turns the autosave controller off.
func WithAutosaveDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Autosave.Enabled = false
	}
}
