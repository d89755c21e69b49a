package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAutosave()
	c.normalizeHistory()
	c.normalizeMedia()
	c.normalizeNotifications()
	c.normalizeTrash()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CatalogDir) == "" {
		c.Paths.CatalogDir = defaultCatalogDir
	}
	if c.Paths.CatalogDir, err = expandPath(c.Paths.CatalogDir); err != nil {
		return fmt.Errorf("paths.catalog_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DefaultVaultRoot) == "" {
		c.Paths.DefaultVaultRoot = defaultVaultRoot
	}
	if c.Paths.DefaultVaultRoot, err = expandPath(c.Paths.DefaultVaultRoot); err != nil {
		return fmt.Errorf("paths.default_vault_root: %w", err)
	}
	return nil
}

func (c *Config) normalizeAutosave() {
	if c.Autosave.DebounceMS <= 0 {
		c.Autosave.DebounceMS = defaultAutosaveDebounceMS
	}
}

func (c *Config) normalizeHistory() {
	if c.History.MaxDepth <= 0 {
		c.History.MaxDepth = defaultHistoryMaxDepth
	}
}

func (c *Config) normalizeMedia() {
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.ThumbnailOffsetRatio <= 0 || c.Media.ThumbnailOffsetRatio >= 1 {
		c.Media.ThumbnailOffsetRatio = defaultThumbnailOffsetRatio
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeTrash() {
	if c.Trash.RetentionDays <= 0 {
		c.Trash.RetentionDays = defaultTrashRetentionDays
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
