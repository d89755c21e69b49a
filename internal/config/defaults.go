package config

const (
	defaultCatalogDir           = "~/.local/share/scenedeck"
	defaultLogDir               = "~/.local/share/scenedeck/logs"
	defaultVaultRoot            = "~/scenedeck"
	defaultAutosaveDebounceMS   = 2000
	defaultHistoryMaxDepth      = 50
	defaultThumbnailOffsetRatio = 0.25
	defaultNotifyTimeout        = 10
	defaultTrashRetentionDays   = 30
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CatalogDir:       defaultCatalogDir,
			LogDir:           defaultLogDir,
			DefaultVaultRoot: defaultVaultRoot,
		},
		Autosave: Autosave{
			Enabled:    true,
			DebounceMS: defaultAutosaveDebounceMS,
		},
		History: History{
			MaxDepth: defaultHistoryMaxDepth,
		},
		Media: Media{
			ThumbnailOffsetRatio: defaultThumbnailOffsetRatio,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			SaveFailures:   true,
			Recovery:       true,
			Imports:        false,
		},
		Trash: Trash{
			RetentionDays: defaultTrashRetentionDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
