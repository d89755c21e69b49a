package vault

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scenedeck/internal/fsgate"
	"scenedeck/internal/logging"
)

// TrashEntry pairs a trashed file with its provenance sidecar, when present.
type TrashEntry struct {
	Path string
	Size int64
	Meta *fsgate.TrashMeta
}

// ListTrash returns the current contents of the vault trash, oldest first.
func ListTrash(layout Layout) ([]TrashEntry, error) {
	dirEntries, err := os.ReadDir(layout.TrashDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []TrashEntry
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || strings.HasSuffix(dirEntry.Name(), ".meta.json") {
			continue
		}
		path := filepath.Join(layout.TrashDir(), dirEntry.Name())
		entry := TrashEntry{Path: path}
		if info, err := dirEntry.Info(); err == nil {
			entry.Size = info.Size()
		}
		if raw, err := os.ReadFile(path + ".meta.json"); err == nil {
			var meta fsgate.TrashMeta
			if json.Unmarshal(raw, &meta) == nil {
				entry.Meta = &meta
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// PurgeResult contains the outcome of a trash purge.
type PurgeResult struct {
	Removed []string
	Errors  []error
}

// PurgeTrash removes trashed files older than maxAge along with their
// sidecars. Files without a sidecar fall back to filesystem mtime.
func PurgeTrash(layout Layout, maxAge time.Duration, logger *slog.Logger) PurgeResult {
	logger = logging.NewComponentLogger(logger, "trash")
	result := PurgeResult{}
	cutoff := time.Now().Add(-maxAge)

	entries, err := ListTrash(layout)
	if err != nil {
		result.Errors = append(result.Errors, err)
		return result
	}

	for _, entry := range entries {
		trashedAt := time.Time{}
		if entry.Meta != nil {
			trashedAt = entry.Meta.TrashedAt
		}
		if trashedAt.IsZero() {
			if info, err := os.Stat(entry.Path); err == nil {
				trashedAt = info.ModTime()
			}
		}
		if trashedAt.IsZero() || !trashedAt.Before(cutoff) {
			continue
		}

		if err := os.Remove(entry.Path); err != nil {
			result.Errors = append(result.Errors, err)
			logging.WarnWithContext(logger, "failed to purge trash entry", "trash_purge_failed",
				logging.String("path", entry.Path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "disk space not reclaimed"))
			continue
		}
		_ = os.Remove(entry.Path + ".meta.json")
		result.Removed = append(result.Removed, entry.Path)
		logger.Info("purged trash entry",
			logging.String("path", entry.Path),
			logging.Duration("age", time.Since(trashedAt)))
	}
	return result
}
