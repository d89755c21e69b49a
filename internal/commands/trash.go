package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"scenedeck/internal/fsgate"
	"scenedeck/internal/history"
	"scenedeck/internal/logging"
	"scenedeck/internal/project"
	"scenedeck/internal/vault"
)

// TrashAsset moves an asset's vault file into the trash and retires its
// index entry. Referencing cuts are left in place and surface through the
// recovery queue on the next load.
//
// Undo moves a file back out of the trash, which a human may have purged
// in the meantime, so it demands an explicit confirmation callback. Without
// one it refuses with history.ErrConfirmRequired.
type TrashAsset struct {
	Project  *project.Project
	Importer *vault.Importer
	Gateway  fsgate.Gateway
	Logger   *slog.Logger

	AssetID string
	Reason  string
	// Confirm is consulted before Undo restores the file from trash.
	Confirm func() bool

	entry vault.Entry
	asset *project.Asset
}

func (c *TrashAsset) Description() string {
	return fmt.Sprintf("trash asset %s", c.AssetID)
}

func (c *TrashAsset) Execute(ctx context.Context) error {
	entry, ok := c.Importer.Index().FindByID(c.AssetID)
	if !ok {
		return fmt.Errorf("asset %s has no index entry", c.AssetID)
	}
	c.entry = entry

	layout := c.Importer.Layout()
	_, usage := c.Project.StorylineUsage()
	reason := c.Reason
	if reason == "" {
		reason = "user trash"
	}

	absPath := layout.AbsoluteFor(layout.RelativeAssetPath(entry.Filename))
	err := c.Gateway.MoveToTrash(ctx, absPath, layout.TrashDir(), fsgate.TrashMeta{
		AssetID:      c.AssetID,
		OriginalPath: absPath,
		Reason:       reason,
		UsageRefs:    usage[c.AssetID],
	})
	if err != nil {
		return fmt.Errorf("move to trash: %w", err)
	}

	c.Importer.Index().Remove(c.AssetID)
	if asset, ok := c.Project.Asset(c.AssetID); ok {
		c.asset = asset
		c.Project.RemoveAsset(c.AssetID)
	}

	if refs := usage[c.AssetID]; len(refs) > 0 {
		logging.WarnWithContext(logging.NewComponentLogger(c.Logger, "trash"),
			"trashed asset still referenced", "trash_referenced",
			logging.String(logging.FieldAssetID, c.AssetID),
			logging.Int("referencing_cuts", len(refs)),
			logging.String(logging.FieldImpact, "cuts surface in recovery on next load"))
	}
	return nil
}

func (c *TrashAsset) Undo(ctx context.Context) error {
	if c.Confirm == nil || !c.Confirm() {
		return history.ErrConfirmRequired
	}

	layout := c.Importer.Layout()
	trashed, err := c.findTrashed(layout)
	if err != nil {
		return err
	}

	dest := layout.AbsoluteFor(layout.RelativeAssetPath(c.entry.Filename))
	if err := c.Gateway.CopyFile(ctx, trashed, dest); err != nil {
		return fmt.Errorf("restore from trash: %w", err)
	}
	if err := c.Importer.Index().Append(c.entry); err != nil {
		return fmt.Errorf("restore index entry: %w", err)
	}
	if c.asset != nil {
		c.Project.PutAsset(c.asset)
	}

	_ = os.Remove(trashed)
	_ = os.Remove(trashed + ".meta.json")
	return nil
}

// findTrashed locates the newest trash entry whose sidecar names this
// asset. The trashed filename is not predictable (collision suffixes), so
// provenance is the lookup key.
func (c *TrashAsset) findTrashed(layout vault.Layout) (string, error) {
	entries, err := vault.ListTrash(layout)
	if err != nil {
		return "", fmt.Errorf("list trash: %w", err)
	}
	found := ""
	for _, entry := range entries {
		if entry.Meta != nil && entry.Meta.AssetID == c.AssetID {
			found = entry.Path
		}
	}
	if found == "" {
		return "", fmt.Errorf("asset %s is no longer in the trash", c.AssetID)
	}
	return found, nil
}
