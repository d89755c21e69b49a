package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"scenedeck/internal/logging"
	"scenedeck/internal/media"
	"scenedeck/internal/project"
	"scenedeck/internal/textutil"
	"scenedeck/internal/vault"
)

// DefaultImageDisplayTime is the display time given to cuts whose asset
// has no intrinsic duration.
const DefaultImageDisplayTime = 3.0

// ImportAsset brings a file into the project: it runs the vault import
// pipeline, builds (or reuses) the Asset, and appends a referencing cut to
// the target scene. Import failure is non-fatal: the asset falls back to
// an unmanaged absolute path and the cut is still created.
type ImportAsset struct {
	Project   *project.Project
	Importer  *vault.Importer
	Extractor media.Extractor
	Logger    *slog.Logger

	SourcePath string
	SceneID    string
	Index      int // insertion position; clamped to the scene bounds

	// ThumbnailOffsetRatio positions the preview frame within the video's
	// duration. Zero means the extractor default.
	ThumbnailOffsetRatio float64

	// First-execute outcome, replayed verbatim on redo so the cut and
	// asset keep their identities across undo/redo cycles.
	executed     bool
	cut          project.Cut
	asset        *project.Asset
	createdAsset bool
	duplicate    bool
}

func (c *ImportAsset) Description() string {
	return fmt.Sprintf("import %s", filepath.Base(c.SourcePath))
}

func (c *ImportAsset) Execute(ctx context.Context) error {
	scene, ok := c.Project.Scene(c.SceneID)
	if !ok {
		return fmt.Errorf("scene %s not found", c.SceneID)
	}

	if !c.executed {
		if err := c.buildAsset(ctx); err != nil {
			return err
		}
		c.executed = true
	}

	if c.createdAsset {
		c.Project.PutAsset(c.asset)
	}
	scene.InsertCut(c.cut, c.Index)
	return nil
}

// buildAsset runs the import pipeline once and fixes the cut and asset
// this command will insert from then on.
func (c *ImportAsset) buildAsset(ctx context.Context) error {
	logger := logging.NewComponentLogger(c.Logger, "import")
	name := textutil.SanitizeFileName(filepath.Base(c.SourcePath))
	assetType := vault.DetectType(c.SourcePath)
	assetID := uuid.NewString()

	result, err := c.Importer.Import(ctx, c.SourcePath, assetID, vault.BaseMetadata{
		OriginalName: name,
		Type:         assetType,
	})
	switch {
	case err != nil:
		var importErr *vault.ImportError
		if !errors.As(err, &importErr) {
			return err
		}
		// The file stays where it is; the project references it by
		// absolute path until a later import or relink succeeds.
		logging.WarnWithContext(logger, "import failed, keeping unmanaged reference", "import_fallback",
			logging.String("path", c.SourcePath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "asset is not portable across machines"))
		abs, absErr := filepath.Abs(c.SourcePath)
		if absErr != nil {
			abs = c.SourcePath
		}
		c.asset = &project.Asset{
			ID:           assetID,
			Name:         name,
			Path:         abs,
			OriginalPath: c.SourcePath,
			Type:         assetType,
		}
		c.createdAsset = true

	case result.IsDuplicate:
		c.duplicate = true
		if existing, ok := c.Project.Asset(result.AssetID); ok {
			c.asset = existing
		} else {
			c.asset = c.assetFromResult(result, name, assetType)
			c.createdAsset = true
		}

	default:
		c.asset = c.assetFromResult(result, name, assetType)
		c.createdAsset = true
	}

	displayTime := DefaultImageDisplayTime
	if c.asset.Type == vault.AssetVideo {
		if c.asset.Duration > 0 {
			displayTime = c.asset.Duration
		} else if c.Extractor != nil {
			meta, err := c.Extractor.ExtractVideoMetadata(ctx, c.asset.Path)
			if err != nil {
				logging.WarnWithContext(logger, "video metadata extraction failed", "metadata_failed",
					logging.String("path", c.asset.Path),
					logging.Error(err),
					logging.String(logging.FieldImpact, "cut uses the default display time"))
			} else {
				c.asset.Duration = meta.Duration
				displayTime = meta.Duration
			}
		}
		if c.asset.Managed() && c.asset.Thumbnail == "" {
			c.generateThumbnail(ctx, logger)
		}
	}

	c.cut = project.Cut{
		ID:          uuid.NewString(),
		AssetID:     c.asset.ID,
		DisplayTime: displayTime,
	}
	return nil
}

// generateThumbnail captures a preview frame for a vault-managed video.
// Failure degrades the asset to no thumbnail, it never fails the import.
func (c *ImportAsset) generateThumbnail(ctx context.Context, logger *slog.Logger) {
	if c.Extractor == nil {
		return
	}
	offset := media.ThumbnailOffset(c.asset.Duration, c.ThumbnailOffsetRatio)
	data, err := c.Extractor.GenerateThumbnail(ctx, c.asset.Path, offset)
	if err != nil {
		logging.WarnWithContext(logger, "thumbnail generation failed", "thumbnail_failed",
			logging.String("path", c.asset.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "asset has no preview frame"))
		return
	}
	relative, err := vault.StoreThumbnail(c.Importer.Layout(), c.asset.Hash, data)
	if err != nil {
		logging.WarnWithContext(logger, "thumbnail write failed", "thumbnail_failed",
			logging.String("path", c.asset.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "asset has no preview frame"))
		return
	}
	c.asset.Thumbnail = relative
}

func (c *ImportAsset) assetFromResult(result *vault.ImportResult, name string, assetType vault.AssetType) *project.Asset {
	return &project.Asset{
		ID:                result.AssetID,
		Name:              name,
		Path:              result.AbsolutePath,
		VaultRelativePath: result.RelativePath,
		OriginalPath:      c.SourcePath,
		Hash:              result.Hash,
		Type:              assetType,
		FileSize:          result.FileSize,
	}
}

// Undo removes the cut. The vault copy and its index entry stay put:
// files only leave the vault through an explicit trash command.
func (c *ImportAsset) Undo(context.Context) error {
	scene, ok := c.Project.Scene(c.SceneID)
	if !ok {
		return fmt.Errorf("scene %s not found", c.SceneID)
	}
	if _, _, removed := scene.RemoveCut(c.cut.ID); !removed {
		return fmt.Errorf("cut %s not found", c.cut.ID)
	}

	if c.createdAsset && !c.assetStillReferenced() {
		c.Project.RemoveAsset(c.asset.ID)
	}
	c.Project.PruneGroups()
	return nil
}

func (c *ImportAsset) assetStillReferenced() bool {
	_, usage := c.Project.StorylineUsage()
	return len(usage[c.asset.ID]) > 0
}

// Result exposes the asset created or reused by Execute, for callers that
// report import outcomes. Nil before the first successful Execute.
func (c *ImportAsset) Result() *project.Asset {
	if !c.executed {
		return nil
	}
	return c.asset
}

// WasDuplicate reports whether the import deduplicated against existing
// vault content.
func (c *ImportAsset) WasDuplicate() bool {
	return c.duplicate
}
