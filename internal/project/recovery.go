package project

import (
	"context"
	"fmt"
	"log/slog"

	"scenedeck/internal/fsgate"
	"scenedeck/internal/logging"
	"scenedeck/internal/media"
	"scenedeck/internal/vault"
)

// Decision is the user's choice for one missing asset. It is a closed sum:
// Relink, Delete, or Skip.
type Decision interface {
	isDecision()
}

// Relink re-imports the asset from a newly located file.
type Relink struct {
	NewPath string
}

// Delete removes the referencing cut from its scene.
type Delete struct{}

// Skip leaves the broken reference in place, as an explicit user choice.
type Skip struct{}

func (Relink) isDecision() {}
func (Delete) isDecision() {}
func (Skip) isDecision()   {}

// ItemState tracks one queue item through the recovery state machine.
type ItemState int

const (
	StatePending ItemState = iota
	StateDecided
	StateApplied
)

// RecoverySession drives decisions for a load's missing-asset queue.
// Items move pending -> decided -> applied; undecided items default to skip.
type RecoverySession struct {
	project   *Project
	importer  *vault.Importer
	extractor media.Extractor
	gw        fsgate.Gateway
	logger    *slog.Logger

	items     []MissingAssetInfo
	decisions map[string]Decision
	states    map[string]ItemState
}

// NewRecoverySession builds a session over the resolver's queue. extractor
// may be nil when no video relinks are expected.
func NewRecoverySession(p *Project, imp *vault.Importer, extractor media.Extractor, gw fsgate.Gateway, items []MissingAssetInfo, logger *slog.Logger) *RecoverySession {
	s := &RecoverySession{
		project:   p,
		importer:  imp,
		extractor: extractor,
		gw:        gw,
		logger:    logging.NewComponentLogger(logger, "recovery"),
		items:     items,
		decisions: map[string]Decision{},
		states:    map[string]ItemState{},
	}
	for _, item := range items {
		s.states[item.CutID] = StatePending
	}
	return s
}

// Items returns the queue in resolution order.
func (s *RecoverySession) Items() []MissingAssetInfo {
	return append([]MissingAssetInfo(nil), s.items...)
}

// State returns the state-machine position for a queue item.
func (s *RecoverySession) State(cutID string) ItemState {
	return s.states[cutID]
}

// Decide records a decision for one queue item.
func (s *RecoverySession) Decide(cutID string, d Decision) error {
	if _, ok := s.states[cutID]; !ok {
		return fmt.Errorf("cut %s is not in the recovery queue", cutID)
	}
	if s.states[cutID] == StateApplied {
		return fmt.Errorf("cut %s already applied", cutID)
	}
	s.decisions[cutID] = d
	s.states[cutID] = StateDecided
	return nil
}

// SkipAll records a skip decision for every still-pending item without
// per-item prompting.
func (s *RecoverySession) SkipAll() {
	for _, item := range s.items {
		if s.states[item.CutID] == StatePending {
			s.decisions[item.CutID] = Skip{}
			s.states[item.CutID] = StateDecided
		}
	}
}

// ApplyResult summarizes an Apply pass.
type ApplyResult struct {
	Relinked int
	Deleted  int
	Skipped  int
	Failures []error
}

// Apply executes every decision. Items still pending default to skip (the
// user closed without deciding). Relink failures are collected, not fatal:
// the item stays broken exactly as a skip would leave it.
func (s *RecoverySession) Apply(ctx context.Context) ApplyResult {
	result := ApplyResult{}

	for _, item := range s.items {
		decision, ok := s.decisions[item.CutID]
		if !ok {
			decision = Skip{}
		}

		switch d := decision.(type) {
		case Delete:
			if scene, ok := s.project.Scene(item.SceneID); ok {
				if _, _, removed := scene.RemoveCut(item.CutID); removed {
					result.Deleted++
				}
			}
		case Relink:
			if err := s.relink(ctx, item, d.NewPath); err != nil {
				result.Failures = append(result.Failures, fmt.Errorf("relink %s: %w", item.Name, err))
				logging.WarnWithContext(s.logger, "relink failed", "relink_failed",
					logging.String(logging.FieldCutID, item.CutID),
					logging.Error(err),
					logging.String(logging.FieldImpact, "cut remains broken"))
			} else {
				result.Relinked++
			}
		case Skip:
			result.Skipped++
		}
		s.states[item.CutID] = StateApplied
	}

	s.project.PruneGroups()
	return result
}

// regenerateThumbnail refreshes the preview frame after a video relink. The
// stale thumbnail keyed by the old hash is simply abandoned in the cache.
func (s *RecoverySession) regenerateThumbnail(ctx context.Context, asset *Asset) {
	offset := media.ThumbnailOffset(asset.Duration, 0)
	data, err := s.extractor.GenerateThumbnail(ctx, asset.Path, offset)
	if err != nil {
		logging.WarnWithContext(s.logger, "thumbnail generation failed", "thumbnail_failed",
			logging.String(logging.FieldAssetID, asset.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "asset keeps its stale preview frame"))
		return
	}
	relative, err := vault.StoreThumbnail(s.importer.Layout(), asset.Hash, data)
	if err != nil {
		logging.WarnWithContext(s.logger, "thumbnail write failed", "thumbnail_failed",
			logging.String(logging.FieldAssetID, asset.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "asset keeps its stale preview frame"))
		return
	}
	asset.Thumbnail = relative
}

// relink re-runs the full import pipeline for the newly located file and
// rewrites the cut's asset in place.
func (s *RecoverySession) relink(ctx context.Context, item MissingAssetInfo, newPath string) error {
	asset := item.Asset

	// The old index entry points at a file that no longer exists; retire it
	// so the re-import can reuse the asset id. It is put back if the relink
	// fails: the item must end up exactly as a skip would leave it.
	oldEntry, hadEntry := s.importer.Index().FindByID(asset.ID)
	if hadEntry {
		s.importer.Index().Remove(asset.ID)
	}

	result, err := s.importer.Import(ctx, newPath, asset.ID, vault.BaseMetadata{
		OriginalName: asset.Name,
	})
	if err != nil {
		if hadEntry {
			if restoreErr := s.importer.Index().Append(oldEntry); restoreErr != nil {
				logging.WarnWithContext(s.logger, "failed to restore index entry after relink failure", "relink_restore_failed",
					logging.String(logging.FieldAssetID, asset.ID),
					logging.Error(restoreErr),
					logging.String(logging.FieldImpact, "index entry for the broken asset is lost"))
			}
		}
		return err
	}

	asset.Hash = result.Hash
	asset.VaultRelativePath = result.RelativePath
	asset.Path = result.AbsolutePath
	asset.OriginalPath = newPath
	asset.FileSize = result.FileSize
	asset.Type = vault.DetectType(newPath)

	scene, ok := s.project.Scene(item.SceneID)
	if !ok {
		return fmt.Errorf("scene %s not found", item.SceneID)
	}
	cutIdx := scene.CutIndex(item.CutID)
	if cutIdx < 0 {
		return fmt.Errorf("cut %s not found in scene %s", item.CutID, item.SceneID)
	}
	cut := &scene.Cuts[cutIdx]

	// Duplicate content resolves to the already-stored asset; repoint the
	// cut's weak reference at it.
	if result.IsDuplicate && result.AssetID != asset.ID {
		cut.AssetID = result.AssetID
		if existing, ok := s.project.Asset(result.AssetID); ok {
			asset = existing
		} else {
			asset.ID = result.AssetID
			s.project.PutAsset(asset)
		}
	} else {
		s.project.PutAsset(asset)
	}

	switch asset.Type {
	case vault.AssetVideo:
		if s.extractor != nil {
			meta, err := s.extractor.ExtractVideoMetadata(ctx, asset.Path)
			if err != nil {
				logging.WarnWithContext(s.logger, "video metadata extraction failed", "metadata_failed",
					logging.String(logging.FieldAssetID, asset.ID),
					logging.Error(err),
					logging.String(logging.FieldImpact, "display time keeps its stale value"))
			} else {
				asset.Duration = meta.Duration
				cut.DisplayTime = meta.Duration
				s.regenerateThumbnail(ctx, asset)
			}
		}
	default:
		// Images only need a readability check; the UI reads the bytes
		// directly once the path resolves again.
		if _, err := s.gw.ReadBytes(asset.Path); err != nil {
			return fmt.Errorf("read relinked image: %w", err)
		}
	}
	return nil
}
