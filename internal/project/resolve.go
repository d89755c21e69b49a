package project

import (
	"log/slog"

	"scenedeck/internal/fsgate"
	"scenedeck/internal/logging"
	"scenedeck/internal/vault"
)

// MissingAssetInfo identifies one cut whose backing file could not be found
// at load time. It is produced transiently during resolution and never
// persisted.
type MissingAssetInfo struct {
	Name    string
	CutID   string
	SceneID string
	Asset   *Asset
}

// Resolver rewrites persisted vault-relative references to absolute runtime
// paths and collects missing files into a recovery queue.
type Resolver struct {
	gw     fsgate.Gateway
	layout vault.Layout
	logger *slog.Logger
}

// NewResolver builds a resolver for one vault.
func NewResolver(gw fsgate.Gateway, layout vault.Layout, logger *slog.Logger) *Resolver {
	return &Resolver{
		gw:     gw,
		layout: layout,
		logger: logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve walks every cut, resolves vault-relative asset references against
// the current vault root, and verifies that each backing file exists. It
// never fails: the project is returned partially resolved alongside the
// queue of missing references, which callers must feed through a recovery
// session before treating the load as complete.
func (r *Resolver) Resolve(p *Project) []MissingAssetInfo {
	var missing []MissingAssetInfo
	queued := map[string]struct{}{}

	for _, scene := range p.Scenes {
		for _, cut := range scene.Cuts {
			asset, ok := p.Asset(cut.AssetID)
			if !ok {
				continue
			}

			relative := asset.VaultRelativePath
			if relative == "" && vault.IsVaultRelative(asset.Path) {
				relative = asset.Path
				asset.VaultRelativePath = relative
			}
			if relative != "" {
				asset.Path = r.layout.AbsoluteFor(relative)
			}

			if r.gw.PathExists(asset.Path) {
				continue
			}

			// One queue entry per cut: the same asset missing under two cuts
			// needs two decisions.
			key := scene.ID + "/" + cut.ID
			if _, dup := queued[key]; dup {
				continue
			}
			queued[key] = struct{}{}

			logging.WarnWithContext(r.logger, "asset file missing", "asset_missing",
				logging.String(logging.FieldAssetID, asset.ID),
				logging.String(logging.FieldSceneID, scene.ID),
				logging.String(logging.FieldCutID, cut.ID),
				logging.String("path", asset.Path),
				logging.String(logging.FieldErrorHint, "relink, delete, or skip in recovery"),
				logging.String(logging.FieldImpact, "cut renders as broken until recovered"))

			missing = append(missing, MissingAssetInfo{
				Name:    asset.Name,
				CutID:   cut.ID,
				SceneID: scene.ID,
				Asset:   asset,
			})
		}
	}
	return missing
}
