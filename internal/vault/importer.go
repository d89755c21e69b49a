package vault

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scenedeck/internal/fsgate"
	"scenedeck/internal/logging"
)

// ImportError reports which import stage failed. Callers treat it as
// non-fatal: the asset stays unmanaged on its original absolute path.
type ImportError struct {
	Stage string
	Path  string
	Err   error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s (%s): %v", e.Stage, e.Path, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// BaseMetadata carries caller-known facts about the file being imported.
type BaseMetadata struct {
	OriginalName string
	Type         AssetType
}

// ImportResult describes the outcome of an import. For duplicates it points
// at the already-stored asset and nothing was copied.
type ImportResult struct {
	AssetID      string
	Hash         string
	Filename     string
	RelativePath string
	AbsolutePath string
	FileSize     int64
	IsDuplicate  bool
}

// ImportRecord is the journal row emitted after each completed import.
type ImportRecord struct {
	VaultRoot    string
	AssetID      string
	Hash         string
	OriginalPath string
	Duplicate    bool
	ImportedAt   time.Time
}

// Journal receives a record per completed import. The catalog implements it;
// a nil journal disables journaling.
type Journal interface {
	RecordImport(ctx context.Context, rec ImportRecord) error
}

// Importer copies source files into the vault under hash-derived names,
// deduplicating identical content through the index.
type Importer struct {
	gw      fsgate.Gateway
	layout  Layout
	index   *Index
	journal Journal
	logger  *slog.Logger
}

// NewImporter wires an importer for one vault. journal may be nil.
func NewImporter(gw fsgate.Gateway, layout Layout, index *Index, journal Journal, logger *slog.Logger) *Importer {
	return &Importer{
		gw:      gw,
		layout:  layout,
		index:   index,
		journal: journal,
		logger:  logging.NewComponentLogger(logger, "importer"),
	}
}

// Index exposes the importer's backing index.
func (imp *Importer) Index() *Index { return imp.index }

// Layout exposes the importer's vault layout.
func (imp *Importer) Layout() Layout { return imp.layout }

// Import runs the pipeline: hash, dedup check, copy, index update. Each stage
// failure short-circuits into an *ImportError so the caller can fall back to
// an unmanaged asset instead of aborting its whole operation.
func (imp *Importer) Import(ctx context.Context, sourcePath, assetID string, base BaseMetadata) (*ImportResult, error) {
	sourcePath = filepath.Clean(sourcePath)

	hash, err := imp.gw.Hash(ctx, sourcePath)
	if err != nil {
		return nil, &ImportError{Stage: "hash", Path: sourcePath, Err: err}
	}

	if existing, ok := imp.index.FindByHash(hash); ok {
		imp.logger.Debug("duplicate content, reusing stored asset",
			logging.String("hash", hash),
			logging.String(logging.FieldAssetID, existing.ID))
		result := &ImportResult{
			AssetID:      existing.ID,
			Hash:         hash,
			Filename:     existing.Filename,
			RelativePath: imp.layout.RelativeAssetPath(existing.Filename),
			AbsolutePath: imp.layout.AbsoluteFor(imp.layout.RelativeAssetPath(existing.Filename)),
			FileSize:     existing.FileSize,
			IsDuplicate:  true,
		}
		imp.retireVaultResident(ctx, sourcePath, result.AbsolutePath, existing.ID)
		imp.record(ctx, result, sourcePath)
		return result, nil
	}

	filename := hash + strings.ToLower(filepath.Ext(sourcePath))
	destination := filepath.Join(imp.layout.AssetsDir(), filename)

	// The source may already sit at its canonical location with no index
	// entry (the index file was lost or rolled back). Copying onto itself
	// would truncate the file before reading it, so only the entry is
	// recreated.
	alreadyStored := sourcePath == destination
	if !alreadyStored {
		if err := imp.gw.CopyFile(ctx, sourcePath, destination); err != nil {
			return nil, &ImportError{Stage: "copy", Path: sourcePath, Err: err}
		}
	}

	assetType := base.Type
	if assetType == "" {
		assetType = DetectType(sourcePath)
	}
	originalName := base.OriginalName
	if originalName == "" {
		originalName = filepath.Base(sourcePath)
	}

	entry := Entry{
		ID:           assetID,
		Hash:         hash,
		Filename:     filename,
		OriginalName: originalName,
		OriginalPath: sourcePath,
		Type:         assetType,
		FileSize:     fileSize(sourcePath),
		ImportedAt:   time.Now().UTC(),
		UsageRefs:    []UsageRef{},
	}
	if err := imp.index.Append(entry); err != nil {
		// Roll the copy back so a failed index update leaves no orphan file.
		if !alreadyStored {
			_ = os.Remove(destination)
		}
		return nil, &ImportError{Stage: "index", Path: sourcePath, Err: err}
	}

	imp.retireVaultResident(ctx, sourcePath, destination, assetID)

	imp.logger.Info("asset imported",
		logging.String(logging.FieldAssetID, assetID),
		logging.String("hash", hash),
		logging.String("filename", filename),
		logging.Int64("size", entry.FileSize))

	result := &ImportResult{
		AssetID:      assetID,
		Hash:         hash,
		Filename:     filename,
		RelativePath: imp.layout.RelativeAssetPath(filename),
		AbsolutePath: destination,
		FileSize:     entry.FileSize,
		IsDuplicate:  false,
	}
	imp.record(ctx, result, sourcePath)
	return result, nil
}

// retireVaultResident handles re-import of a file that already lives in the
// vault under a stale name: edited in place so its content no longer matches
// its hash-derived filename, or edited into a duplicate of another stored
// asset. The stale file moves to trash with provenance instead of lingering
// as an orphan, and its dead index entry is dropped.
func (imp *Importer) retireVaultResident(ctx context.Context, sourcePath, storedPath, liveAssetID string) {
	if !imp.layout.ContainsPath(sourcePath) {
		return
	}
	// The source can be the stored file itself (re-import of an asset at its
	// canonical location); there is nothing to retire then.
	if sourcePath == filepath.Clean(storedPath) {
		return
	}

	staleName := filepath.Base(sourcePath)
	var staleEntry Entry
	var found bool
	for _, entry := range imp.index.Entries() {
		if entry.Filename == staleName && entry.ID != liveAssetID {
			staleEntry, found = entry, true
			break
		}
	}

	meta := fsgate.TrashMeta{
		AssetID: liveAssetID,
		Reason:  "reimport of vault-resident file",
	}
	if found {
		meta.AssetID = staleEntry.ID
		meta.UsageRefs = staleEntry.UsageRefs
	}
	if err := imp.gw.MoveToTrash(ctx, sourcePath, imp.layout.TrashDir(), meta); err != nil {
		logging.WarnWithContext(imp.logger, "failed to trash stale vault file", "import_trash_failed",
			logging.String("path", sourcePath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the file manually"),
			logging.String(logging.FieldImpact, "orphaned file remains in the vault"))
		return
	}
	if found {
		imp.index.Remove(staleEntry.ID)
	}
}

func (imp *Importer) record(ctx context.Context, result *ImportResult, sourcePath string) {
	if imp.journal == nil {
		return
	}
	rec := ImportRecord{
		VaultRoot:    imp.layout.Root,
		AssetID:      result.AssetID,
		Hash:         result.Hash,
		OriginalPath: sourcePath,
		Duplicate:    result.IsDuplicate,
		ImportedAt:   time.Now().UTC(),
	}
	if err := imp.journal.RecordImport(ctx, rec); err != nil {
		imp.logger.Debug("import journal write failed", logging.Error(err))
	}
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
