package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scenedeck/internal/autosave"
	"scenedeck/internal/catalog"
	"scenedeck/internal/commands"
	"scenedeck/internal/config"
	"scenedeck/internal/fsgate"
	"scenedeck/internal/history"
	"scenedeck/internal/logging"
	"scenedeck/internal/media"
	"scenedeck/internal/notifications"
	"scenedeck/internal/project"
	"scenedeck/internal/vault"
)

// Session is one locked, loaded vault and the engines operating on it.
type Session struct {
	cfg       *config.Config
	layout    vault.Layout
	lock      *vault.Lock
	index     *vault.Index
	metadata  *vault.Metadata
	project   *project.Project
	importer  *vault.Importer
	engine    *history.Engine
	autosave  *autosave.Controller
	notifier  notifications.Service
	catalog   *catalog.Store
	extractor media.Extractor
	gw        fsgate.Gateway
	logger    *slog.Logger
	missing   []project.MissingAssetInfo
}

// Options overrides collaborators for tests. Zero value wires production
// implementations.
type Options struct {
	Gateway   fsgate.Gateway
	Extractor media.Extractor
	Notifier  notifications.Service
	Catalog   *catalog.Store
	// SkipCatalog leaves the catalog closed even when none is injected.
	SkipCatalog bool
}

// Create lays out a fresh vault with an empty project and opens it.
func Create(ctx context.Context, cfg *config.Config, root, projectName string, logger *slog.Logger, opts Options) (*Session, error) {
	layout, err := vault.Create(root)
	if err != nil {
		return nil, err
	}

	p := project.New(projectName, layout.Root)
	if err := project.Save(layout, p); err != nil {
		return nil, fmt.Errorf("write initial project: %w", err)
	}
	if err := vault.NewIndex().Save(layout, nil, nil); err != nil {
		return nil, fmt.Errorf("write initial index: %w", err)
	}
	if err := vault.NewMetadata().Save(layout); err != nil {
		return nil, fmt.Errorf("write initial metadata: %w", err)
	}

	return Open(ctx, cfg, root, logger, opts)
}

// Open validates the vault layout, takes the writer lock, loads the index,
// metadata, and project, resolves asset paths, and wires the command
// engine plus autosave. Missing assets do not fail the open; they land in
// the recovery queue.
func Open(ctx context.Context, cfg *config.Config, root string, logger *slog.Logger, opts Options) (*Session, error) {
	layout, err := vault.Validate(root)
	if err != nil {
		return nil, err
	}
	lock, err := vault.AcquireLock(layout)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:       cfg,
		layout:    layout,
		lock:      lock,
		logger:    logging.NewComponentLogger(logger, "session"),
		gw:        opts.Gateway,
		extractor: opts.Extractor,
		notifier:  opts.Notifier,
		catalog:   opts.Catalog,
	}
	if s.gw == nil {
		s.gw = fsgate.NewLocal()
	}
	if s.extractor == nil {
		s.extractor = media.NewFFmpegExtractor(cfg.FFprobeBinary(), cfg.FFmpegBinary())
	}
	if s.notifier == nil {
		s.notifier = notifications.NewService(cfg)
	}

	ok := false
	defer func() {
		if !ok {
			_ = lock.Release()
		}
	}()

	if s.catalog == nil && !opts.SkipCatalog {
		store, catErr := catalog.Open(cfg)
		if catErr != nil {
			// The vault works without the catalog; recent-vault history
			// and the import journal are just absent.
			logging.WarnWithContext(s.logger, "catalog unavailable", "catalog_open_failed",
				logging.Error(catErr),
				logging.String(logging.FieldImpact, "no recent vaults or import journal"))
		} else {
			s.catalog = store
		}
	}

	s.index, err = vault.LoadIndex(layout)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	s.metadata, err = vault.LoadMetadata(layout)
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	s.project, err = project.Load(layout)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	var journal vault.Journal
	if s.catalog != nil {
		journal = s.catalog
	}
	s.importer = vault.NewImporter(s.gw, layout, s.index, journal, logger)

	s.missing = project.NewResolver(s.gw, layout, logger).Resolve(s.project)
	if len(s.missing) > 0 {
		_ = s.notifier.NotifyRecoveryNeeded(ctx, s.project.Name, len(s.missing))
	}

	s.engine = history.NewEngine(cfg.History.MaxDepth, logger)
	s.autosave = autosave.New(saver{s}, s.notifier,
		time.Duration(cfg.Autosave.DebounceMS)*time.Millisecond, logger)
	s.autosave.SetEnabled(cfg.Autosave.Enabled)
	s.autosave.MarkSaved()
	s.engine.SetOnChange(s.autosave.Schedule)

	if s.catalog != nil {
		if err := s.catalog.TouchVault(ctx, layout.Root, s.project.Name); err != nil {
			s.logger.Warn("failed to record recent vault", logging.Error(err))
		}
	}

	ok = true
	return s, nil
}

// saver adapts the session's persist path to the autosave controller.
type saver struct{ s *Session }

func (a saver) Snapshot() ([]byte, error) {
	return []byte(project.Snapshot(a.s.project)), nil
}

func (a saver) Save(ctx context.Context) error {
	return a.s.persist(ctx)
}

// persist writes the project document, the reordered index, and the
// metadata sidecar.
func (s *Session) persist(context.Context) error {
	if err := project.Save(s.layout, s.project); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	order, usage := s.project.StorylineUsage()
	if err := s.index.Save(s.layout, order, usage); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	s.refreshMetadata()
	if err := s.metadata.Save(s.layout); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}

// refreshMetadata mirrors the live graph into the sidecar: scene name
// snapshots and per-asset durations. User-authored fields (notes, audio
// attachments) are left as they are.
func (s *Session) refreshMetadata() {
	for _, scene := range s.project.Scenes {
		m := s.metadata.SceneMetadata[scene.ID]
		m.NameSnapshot = scene.Name
		s.metadata.SceneMetadata[scene.ID] = m
	}
	for _, asset := range s.project.Assets() {
		if asset.Duration <= 0 {
			continue
		}
		m := s.metadata.Assets[asset.ID]
		m.Duration = asset.Duration
		s.metadata.Assets[asset.ID] = m
	}
}

// Project returns the loaded project graph.
func (s *Session) Project() *project.Project { return s.project }

// Layout returns the vault layout.
func (s *Session) Layout() vault.Layout { return s.layout }

// Index returns the live asset index.
func (s *Session) Index() *vault.Index { return s.index }

// Engine returns the command history engine.
func (s *Session) Engine() *history.Engine { return s.engine }

// Importer returns the vault importer.
func (s *Session) Importer() *vault.Importer { return s.importer }

// Missing returns the unresolved-asset queue collected at open.
func (s *Session) Missing() []project.MissingAssetInfo {
	return append([]project.MissingAssetInfo(nil), s.missing...)
}

// Catalog returns the catalog store, or nil when unavailable.
func (s *Session) Catalog() *catalog.Store { return s.catalog }

// ImportSummary reports an Import batch.
type ImportSummary struct {
	Imported   []*project.Asset
	Duplicates int
	Failed     []error
}

// Import brings each source file in as a cut appended to the scene,
// creating the scene when the project has none. Per-file failures are
// collected; the batch continues.
func (s *Session) Import(ctx context.Context, sceneID string, sources []string) ImportSummary {
	summary := ImportSummary{}
	if sceneID == "" {
		sceneID = s.defaultSceneID()
	}

	for _, source := range sources {
		cmd := &commands.ImportAsset{
			Project:    s.project,
			Importer:   s.importer,
			Extractor:  s.extractor,
			Logger:     s.logger,
			SourcePath: source,
			SceneID:    sceneID,
			Index:      -1,

			ThumbnailOffsetRatio: s.cfg.Media.ThumbnailOffsetRatio,
		}
		if err := s.engine.Execute(ctx, cmd); err != nil {
			summary.Failed = append(summary.Failed, err)
			continue
		}
		summary.Imported = append(summary.Imported, cmd.Result())
		if cmd.WasDuplicate() {
			summary.Duplicates++
		}
	}

	if len(summary.Imported) > 0 {
		_ = s.notifier.NotifyImportCompleted(ctx, len(summary.Imported), summary.Duplicates)
	}
	return summary
}

func (s *Session) defaultSceneID() string {
	if len(s.project.Scenes) == 0 {
		s.project.AddScene(&project.Scene{ID: "scene-1", Name: "Scene 1"})
	}
	return s.project.Scenes[0].ID
}

// Recovery builds a decision session over the missing-asset queue.
func (s *Session) Recovery() *project.RecoverySession {
	return project.NewRecoverySession(s.project, s.importer, s.extractor, s.gw, s.missing, s.logger)
}

// ApplyRecovery executes the decisions and reports the outcome.
func (s *Session) ApplyRecovery(ctx context.Context, rs *project.RecoverySession) project.ApplyResult {
	result := rs.Apply(ctx)
	s.missing = nil
	s.autosave.Schedule()
	_ = s.notifier.NotifyRecoveryApplied(ctx, s.project.Name, result.Relinked, result.Deleted, result.Skipped)
	return result
}

// Save forces a synchronous save regardless of the debounce timer.
func (s *Session) Save(ctx context.Context) error {
	s.autosave.Flush(ctx)
	return nil
}

// Close flushes pending work, releases the vault lock, and closes the
// catalog.
func (s *Session) Close(ctx context.Context) error {
	s.autosave.Flush(ctx)
	s.autosave.Close()

	var firstErr error
	if err := s.lock.Release(); err != nil {
		firstErr = err
	}
	if s.catalog != nil {
		if err := s.catalog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
