package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"scenedeck/internal/config"
	"scenedeck/internal/vault"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

var _ vault.Journal = (*Store)(nil)

// Open initializes or connects to the catalog database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.CatalogDir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// RecentVault is one row of the startup vault picker.
type RecentVault struct {
	Root         string
	ProjectName  string
	LastOpenedAt time.Time
}

// TouchVault upserts a vault into the recent list with the current time.
func (s *Store) TouchVault(ctx context.Context, root, projectName string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recent_vaults (root, project_name, last_opened_at)
         VALUES (?, ?, ?)
         ON CONFLICT(root) DO UPDATE SET project_name = excluded.project_name,
                                         last_opened_at = excluded.last_opened_at`,
		root, projectName, now)
	if err != nil {
		return fmt.Errorf("touch vault: %w", err)
	}
	return nil
}

// RecentVaults returns up to limit vaults, most recently opened first.
func (s *Store) RecentVaults(ctx context.Context, limit int) ([]RecentVault, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT root, project_name, last_opened_at
         FROM recent_vaults ORDER BY last_opened_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent vaults: %w", err)
	}
	defer rows.Close()

	var vaults []RecentVault
	for rows.Next() {
		var v RecentVault
		var opened string
		if err := rows.Scan(&v.Root, &v.ProjectName, &opened); err != nil {
			return nil, fmt.Errorf("scan recent vault: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, opened); parseErr == nil {
			v.LastOpenedAt = ts
		}
		vaults = append(vaults, v)
	}
	return vaults, rows.Err()
}

// ForgetVault drops a vault from the recent list.
func (s *Store) ForgetVault(ctx context.Context, root string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM recent_vaults WHERE root = ?", root); err != nil {
		return fmt.Errorf("forget vault: %w", err)
	}
	return nil
}

// RecordImport appends one completed import to the journal. The importer
// calls this through the vault.Journal interface.
func (s *Store) RecordImport(ctx context.Context, rec vault.ImportRecord) error {
	importedAt := rec.ImportedAt
	if importedAt.IsZero() {
		importedAt = time.Now().UTC()
	}
	duplicate := 0
	if rec.Duplicate {
		duplicate = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO imports (vault_root, asset_id, hash, original_path, duplicate, imported_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		rec.VaultRoot, rec.AssetID, rec.Hash, rec.OriginalPath, duplicate,
		importedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	return nil
}

// ImportHistory returns the newest journal rows for one vault.
func (s *Store) ImportHistory(ctx context.Context, vaultRoot string, limit int) ([]vault.ImportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT vault_root, asset_id, hash, original_path, duplicate, imported_at
         FROM imports WHERE vault_root = ? ORDER BY id DESC LIMIT ?`, vaultRoot, limit)
	if err != nil {
		return nil, fmt.Errorf("query import history: %w", err)
	}
	defer rows.Close()

	var records []vault.ImportRecord
	for rows.Next() {
		var rec vault.ImportRecord
		var duplicate int
		var importedAt string
		if err := rows.Scan(&rec.VaultRoot, &rec.AssetID, &rec.Hash, &rec.OriginalPath, &duplicate, &importedAt); err != nil {
			return nil, fmt.Errorf("scan import record: %w", err)
		}
		rec.Duplicate = duplicate != 0
		if ts, parseErr := time.Parse(time.RFC3339Nano, importedAt); parseErr == nil {
			rec.ImportedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
