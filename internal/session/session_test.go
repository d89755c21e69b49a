package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"scenedeck/internal/project"
	"scenedeck/internal/session"
	"scenedeck/internal/testsupport"
	"scenedeck/internal/vault"
)

func newSession(t *testing.T, root string) *session.Session {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	s, err := session.Create(context.Background(), cfg, root, "Test Project", nil, session.Options{SkipCatalog: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return s
}

func TestCreateOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "vault")

	s := newSession(t, root)
	if s.Project().Name != "Test Project" {
		t.Errorf("name = %q", s.Project().Name)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	cfg := testsupport.NewConfig(t)
	reopened, err := session.Open(ctx, cfg, root, nil, session.Options{SkipCatalog: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close(ctx)
	if reopened.Project().Name != "Test Project" {
		t.Errorf("reopened name = %q", reopened.Project().Name)
	}
	if missing := reopened.Missing(); len(missing) != 0 {
		t.Errorf("missing = %d, want 0", len(missing))
	}
}

func TestOpenRejectsSecondWriter(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "vault")

	s := newSession(t, root)
	defer s.Close(ctx)

	cfg := testsupport.NewConfig(t)
	if _, err := session.Open(ctx, cfg, root, nil, session.Options{SkipCatalog: true}); !errors.Is(err, vault.ErrVaultLocked) {
		t.Fatalf("err = %v, want ErrVaultLocked", err)
	}
}

func TestImportBatchPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "vault")

	s := newSession(t, root)
	sources := []string{
		testsupport.WriteSource(t, "a.png", "aa"),
		testsupport.WriteSource(t, "b.png", "bb"),
		testsupport.WriteSource(t, "c.png", "aa"), // duplicate of a
	}
	summary := s.Import(ctx, "", sources)
	if len(summary.Failed) != 0 {
		t.Fatalf("failures: %v", summary.Failed)
	}
	if len(summary.Imported) != 3 || summary.Duplicates != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	cfg := testsupport.NewConfig(t)
	reopened, err := session.Open(ctx, cfg, root, nil, session.Options{SkipCatalog: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close(ctx)

	scene := reopened.Project().Scenes[0]
	if len(scene.Cuts) != 3 {
		t.Fatalf("cuts = %d, want 3", len(scene.Cuts))
	}
	// Deduplicated content shares one index entry and one vault file.
	if got := reopened.Index().Len(); got != 2 {
		t.Errorf("index entries = %d, want 2", got)
	}
	if missing := reopened.Missing(); len(missing) != 0 {
		t.Errorf("missing after reopen = %d", len(missing))
	}
}

func TestMissingAssetsSurfaceAndRecover(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "vault")

	s := newSession(t, root)
	source := testsupport.WriteSource(t, "a.png", "aa")
	summary := s.Import(ctx, "", []string{source})
	if len(summary.Imported) != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	rel := summary.Imported[0].VaultRelativePath
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Delete the vault file behind the project's back.
	if err := os.Remove(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
		t.Fatalf("remove vault file: %v", err)
	}

	cfg := testsupport.NewConfig(t)
	reopened, err := session.Open(ctx, cfg, root, nil, session.Options{SkipCatalog: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close(ctx)

	missing := reopened.Missing()
	if len(missing) != 1 {
		t.Fatalf("missing = %d, want 1", len(missing))
	}

	rs := reopened.Recovery()
	replacement := testsupport.WriteSource(t, "found.png", "aa")
	if err := rs.Decide(missing[0].CutID, project.Relink{NewPath: replacement}); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	result := reopened.ApplyRecovery(ctx, rs)
	if result.Relinked != 1 || len(result.Failures) != 0 {
		t.Fatalf("result = %+v", result)
	}
	if len(reopened.Missing()) != 0 {
		t.Error("queue not cleared after apply")
	}
}

func TestManualSaveWritesDocument(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "vault")

	s := newSession(t, root)
	defer s.Close(ctx)

	s.Project().Name = "Renamed"
	if err := s.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := project.Load(s.Layout())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != "Renamed" {
		t.Errorf("persisted name = %q", loaded.Name)
	}
}
