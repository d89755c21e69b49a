package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scenedeck/internal/fsgate"
)

func trashFile(t *testing.T, layout Layout, name string, trashedAt time.Time) {
	t.Helper()
	victim := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(victim, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	gw := fsgate.NewLocal()
	meta := fsgate.TrashMeta{Reason: "test", TrashedAt: trashedAt}
	if err := gw.MoveToTrash(context.Background(), victim, layout.TrashDir(), meta); err != nil {
		t.Fatalf("MoveToTrash: %v", err)
	}
}

func TestPurgeTrashRemovesOnlyOldEntries(t *testing.T) {
	layout, err := Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	trashFile(t, layout, "old.png", time.Now().Add(-48*time.Hour))
	trashFile(t, layout, "fresh.png", time.Now())

	result := PurgeTrash(layout, 24*time.Hour, nil)
	if len(result.Errors) != 0 {
		t.Fatalf("purge errors: %v", result.Errors)
	}
	if len(result.Removed) != 1 {
		t.Fatalf("removed = %v, want 1 entry", result.Removed)
	}

	entries, err := ListTrash(layout)
	if err != nil {
		t.Fatalf("ListTrash: %v", err)
	}
	if len(entries) != 1 || filepath.Base(entries[0].Path) != "fresh.png" {
		t.Errorf("remaining trash = %+v", entries)
	}
}

func TestListTrashEmptyVault(t *testing.T) {
	layout, err := Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	entries, err := ListTrash(layout)
	if err != nil {
		t.Fatalf("ListTrash: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

func TestVaultLockExcludesSecondHolder(t *testing.T) {
	layout, err := Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	lock, err := AcquireLock(layout)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock.Release()

	// Same-process re-acquisition through a fresh flock handle is allowed by
	// POSIX advisory locking, so only verify release/reacquire works.
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := AcquireLock(layout)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	_ = again.Release()
}

func TestCreateRejectsExistingVault(t *testing.T) {
	root := t.TempDir()
	layout, err := Create(root)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := os.WriteFile(layout.ProjectFile(), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write project: %v", err)
	}
	if _, err := Create(root); err == nil {
		t.Fatal("expected error creating over an existing vault")
	}
}

func TestIsVaultRelative(t *testing.T) {
	cases := map[string]bool{
		"assets/abc.png":  true,
		"/abs/path.png":   false,
		"elsewhere/x.png": false,
		"":                false,
	}
	for path, want := range cases {
		if got := IsVaultRelative(path); got != want {
			t.Errorf("IsVaultRelative(%q) = %v, want %v", path, got, want)
		}
	}
}
