package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"scenedeck/internal/fsgate"
	"scenedeck/internal/vault"
)

// NewVault creates an empty vault under a per-test temp directory.
func NewVault(t testing.TB) vault.Layout {
	t.Helper()
	layout, err := vault.Create(filepath.Join(t.TempDir(), "vault"))
	if err != nil {
		t.Fatalf("create vault: %v", err)
	}
	return layout
}

// NewImporter wires an importer with a fresh index against the given
// vault.
func NewImporter(t testing.TB, layout vault.Layout) *vault.Importer {
	t.Helper()
	return vault.NewImporter(fsgate.NewLocal(), layout, vault.NewIndex(), nil, nil)
}

// WriteSource drops a source file with the given content into a temp
// directory and returns its path.
func WriteSource(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
