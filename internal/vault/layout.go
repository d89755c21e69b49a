package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ProjectFileName is the project document inside a vault.
	ProjectFileName = "project.sdp"
	// AssetsDirName holds the content-addressed asset files.
	AssetsDirName = "assets"
	// TrashDirName holds displaced files and their provenance sidecars.
	TrashDirName = ".trash"
	// IndexFileName is the persisted asset index.
	IndexFileName = ".index.json"
	// MetadataFileName is the asset/scene metadata sidecar.
	MetadataFileName = ".metadata.json"
	// LockFileName guards the vault against concurrent writers.
	LockFileName = ".vault.lock"
)

// Layout resolves the well-known paths inside a vault root.
type Layout struct {
	Root string
}

// NewLayout returns a Layout for the given root directory.
func NewLayout(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

func (l Layout) ProjectFile() string  { return filepath.Join(l.Root, ProjectFileName) }
func (l Layout) AssetsDir() string    { return filepath.Join(l.Root, AssetsDirName) }
func (l Layout) TrashDir() string     { return filepath.Join(l.Root, TrashDirName) }
func (l Layout) IndexPath() string    { return filepath.Join(l.Root, IndexFileName) }
func (l Layout) MetadataPath() string { return filepath.Join(l.Root, MetadataFileName) }
func (l Layout) LockPath() string     { return filepath.Join(l.Root, LockFileName) }

// RelativeAssetPath returns the vault-relative reference for an asset file.
// Relative references always use forward slashes so project files stay
// portable across machines.
func (l Layout) RelativeAssetPath(filename string) string {
	return AssetsDirName + "/" + filename
}

// AbsoluteFor resolves a vault-relative reference against the vault root.
func (l Layout) AbsoluteFor(relative string) string {
	return filepath.Join(l.Root, filepath.FromSlash(relative))
}

// ContainsPath reports whether abs lives inside this vault's assets directory.
func (l Layout) ContainsPath(abs string) bool {
	rel, err := filepath.Rel(l.AssetsDir(), abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// IsVaultRelative reports whether a persisted path string is a vault-relative
// asset reference rather than an absolute path.
func IsVaultRelative(path string) bool {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return false
	}
	return strings.HasPrefix(filepath.ToSlash(path), AssetsDirName+"/")
}

// Create lays out a new vault directory tree. The root may already exist but
// must not already contain a vault.
func Create(root string) (Layout, error) {
	layout := NewLayout(root)
	if _, err := os.Stat(layout.ProjectFile()); err == nil {
		return Layout{}, fmt.Errorf("vault already exists at %s", root)
	}
	for _, dir := range []string{layout.Root, layout.AssetsDir(), layout.TrashDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Layout{}, fmt.Errorf("create vault directory %q: %w", dir, err)
		}
	}
	return layout, nil
}

// Validate checks that root looks like a vault created by Create.
func Validate(root string) (Layout, error) {
	layout := NewLayout(root)
	info, err := os.Stat(layout.Root)
	if err != nil {
		return Layout{}, fmt.Errorf("stat vault root: %w", err)
	}
	if !info.IsDir() {
		return Layout{}, fmt.Errorf("vault root %q is not a directory", root)
	}
	if info, err := os.Stat(layout.AssetsDir()); err != nil || !info.IsDir() {
		return Layout{}, errors.New("vault has no assets directory")
	}
	return layout, nil
}
