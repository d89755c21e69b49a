package vault

import (
	"fmt"
	"os"
	"path/filepath"
)

// ThumbnailsDirName holds generated preview frames, keyed by content hash.
const ThumbnailsDirName = ".thumbnails"

// ThumbnailsDir returns the vault's thumbnail cache directory.
func (l Layout) ThumbnailsDir() string { return filepath.Join(l.Root, ThumbnailsDirName) }

// StoreThumbnail writes a generated preview frame for the given content hash
// and returns its vault-relative path. The cache directory is created on
// demand so vaults made by older releases pick it up transparently.
func StoreThumbnail(layout Layout, hash string, data []byte) (string, error) {
	if hash == "" {
		return "", fmt.Errorf("store thumbnail: empty hash")
	}
	if err := os.MkdirAll(layout.ThumbnailsDir(), 0o755); err != nil {
		return "", fmt.Errorf("create thumbnails dir: %w", err)
	}
	filename := hash + ".jpg"
	if err := os.WriteFile(filepath.Join(layout.ThumbnailsDir(), filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write thumbnail: %w", err)
	}
	return ThumbnailsDirName + "/" + filename, nil
}
