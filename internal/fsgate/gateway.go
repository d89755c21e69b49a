package fsgate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Gateway abstracts the filesystem operations the asset store performs.
type Gateway interface {
	// Hash returns the lowercase hex sha256 of the file's content.
	Hash(ctx context.Context, path string) (string, error)
	// CopyFile streams src to dst with integrity verification.
	CopyFile(ctx context.Context, src, dst string) error
	// MoveToTrash relocates path into trashDir and writes a provenance
	// sidecar describing why the file was trashed.
	MoveToTrash(ctx context.Context, path, trashDir string, meta TrashMeta) error
	// PathExists reports whether path refers to an existing regular file.
	PathExists(path string) bool
	// ReadBytes returns the full content of the file at path.
	ReadBytes(path string) ([]byte, error)
	// ListDirectory returns the names of regular files in path, sorted.
	ListDirectory(path string) ([]string, error)
}

// TrashMeta records where a trashed file came from and why it was trashed.
// It is written next to the trashed file as a .meta.json sidecar.
type TrashMeta struct {
	AssetID      string    `json:"asset_id,omitempty"`
	OriginalPath string    `json:"original_path"`
	Reason       string    `json:"reason"`
	UsageRefs    any       `json:"usage_refs,omitempty"`
	TrashedAt    time.Time `json:"trashed_at"`
}

// Local implements Gateway against the host filesystem.
type Local struct{}

// NewLocal returns the production filesystem gateway.
func NewLocal() Local {
	return Local{}
}

func (Local) Hash(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	buf := make([]byte, 1<<20)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, readErr := file.Read(buf)
		if n > 0 {
			if _, err := hasher.Write(buf[:n]); err != nil {
				return "", err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("read for hashing: %w", readErr)
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// CopyFile streams src to dst with sha256 + size verification, removing dst on
// mismatch so a torn copy never looks like a vault asset.
func (Local) CopyFile(ctx context.Context, src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create destination directory: %w", err)
		}
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return errors.New("copy hash mismatch: file corrupted during copy")
	}
	return ctx.Err()
}

func (Local) MoveToTrash(ctx context.Context, path, trashDir string, meta TrashMeta) error {
	if err := os.MkdirAll(trashDir, 0o755); err != nil {
		return fmt.Errorf("create trash directory: %w", err)
	}

	base := filepath.Base(path)
	target := filepath.Join(trashDir, base)
	// Keep prior trash entries for the same filename.
	for i := 1; ; i++ {
		if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
			break
		}
		target = filepath.Join(trashDir, fmt.Sprintf("%s.%d", base, i))
	}

	if meta.TrashedAt.IsZero() {
		meta.TrashedAt = time.Now().UTC()
	}
	if meta.OriginalPath == "" {
		meta.OriginalPath = path
	}

	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("move to trash: %w", err)
	}

	sidecar, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trash metadata: %w", err)
	}
	if err := os.WriteFile(target+".meta.json", sidecar, 0o644); err != nil {
		return fmt.Errorf("write trash metadata: %w", err)
	}
	return ctx.Err()
}

func (Local) PathExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (Local) ReadBytes(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (Local) ListDirectory(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
