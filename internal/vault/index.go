package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// IndexVersion is the current on-disk index schema version.
const IndexVersion = 1

// AssetType classifies vault content.
type AssetType string

const (
	AssetImage AssetType = "image"
	AssetVideo AssetType = "video"
	AssetAudio AssetType = "audio"
)

var extTypes = map[string]AssetType{
	".png": AssetImage, ".jpg": AssetImage, ".jpeg": AssetImage, ".gif": AssetImage,
	".webp": AssetImage, ".bmp": AssetImage, ".tiff": AssetImage,
	".mp4": AssetVideo, ".mov": AssetVideo, ".mkv": AssetVideo, ".avi": AssetVideo,
	".webm": AssetVideo, ".m4v": AssetVideo,
	".mp3": AssetAudio, ".wav": AssetAudio, ".aac": AssetAudio, ".flac": AssetAudio,
	".ogg": AssetAudio, ".m4a": AssetAudio,
}

// DetectType classifies a file by extension, defaulting to image.
func DetectType(path string) AssetType {
	if t, ok := extTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return AssetImage
}

// UsageRef records one cut referencing an asset.
type UsageRef struct {
	SceneID string `json:"sceneId"`
	CutID   string `json:"cutId"`
	Order   int    `json:"order"`
}

// Entry is one persisted asset record. Filename is derived deterministically
// from the content hash plus the original extension, so two entries never
// share a hash while both backing live files.
type Entry struct {
	ID           string     `json:"id"`
	Hash         string     `json:"hash"`
	Filename     string     `json:"filename"`
	OriginalName string     `json:"originalName"`
	OriginalPath string     `json:"originalPath,omitempty"`
	Type         AssetType  `json:"type"`
	FileSize     int64      `json:"fileSize,omitempty"`
	ImportedAt   time.Time  `json:"importedAt"`
	UsageRefs    []UsageRef `json:"usageRefs"`
}

type indexDocument struct {
	Version int     `json:"version"`
	Assets  []Entry `json:"assets"`
}

// Index is the in-memory asset index for one vault. Concurrent imports may
// append while loads read, so access is guarded internally; persistence of
// the whole document is last-writer-wins per the store's write model.
type Index struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{}
}

// LoadIndex reads the index document for a vault. A missing file yields an
// empty index, not an error: a fresh vault has no assets yet.
func LoadIndex(layout Layout) (*Index, error) {
	raw, err := os.ReadFile(layout.IndexPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewIndex(), nil
		}
		return nil, fmt.Errorf("read asset index: %w", err)
	}

	var doc indexDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse asset index: %w", err)
	}
	if doc.Version > IndexVersion {
		return nil, fmt.Errorf("asset index version %d is newer than supported %d", doc.Version, IndexVersion)
	}
	return &Index{entries: doc.Assets}, nil
}

// Save writes the index document, normalizing entry order to the provided
// storyline order: referenced assets appear in first-reference order, and
// unreferenced entries keep their previous relative order appended at the end.
// Usage refs are replaced wholesale from usage, never patched incrementally.
func (ix *Index) Save(layout Layout, storylineOrder []string, usage map[string][]UsageRef) error {
	ix.mu.Lock()
	for i := range ix.entries {
		refs := usage[ix.entries[i].ID]
		if refs == nil {
			refs = []UsageRef{}
		}
		ix.entries[i].UsageRefs = refs
	}
	ix.entries = reorderEntries(ix.entries, storylineOrder)
	doc := indexDocument{Version: IndexVersion, Assets: append([]Entry(nil), ix.entries...)}
	ix.mu.Unlock()

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal asset index: %w", err)
	}
	tmp := layout.IndexPath() + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write asset index: %w", err)
	}
	if err := os.Rename(tmp, layout.IndexPath()); err != nil {
		return fmt.Errorf("replace asset index: %w", err)
	}
	return nil
}

func reorderEntries(entries []Entry, storylineOrder []string) []Entry {
	byID := make(map[string]int, len(entries))
	for i, entry := range entries {
		byID[entry.ID] = i
	}

	used := make(map[string]struct{}, len(storylineOrder))
	ordered := make([]Entry, 0, len(entries))
	for _, id := range storylineOrder {
		if _, done := used[id]; done {
			continue
		}
		if i, ok := byID[id]; ok {
			ordered = append(ordered, entries[i])
			used[id] = struct{}{}
		}
	}
	for _, entry := range entries {
		if _, done := used[entry.ID]; !done {
			ordered = append(ordered, entry)
		}
	}
	return ordered
}

// FindByHash returns the entry with the given content hash.
func (ix *Index) FindByHash(hash string) (Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, entry := range ix.entries {
		if entry.Hash == hash {
			return entry, true
		}
	}
	return Entry{}, false
}

// FindByID returns the entry with the given asset id.
func (ix *Index) FindByID(id string) (Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, entry := range ix.entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return Entry{}, false
}

// Append adds a new entry. It refuses a second entry for an already-indexed
// hash; callers must dedup through FindByHash first.
func (ix *Index) Append(entry Entry) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, existing := range ix.entries {
		if existing.Hash == entry.Hash {
			return fmt.Errorf("hash %s already indexed as asset %s", entry.Hash, existing.ID)
		}
		if existing.ID == entry.ID {
			return fmt.Errorf("asset id %s already indexed", entry.ID)
		}
	}
	ix.entries = append(ix.entries, entry)
	return nil
}

// Replace swaps the entry with the given id, used when a relink rewrites an
// asset in place.
func (ix *Index) Replace(id string, entry Entry) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for i, existing := range ix.entries {
		if existing.ID == id {
			ix.entries[i] = entry
			return nil
		}
	}
	return fmt.Errorf("asset id %s not indexed", id)
}

// Remove deletes the entry with the given id, reporting whether it existed.
func (ix *Index) Remove(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for i, existing := range ix.entries {
		if existing.ID == id {
			ix.entries = append(ix.entries[:i], ix.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entries returns a copy of the current entries in index order.
func (ix *Index) Entries() []Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]Entry(nil), ix.entries...)
}

// Len returns the number of indexed assets.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}
