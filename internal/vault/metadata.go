package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// MetadataVersion is the current metadata sidecar schema version.
const MetadataVersion = 1

// AudioAttachment pairs an audio file with an asset at a given offset.
type AudioAttachment struct {
	Path          string  `json:"path"`
	OffsetSeconds float64 `json:"offsetSeconds"`
	Volume        float64 `json:"volume,omitempty"`
}

// AssetMetadata holds per-asset extras that do not belong in the index.
type AssetMetadata struct {
	Audio    []AudioAttachment `json:"audio,omitempty"`
	Duration float64           `json:"duration,omitempty"`
	Width    int               `json:"width,omitempty"`
	Height   int               `json:"height,omitempty"`
}

// SceneMetadata holds per-scene notes and name snapshots.
type SceneMetadata struct {
	Notes        string `json:"notes,omitempty"`
	NameSnapshot string `json:"nameSnapshot,omitempty"`
}

// Metadata is the .metadata.json sidecar document.
type Metadata struct {
	Version       int                      `json:"version"`
	Assets        map[string]AssetMetadata `json:"metadata"`
	SceneMetadata map[string]SceneMetadata `json:"sceneMetadata"`
}

// NewMetadata returns an empty metadata document.
func NewMetadata() *Metadata {
	return &Metadata{
		Version:       MetadataVersion,
		Assets:        map[string]AssetMetadata{},
		SceneMetadata: map[string]SceneMetadata{},
	}
}

// LoadMetadata reads the metadata sidecar. A missing file yields an empty
// document.
func LoadMetadata(layout Layout) (*Metadata, error) {
	raw, err := os.ReadFile(layout.MetadataPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewMetadata(), nil
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	meta := NewMetadata()
	if err := json.Unmarshal(raw, meta); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if meta.Assets == nil {
		meta.Assets = map[string]AssetMetadata{}
	}
	if meta.SceneMetadata == nil {
		meta.SceneMetadata = map[string]SceneMetadata{}
	}
	return meta, nil
}

// Save writes the metadata sidecar atomically.
func (m *Metadata) Save(layout Layout) error {
	m.Version = MetadataVersion
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	tmp := layout.MetadataPath() + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := os.Rename(tmp, layout.MetadataPath()); err != nil {
		return fmt.Errorf("replace metadata: %w", err)
	}
	return nil
}
