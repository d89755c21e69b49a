package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"scenedeck/internal/vault"
)

// DocumentVersion is the current project.sdp schema version.
const DocumentVersion = 1

type documentCut struct {
	ID          string  `json:"id"`
	Asset       Asset   `json:"asset"`
	DisplayTime float64 `json:"displayTime"`
}

type documentScene struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Cuts []documentCut `json:"cuts"`
}

type document struct {
	Version     int                 `json:"version"`
	Name        string              `json:"name"`
	VaultPath   string              `json:"vaultPath"`
	Scenes      []documentScene     `json:"scenes"`
	Groups      map[string][]string `json:"groups,omitempty"`
	SourcePanel SourcePanel         `json:"sourcePanel"`
	SavedAt     time.Time           `json:"savedAt,omitzero"`
}

// buildDocument produces the persisted form of the project. Vault-managed
// assets persist their vault-relative path so the document stays portable;
// unmanaged assets keep their absolute path.
func buildDocument(p *Project) document {
	doc := document{
		Version:     DocumentVersion,
		Name:        p.Name,
		VaultPath:   p.VaultPath,
		SourcePanel: p.SourcePanel,
	}
	if len(p.groups) > 0 {
		doc.Groups = map[string][]string{}
		for groupID, members := range p.groups {
			doc.Groups[groupID] = append([]string(nil), members...)
		}
	}
	for _, scene := range p.Scenes {
		docScene := documentScene{ID: scene.ID, Name: scene.Name, Cuts: []documentCut{}}
		for _, cut := range scene.Cuts {
			docCut := documentCut{ID: cut.ID, DisplayTime: cut.DisplayTime}
			if asset, ok := p.Asset(cut.AssetID); ok {
				persisted := *asset
				if persisted.VaultRelativePath != "" {
					persisted.Path = persisted.VaultRelativePath
				}
				docCut.Asset = persisted
			}
			docScene.Cuts = append(docScene.Cuts, docCut)
		}
		doc.Scenes = append(doc.Scenes, docScene)
	}
	return doc
}

// Save writes the project document atomically into the vault.
func Save(layout vault.Layout, p *Project) error {
	doc := buildDocument(p)
	doc.SavedAt = time.Now().UTC()

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	tmp := layout.ProjectFile() + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	if err := os.Rename(tmp, layout.ProjectFile()); err != nil {
		return fmt.Errorf("replace project: %w", err)
	}
	return nil
}

// Load reads the project document from the vault. Paths are not resolved
// here; callers run the Resolver next so missing files surface as a recovery
// queue, never as a load failure.
func Load(layout vault.Layout) (*Project, error) {
	raw, err := os.ReadFile(layout.ProjectFile())
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("project version %d is newer than supported %d", doc.Version, DocumentVersion)
	}

	p := New(doc.Name, doc.VaultPath)
	p.SourcePanel = doc.SourcePanel
	for groupID, members := range doc.Groups {
		p.SetGroup(groupID, members)
	}
	for _, docScene := range doc.Scenes {
		scene := &Scene{ID: docScene.ID, Name: docScene.Name}
		for _, docCut := range docScene.Cuts {
			asset := docCut.Asset
			if asset.ID != "" {
				if asset.VaultRelativePath == "" && vault.IsVaultRelative(asset.Path) {
					asset.VaultRelativePath = asset.Path
				}
				if _, ok := p.Asset(asset.ID); !ok {
					stored := asset
					p.PutAsset(&stored)
				}
			}
			scene.Cuts = append(scene.Cuts, Cut{
				ID:          docCut.ID,
				AssetID:     asset.ID,
				DisplayTime: docCut.DisplayTime,
			})
		}
		p.AddScene(scene)
	}
	p.PruneGroups()
	return p, nil
}

// Snapshot serializes the project-relevant projection of state: name, vault
// path, scenes, groups, and source panel. Ephemeral UI fields are absent, so
// UI-only churn never changes the snapshot and never triggers a save.
func Snapshot(p *Project) string {
	doc := buildDocument(p)
	raw, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	return string(raw)
}
