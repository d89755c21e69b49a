package project

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"scenedeck/internal/fsgate"
	"scenedeck/internal/vault"
)

func TestSaveRewritesManagedPathsToVaultRelative(t *testing.T) {
	layout, err := vault.Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	p := New("Demo", layout.Root)
	p.PutAsset(&Asset{
		ID:                "a1",
		Name:              "photo.png",
		Path:              layout.AbsoluteFor("assets/abc.png"),
		VaultRelativePath: "assets/abc.png",
		Type:              vault.AssetImage,
	})
	p.AddScene(&Scene{ID: "s1", Cuts: []Cut{{ID: "c1", AssetID: "a1", DisplayTime: 3}}})

	if err := Save(layout, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(layout.ProjectFile())
	if err != nil {
		t.Fatalf("read project: %v", err)
	}
	if strings.Contains(string(raw), layout.Root) {
		t.Error("project file must not contain the machine-specific vault root in asset paths")
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("project file is not valid JSON: %v", err)
	}
	if decoded["savedAt"] == nil {
		t.Error("savedAt missing from persisted document")
	}
}

func TestRoundTrip(t *testing.T) {
	layout, err := vault.Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Create a real vault file so resolution succeeds after loading.
	assetFile := layout.AbsoluteFor("assets/deadbeef.png")
	if err := os.WriteFile(assetFile, []byte("pixels"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	original := New("Round Trip", layout.Root)
	original.SourcePanel = SourcePanel{Folder: "/media/incoming", SortBy: "name"}
	original.PutAsset(&Asset{
		ID:                "a1",
		Name:              "photo.png",
		Path:              assetFile,
		VaultRelativePath: "assets/deadbeef.png",
		Hash:              "deadbeef",
		Type:              vault.AssetImage,
	})
	original.AddScene(&Scene{ID: "s1", Name: "One", Cuts: []Cut{
		{ID: "c1", AssetID: "a1", DisplayTime: 3},
		{ID: "c2", AssetID: "a1", DisplayTime: 4},
	}})
	original.SetGroup("g1", []string{"c1", "c2"})

	if err := Save(layout, original); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(layout)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	missing := NewResolver(fsgate.NewLocal(), layout, nil).Resolve(loaded)
	if len(missing) != 0 {
		t.Fatalf("unexpected missing assets: %+v", missing)
	}

	if loaded.Name != original.Name {
		t.Errorf("name = %q", loaded.Name)
	}
	if loaded.SourcePanel != original.SourcePanel {
		t.Errorf("source panel = %+v", loaded.SourcePanel)
	}
	if len(loaded.Scenes) != 1 || len(loaded.Scenes[0].Cuts) != 2 {
		t.Fatalf("scene graph shape lost: %+v", loaded.Scenes)
	}
	asset, ok := loaded.Asset("a1")
	if !ok {
		t.Fatal("asset cache missing a1")
	}
	if asset.Path != assetFile {
		t.Errorf("resolved path = %q, want %q", asset.Path, assetFile)
	}
	if asset.VaultRelativePath != "assets/deadbeef.png" {
		t.Errorf("vault-relative path = %q", asset.VaultRelativePath)
	}
	if group, _ := loaded.GroupOf("c2"); group != "g1" {
		t.Errorf("group membership lost: %q", group)
	}
	if loaded.Scenes[0].Cuts[0].DisplayTime != 3 {
		t.Errorf("display time = %v", loaded.Scenes[0].Cuts[0].DisplayTime)
	}
}

func TestSnapshotIgnoresUIChurn(t *testing.T) {
	p := sampleProject()
	before := Snapshot(p)

	p.UI.SelectedCutIDs = []string{"c1", "c2"}
	p.UI.PanelOpen = true
	p.UI.ActiveDragCut = "c3"

	if Snapshot(p) != before {
		t.Error("UI-only churn changed the dirty snapshot")
	}

	p.Scenes[0].Cuts[0].DisplayTime = 99
	if Snapshot(p) == before {
		t.Error("project-relevant change did not change the snapshot")
	}
}

func TestSnapshotChangesOnRename(t *testing.T) {
	p := sampleProject()
	before := Snapshot(p)
	p.Name = "Renamed"
	if Snapshot(p) == before {
		t.Error("rename did not change the snapshot")
	}
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	layout, err := vault.Create(t.TempDir())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := os.WriteFile(layout.ProjectFile(), []byte(`{"version": 99}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(layout); err == nil {
		t.Fatal("expected version error")
	}
}
